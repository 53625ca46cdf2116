package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"site-content-api/internal/middleware"
	"site-content-api/internal/resource"
	"site-content-api/internal/respond"
)

func (h *Handler) List(svc *resource.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := svc.List(r.Context(), r.URL.Query())
		if err != nil {
			fail(w, r, err)
			return
		}
		respond.List(w, recs)
	}
}

func (h *Handler) Get(svc *resource.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := svc.Get(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			fail(w, r, err)
			return
		}
		respond.OK(w, rec)
	}
}

func (h *Handler) Create(svc *resource.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := decode(r)
		if err != nil {
			fail(w, r, err)
			return
		}
		who := middleware.IdentityFromContext(r.Context())
		rec, err := svc.Create(r.Context(), who, body)
		if err != nil {
			fail(w, r, err)
			return
		}
		respond.JSON(w, http.StatusCreated, respond.Envelope{
			Success: true,
			Data:    rec,
			Message: svc.Messages().Created,
		})
	}
}

func (h *Handler) Update(svc *resource.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := decode(r)
		if err != nil {
			fail(w, r, err)
			return
		}
		who := middleware.IdentityFromContext(r.Context())
		rec, err := svc.Update(r.Context(), who, mux.Vars(r)["id"], body)
		if err != nil {
			fail(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, respond.Envelope{
			Success: true,
			Data:    rec,
			Message: svc.Messages().Updated,
		})
	}
}

func (h *Handler) Delete(svc *resource.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
			fail(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, respond.Envelope{Success: true, Message: svc.Messages().Deleted})
	}
}
