package handler

import (
	"net/http"

	"site-content-api/internal/middleware"
	"site-content-api/internal/respond"
)

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	body, err := decode(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	s, err := h.accounts.Login(r.Context(), body)
	if err != nil {
		fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, respond.Envelope{Success: true, Data: s, Message: "Login successful"})
}

// Register is mounted behind admin authorization.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	body, err := decode(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	p, err := h.accounts.Register(r.Context(), body)
	if err != nil {
		fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, respond.Envelope{Success: true, Data: p, Message: "User registered successfully"})
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	who := middleware.IdentityFromContext(r.Context())
	p, err := h.accounts.Profile(r.Context(), who.UserID)
	if err != nil {
		fail(w, r, err)
		return
	}
	respond.OK(w, p)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	body, err := decode(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	who := middleware.IdentityFromContext(r.Context())
	p, err := h.accounts.UpdateProfile(r.Context(), who.UserID, body)
	if err != nil {
		fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, respond.Envelope{Success: true, Data: p, Message: "Profile updated successfully"})
}
