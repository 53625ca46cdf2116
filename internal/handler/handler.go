// Package handler adapts the resource engine and account service to HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"site-content-api/internal/apperr"
	"site-content-api/internal/auth"
	"site-content-api/internal/middleware"
	"site-content-api/internal/resource"
	"site-content-api/internal/respond"
	"site-content-api/internal/validate"
)

type Handler struct {
	accounts  *auth.Accounts
	resources map[string]*resource.Service
	order     []string
}

func New(accounts *auth.Accounts, services ...*resource.Service) *Handler {
	h := &Handler{accounts: accounts, resources: make(map[string]*resource.Service, len(services))}
	for _, s := range services {
		name := s.Definition().Name
		h.resources[name] = s
		h.order = append(h.order, name)
	}
	return h
}

// Resource returns the engine registered under name, or nil.
func (h *Handler) Resource(name string) *resource.Service {
	return h.resources[name]
}

func (h *Handler) Resources() []*resource.Service {
	out := make([]*resource.Service, 0, len(h.order))
	for _, name := range h.order {
		out = append(out, h.resources[name])
	}
	return out
}

// decode reads a JSON object body. An empty body decodes to an empty map.
func decode(r *http.Request) (map[string]any, error) {
	var body map[string]any
	err := json.NewDecoder(r.Body).Decode(&body)
	if errors.Is(err, io.EOF) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, apperr.BadRequest("invalid json body")
	}
	if body == nil {
		body = map[string]any{}
	}
	return body, nil
}

// fail writes err as an envelope. Internal faults are logged, never echoed.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	if verrs, ok := validate.As(err); ok {
		respond.Invalid(w, verrs)
		return
	}
	e, ok := apperr.Lookup(err)
	if !ok {
		e = apperr.Internal(err)
	}
	if e.Kind == apperr.KindInternal {
		middleware.Logger(r.Context()).WithError(err).Error("request failed")
	}
	respond.Error(w, e.Kind.Status(), e.Message)
}
