package router

import (
	"net/http"

	"site-content-api/internal/respond"
)

func notFound(w http.ResponseWriter, r *http.Request) {
	respond.Error(w, http.StatusNotFound, "Route "+r.URL.Path+" not found")
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	respond.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
}
