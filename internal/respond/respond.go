// Package respond writes the JSON envelope shared by every endpoint:
// success is always present, failures carry error and never data.
package respond

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"

	"site-content-api/internal/validate"
)

type Envelope struct {
	Success bool                  `json:"success"`
	Data    any                   `json:"data,omitempty"`
	Count   *int                  `json:"count,omitempty"`
	Message string                `json:"message,omitempty"`
	Error   string                `json:"error,omitempty"`
	Errors  []validate.FieldError `json:"errors,omitempty"`
}

func JSON(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Warn("write response")
	}
}

func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// List always emits data as an array, even when empty.
func List[T any](w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	JSON(w, http.StatusOK, Envelope{Success: true, Data: items, Count: &n})
}

func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, Envelope{Success: false, Error: msg})
}

func Invalid(w http.ResponseWriter, errs *validate.Errors) {
	JSON(w, http.StatusBadRequest, Envelope{
		Success: false,
		Error:   "Validation failed",
		Errors:  errs.Fields,
	})
}
