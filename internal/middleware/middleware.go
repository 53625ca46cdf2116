package middleware

import (
	"net/http"
	"time"

	"site-content-api/internal/respond"
)

type Middleware func(http.Handler) http.Handler

func Chain(h http.Handler, m ...Middleware) http.Handler {
	// Apply in reverse so Chain(h, a, b) becomes a(b(h)).
	for i := len(m) - 1; i >= 0; i-- {
		h = m[i](h)
	}
	return h
}

func WithBodyLimit(limitBytes int64) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, limitBytes)
			next.ServeHTTP(w, r)
		})
	}
}

const timeoutBody = `{"success":false,"error":"Request timed out"}`

// WithTimeout cancels the request context after d and answers 503. The
// handler keeps running until it observes the cancellation.
func WithTimeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		th := http.TimeoutHandler(next, d, timeoutBody)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			th.ServeHTTP(jsonByDefault{w}, r)
		})
	}
}

// jsonByDefault labels responses that did not set a Content-Type, such as
// the timeout reply, as JSON.
type jsonByDefault struct {
	http.ResponseWriter
}

func (w jsonByDefault) WriteHeader(code int) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w jsonByDefault) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// WithRecover turns a handler panic into a 500 envelope.
func WithRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				Logger(r.Context()).WithField("panic", rec).Error("handler panic")
				respond.Error(w, http.StatusInternalServerError, "Server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
