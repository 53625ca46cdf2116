package middleware

import (
	"context"
	"net/http"
	"strings"

	"site-content-api/internal/auth"
	"site-content-api/internal/model"
	"site-content-api/internal/respond"
)

// IdentityFromContext returns the caller set by Authenticate, or the
// anonymous identity.
func IdentityFromContext(ctx context.Context) model.Identity {
	id, _ := ctx.Value(IdentityKey).(model.Identity)
	return id
}

func WithIdentity(ctx context.Context, id model.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, id)
}

// Authenticate requires a valid bearer token.
func Authenticate(tokens *auth.Tokens) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// token from Authorization: Bearer <jwt>
			raw := bearer(r)
			if raw == "" {
				respond.Error(w, http.StatusUnauthorized, "Access denied. No token provided.")
				return
			}

			claims, err := tokens.Parse(raw)
			if err != nil {
				respond.Error(w, http.StatusUnauthorized, "Invalid token.")
				return
			}

			ctx := WithIdentity(r.Context(), claims.Identity())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Authorize admits identities whose role is one of roles. It must run
// after Authenticate.
func Authorize(roles ...string) Middleware {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := IdentityFromContext(r.Context())
			if id.Anonymous() {
				respond.Error(w, http.StatusUnauthorized, "Access denied. No token provided.")
				return
			}
			if !allowed[id.Role] {
				respond.Error(w, http.StatusForbidden, "Access denied. Insufficient permissions.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}
