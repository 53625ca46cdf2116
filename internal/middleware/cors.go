package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// CORSPolicy lists what cross-origin browsers may do. "*" in AllowedOrigins
// admits any origin; with credentials the origin is echoed back instead.
type CORSPolicy struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           time.Duration
}

type corsRules struct {
	anyOrigin bool
	origins   map[string]bool
	creds     bool
	methods   string
	headers   string
	exposed   string
	maxAge    string
}

func (p CORSPolicy) compile() corsRules {
	c := corsRules{
		origins: map[string]bool{},
		creds:   p.AllowCredentials,
		methods: joinTrimmed(p.AllowedMethods),
		headers: joinTrimmed(p.AllowedHeaders),
		exposed: joinTrimmed(p.ExposedHeaders),
	}
	for _, o := range p.AllowedOrigins {
		switch o = strings.TrimSpace(o); o {
		case "":
		case "*":
			c.anyOrigin = true
		default:
			c.origins[strings.ToLower(o)] = true
		}
	}
	if secs := int(p.MaxAge / time.Second); secs > 0 {
		c.maxAge = strconv.Itoa(secs)
	}
	return c
}

// allow is the Access-Control-Allow-Origin value for origin, if admitted.
func (c corsRules) allow(origin string) (string, bool) {
	if c.origins[strings.ToLower(origin)] {
		return origin, true
	}
	if !c.anyOrigin {
		return "", false
	}
	if c.creds {
		return origin, true
	}
	return "*", true
}

// WithCORS answers preflights with 204 and decorates admitted cross-origin
// requests. Requests from other origins pass through without CORS headers.
// An empty AllowedOrigins disables it.
func WithCORS(p CORSPolicy) Middleware {
	if len(p.AllowedOrigins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	c := p.compile()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Add("Vary", "Origin")
			h.Add("Vary", "Access-Control-Request-Method")
			h.Add("Vary", "Access-Control-Request-Headers")

			allowed, ok := c.allow(origin)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			h.Set("Access-Control-Allow-Origin", allowed)
			if c.creds {
				h.Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method != http.MethodOptions || r.Header.Get("Access-Control-Request-Method") == "" {
				if c.exposed != "" {
					h.Set("Access-Control-Expose-Headers", c.exposed)
				}
				next.ServeHTTP(w, r)
				return
			}

			setIf(h, "Access-Control-Allow-Methods", c.methods)
			setIf(h, "Access-Control-Allow-Headers", c.headers)
			setIf(h, "Access-Control-Max-Age", c.maxAge)
			w.WriteHeader(http.StatusNoContent)
		})
	}
}

func setIf(h http.Header, key, val string) {
	if val != "" {
		h.Set(key, val)
	}
}

func joinTrimmed(values []string) string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return strings.Join(out, ", ")
}
