// Package router mounts every endpoint on a gorilla/mux router and wraps it
// in the shared middleware chain.
package router

import (
	"net/http"
	"net/netip"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"site-content-api/internal/auth"
	"site-content-api/internal/handler"
	"site-content-api/internal/metrics"
	mw "site-content-api/internal/middleware"
	"site-content-api/internal/model"
	"site-content-api/internal/resource"
)

type Options struct {
	Tokens         *auth.Tokens
	// Limiter guards login and public submissions. Nil disables limiting.
	Limiter        mw.Limiter
	// TrustedProxies may set X-Forwarded-For for the limiter.
	TrustedProxies []netip.Prefix
	Ready          []handler.Pinger
	CORS           mw.CORSPolicy
	Timeout        time.Duration
	BodyLimit      int64
	Logger         *log.Logger
}

var staff = []string{model.RoleAdmin, model.RoleManager}

func New(h *handler.Handler, opts Options) http.Handler {
	r := mux.NewRouter()
	r.Use(metrics.InstrumentHandler)

	r.HandleFunc("/healthz", handler.Healthz).Methods(http.MethodGet)
	r.Handle("/readyz", handler.Readyz(opts.Ready...)).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	authn := mw.Authenticate(opts.Tokens)
	guard := func(roles []string, extra ...mw.Middleware) []mw.Middleware {
		if roles == nil {
			return extra
		}
		return append([]mw.Middleware{authn, mw.Authorize(roles...)}, extra...)
	}
	limited := []mw.Middleware{}
	if opts.Limiter != nil {
		limited = append(limited, mw.RateLimit(opts.Limiter, opts.TrustedProxies...))
	}

	api := r.PathPrefix("/api").Subrouter()

	api.Handle("/auth/login", mw.Chain(http.HandlerFunc(h.Login), limited...)).Methods(http.MethodPost)
	api.Handle("/auth/register", mw.Chain(http.HandlerFunc(h.Register), guard([]string{model.RoleAdmin})...)).Methods(http.MethodPost)
	api.Handle("/auth/profile", mw.Chain(http.HandlerFunc(h.Profile), authn)).Methods(http.MethodGet)
	api.Handle("/auth/profile", mw.Chain(http.HandlerFunc(h.UpdateProfile), authn)).Methods(http.MethodPut)

	api.Handle("/analytics/dashboard", mw.Chain(http.HandlerFunc(h.Dashboard), guard(staff)...)).Methods(http.MethodGet)
	api.Handle("/analytics/appointments", mw.Chain(http.HandlerFunc(h.AppointmentStats), guard(staff)...)).Methods(http.MethodGet)
	api.Handle("/analytics/inquiries", mw.Chain(http.HandlerFunc(h.InquiryStats), guard(staff)...)).Methods(http.MethodGet)

	for _, svc := range h.Resources() {
		mount(api, h, svc, guard, limited)
	}

	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	chain := []mw.Middleware{mw.WithRequestID}
	if opts.Logger != nil {
		chain = append(chain, mw.WithAccessLog(opts.Logger))
	}
	chain = append(chain, mw.WithRecover, mw.WithCORS(opts.CORS))
	if opts.BodyLimit > 0 {
		chain = append(chain, mw.WithBodyLimit(opts.BodyLimit))
	}
	if opts.Timeout > 0 {
		chain = append(chain, mw.WithTimeout(opts.Timeout))
	}
	return mw.Chain(r, chain...)
}

func mount(api *mux.Router, h *handler.Handler, svc *resource.Service,
	guard func([]string, ...mw.Middleware) []mw.Middleware, limited []mw.Middleware) {
	def := svc.Definition()
	acc := def.Access
	coll := "/" + def.Name
	item := coll + "/{id}"

	var create []mw.Middleware
	if acc.LimitCreate {
		create = limited
	}

	api.Handle(coll, mw.Chain(h.List(svc), guard(acc.List)...)).Methods(http.MethodGet)
	api.Handle(coll, mw.Chain(h.Create(svc), guard(acc.Create, create...)...)).Methods(http.MethodPost)
	api.Handle(item, mw.Chain(h.Get(svc), guard(acc.Get)...)).Methods(http.MethodGet)
	api.Handle(item, mw.Chain(h.Update(svc), guard(acc.Update)...)).Methods(http.MethodPut)
	api.Handle(item, mw.Chain(h.Delete(svc), guard(acc.Delete)...)).Methods(http.MethodDelete)
}
