// Package app assembles the resource engines, accounts and HTTP handler on
// top of a store backend.
package app

import (
	"fmt"

	"site-content-api/internal/auth"
	"site-content-api/internal/catalog"
	"site-content-api/internal/handler"
	"site-content-api/internal/metrics"
	"site-content-api/internal/resource"
	"site-content-api/internal/store"
)

type App struct {
	Backend  store.Backend
	Tokens   *auth.Tokens
	Accounts *auth.Accounts
	Services []*resource.Service
	Handler  *handler.Handler
}

func New(b store.Backend, tokens *auth.Tokens, clock store.Clock) (*App, error) {
	a := &App{Backend: b, Tokens: tokens}
	for _, def := range catalog.Definitions(clock) {
		st, err := b.Collection(def.Collection())
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", def.Name, err)
		}
		a.Services = append(a.Services, resource.New(def, st, metrics.RecordWrite))
	}

	users, err := b.Collection(store.UsersCollection)
	if err != nil {
		return nil, fmt.Errorf("open users: %w", err)
	}
	a.Accounts = auth.NewAccounts(store.NewUsers(users), tokens)
	a.Handler = handler.New(a.Accounts, a.Services...)
	return a, nil
}
