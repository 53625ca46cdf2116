package client

import (
	"context"
	"net/http"
	"net/url"
)

// Resource is the CRUD surface of one collection.
type Resource[T any] struct {
	c    *Client
	path string
}

// List passes query through as filter parameters (status, category, ...).
func (r *Resource[T]) List(ctx context.Context, query url.Values) Envelope[[]T] {
	return do[[]T](ctx, r.c, http.MethodGet, r.path, nil, query)
}

func (r *Resource[T]) Get(ctx context.Context, id string) Envelope[T] {
	return do[T](ctx, r.c, http.MethodGet, r.item(id), nil, nil)
}

func (r *Resource[T]) Create(ctx context.Context, body any) Envelope[T] {
	return do[T](ctx, r.c, http.MethodPost, r.path, body, nil)
}

// Update sends a partial document. Only fields present in body change.
func (r *Resource[T]) Update(ctx context.Context, id string, body any) Envelope[T] {
	return do[T](ctx, r.c, http.MethodPut, r.item(id), body, nil)
}

func (r *Resource[T]) Delete(ctx context.Context, id string) Envelope[struct{}] {
	return do[struct{}](ctx, r.c, http.MethodDelete, r.item(id), nil, nil)
}

func (r *Resource[T]) item(id string) string {
	return r.path + "/" + url.PathEscape(id)
}
