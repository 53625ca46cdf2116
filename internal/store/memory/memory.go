// Package memory is the in-process store backend used for prototyping and tests.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"site-content-api/internal/model"
	"site-content-api/internal/store"
)

type Backend struct {
	mu    sync.Mutex
	cols  map[string]*Collection
	clock store.Clock
}

func New() *Backend {
	return &Backend{cols: map[string]*Collection{}, clock: store.SystemClock}
}

// WithClock swaps the timestamp source; tests use it to control time.
func (b *Backend) WithClock(c store.Clock) *Backend {
	b.clock = c
	return b
}

// Collection returns the same collection for repeated calls with one name.
func (b *Backend) Collection(c store.Collection) (store.Store, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if col, ok := b.cols[c.Name]; ok {
		return col, nil
	}
	col := &Collection{
		decl:  c,
		clock: b.clock,
		byID:  map[string]model.Record{},
		keys:  map[string]string{},
	}
	b.cols[c.Name] = col
	return col, nil
}

func (b *Backend) Ping(context.Context) error { return nil }
func (b *Backend) Close() error               { return nil }

// Collection is an ordered map keyed by id. Writers are serialised by mu,
// which also makes the unique-key check and the write one atomic step.
type Collection struct {
	decl  store.Collection
	clock store.Clock

	mu    sync.RWMutex
	byID  map[string]model.Record
	order []string
	keys  map[string]string // unique key -> id
}

func (c *Collection) Find(ctx context.Context, q store.Query) ([]model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	out := make([]model.Record, 0, len(c.order))
	for _, id := range c.order {
		r := c.byID[id]
		if store.Match(r, q) {
			out = append(out, r.Clone())
		}
	}
	c.mu.RUnlock()
	store.SortRecords(out, c.decl.Sort)
	return out, nil
}

func (c *Collection) Count(ctx context.Context, q store.Query) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, id := range c.order {
		if store.Match(c.byID[id], q) {
			n++
		}
	}
	return n, nil
}

func (c *Collection) FindByID(ctx context.Context, id string) (model.Record, error) {
	if err := ctx.Err(); err != nil {
		return model.Record{}, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.byID[id]
	if !ok {
		return model.Record{}, store.ErrNotFound
	}
	return r.Clone(), nil
}

func (c *Collection) Insert(ctx context.Context, fields map[string]any) (model.Record, error) {
	if err := ctx.Err(); err != nil {
		return model.Record{}, err
	}
	shaped, err := store.JSONShape(store.StripReserved(fields))
	if err != nil {
		return model.Record{}, err
	}
	now := c.clock()
	r := model.Record{
		ID:        uuid.New().String(),
		Fields:    shaped,
		CreatedAt: now,
		UpdatedAt: now,
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return model.Record{}, err
	}
	key, hasKey := c.decl.Unique.Of(r.Fields)
	if hasKey {
		if _, taken := c.keys[key]; taken {
			return model.Record{}, store.ErrConflict
		}
		c.keys[key] = r.ID
	}
	c.byID[r.ID] = r
	c.order = append(c.order, r.ID)
	return r.Clone(), nil
}

func (c *Collection) UpdateByID(ctx context.Context, id string, patch map[string]any) (model.Record, error) {
	if err := ctx.Err(); err != nil {
		return model.Record{}, err
	}
	shaped, err := store.JSONShape(store.StripReserved(patch))
	if err != nil {
		return model.Record{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return model.Record{}, err
	}
	cur, ok := c.byID[id]
	if !ok {
		return model.Record{}, store.ErrNotFound
	}

	next := cur
	next.Fields = model.Merge(cur.Fields, shaped)
	next.UpdatedAt = c.clock()
	if next.UpdatedAt.Before(cur.CreatedAt) {
		next.UpdatedAt = cur.CreatedAt
	}

	oldKey, hadKey := c.decl.Unique.Of(cur.Fields)
	newKey, hasKey := c.decl.Unique.Of(next.Fields)
	if hasKey {
		if owner, taken := c.keys[newKey]; taken && owner != id {
			return model.Record{}, store.ErrConflict
		}
	}
	if hadKey {
		delete(c.keys, oldKey)
	}
	if hasKey {
		c.keys[newKey] = id
	}
	c.byID[id] = next
	return next.Clone(), nil
}

func (c *Collection) DeleteByID(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return false, err
	}
	cur, ok := c.byID[id]
	if !ok {
		return false, nil
	}
	if key, hasKey := c.decl.Unique.Of(cur.Fields); hasKey {
		delete(c.keys, key)
	}
	delete(c.byID, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true, nil
}
