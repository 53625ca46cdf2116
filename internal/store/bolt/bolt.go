// Package bolt is the single-file embedded backend. Each collection is a
// bucket of JSON documents keyed by id, with a sibling bucket mapping
// uniqueness keys to ids.
package bolt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/boltdb/bolt"
	"github.com/google/uuid"

	"site-content-api/internal/model"
	"site-content-api/internal/store"
)

type Backend struct {
	DB    *bolt.DB
	clock store.Clock
}

func Open(path string) (*Backend, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &Backend{DB: db, clock: store.SystemClock}, nil
}

// Close the database and release the file lock.
func (b *Backend) Close() error {
	return b.DB.Close()
}

func (b *Backend) Ping(ctx context.Context) error {
	return b.DB.View(func(*bolt.Tx) error { return ctx.Err() })
}

func (b *Backend) Collection(c store.Collection) (store.Store, error) {
	if c.Name == "" {
		return nil, errors.New("collection name required")
	}
	col := &Collection{db: b.DB, decl: c, clock: b.clock,
		docs: []byte(c.Name), keys: []byte(c.Name + ".unique")}
	err := b.DB.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(col.docs); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(col.keys)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create bucket %s: %w", c.Name, err)
	}
	return col, nil
}

type Collection struct {
	db    *bolt.DB
	decl  store.Collection
	clock store.Clock
	docs  []byte
	keys  []byte
}

type document struct {
	ID        string         `json:"id"`
	Data      map[string]any `json:"data"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func (c *Collection) Find(ctx context.Context, q store.Query) ([]model.Record, error) {
	out := []model.Record{}
	err := c.each(ctx, func(r model.Record) {
		if store.Match(r, q) {
			out = append(out, r)
		}
	})
	if err != nil {
		return nil, err
	}
	store.SortRecords(out, c.decl.Sort)
	return out, nil
}

func (c *Collection) Count(ctx context.Context, q store.Query) (int, error) {
	n := 0
	err := c.each(ctx, func(r model.Record) {
		if store.Match(r, q) {
			n++
		}
	})
	return n, err
}

func (c *Collection) each(ctx context.Context, fn func(model.Record)) error {
	return c.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(c.docs).ForEach(func(_, v []byte) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := decode(v)
			if err != nil {
				return err
			}
			fn(r)
			return nil
		})
	})
}

func (c *Collection) FindByID(ctx context.Context, id string) (model.Record, error) {
	if err := ctx.Err(); err != nil {
		return model.Record{}, err
	}
	var r model.Record
	err := c.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(c.docs).Get([]byte(id))
		if v == nil {
			return store.ErrNotFound
		}
		var err error
		r, err = decode(v)
		return err
	})
	return r, err
}

func (c *Collection) Insert(ctx context.Context, fields map[string]any) (model.Record, error) {
	if err := ctx.Err(); err != nil {
		return model.Record{}, err
	}
	now := c.clock()
	d := document{
		ID:        uuid.New().String(),
		Data:      store.StripReserved(fields),
		CreatedAt: now,
		UpdatedAt: now,
	}
	value, err := json.Marshal(d)
	if err != nil {
		return model.Record{}, fmt.Errorf("encode %s: %w", c.decl.Name, err)
	}

	err = c.db.Update(func(tx *bolt.Tx) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if key, ok := c.decl.Unique.Of(d.Data); ok {
			idx := tx.Bucket(c.keys)
			if idx.Get([]byte(key)) != nil {
				return store.ErrConflict
			}
			if err := idx.Put([]byte(key), []byte(d.ID)); err != nil {
				return err
			}
		}
		return tx.Bucket(c.docs).Put([]byte(d.ID), value)
	})
	if err != nil {
		return model.Record{}, err
	}
	return decode(value)
}

func (c *Collection) UpdateByID(ctx context.Context, id string, patch map[string]any) (model.Record, error) {
	if err := ctx.Err(); err != nil {
		return model.Record{}, err
	}
	var value []byte
	err := c.db.Update(func(tx *bolt.Tx) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		docs, idx := tx.Bucket(c.docs), tx.Bucket(c.keys)
		raw := docs.Get([]byte(id))
		if raw == nil {
			return store.ErrNotFound
		}
		cur, err := decode(raw)
		if err != nil {
			return err
		}

		next := document{
			ID:        id,
			Data:      model.Merge(cur.Fields, store.StripReserved(patch)),
			CreatedAt: cur.CreatedAt,
			UpdatedAt: c.clock(),
		}
		if next.UpdatedAt.Before(next.CreatedAt) {
			next.UpdatedAt = next.CreatedAt
		}

		oldKey, hadKey := c.decl.Unique.Of(cur.Fields)
		newKey, hasKey := c.decl.Unique.Of(next.Data)
		if hasKey {
			if owner := idx.Get([]byte(newKey)); owner != nil && string(owner) != id {
				return store.ErrConflict
			}
		}
		if hadKey {
			if err := idx.Delete([]byte(oldKey)); err != nil {
				return err
			}
		}
		if hasKey {
			if err := idx.Put([]byte(newKey), []byte(id)); err != nil {
				return err
			}
		}

		if value, err = json.Marshal(next); err != nil {
			return err
		}
		return docs.Put([]byte(id), value)
	})
	if err != nil {
		return model.Record{}, err
	}
	return decode(value)
}

func (c *Collection) DeleteByID(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	found := false
	err := c.db.Update(func(tx *bolt.Tx) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		docs := tx.Bucket(c.docs)
		raw := docs.Get([]byte(id))
		if raw == nil {
			return nil
		}
		cur, err := decode(raw)
		if err != nil {
			return err
		}
		if key, ok := c.decl.Unique.Of(cur.Fields); ok {
			if err := tx.Bucket(c.keys).Delete([]byte(key)); err != nil {
				return err
			}
		}
		found = true
		return docs.Delete([]byte(id))
	})
	return found, err
}

func decode(v []byte) (model.Record, error) {
	var d document
	if err := json.Unmarshal(v, &d); err != nil {
		return model.Record{}, fmt.Errorf("decode document: %w", err)
	}
	if d.Data == nil {
		d.Data = map[string]any{}
	}
	return model.Record{
		ID:        d.ID,
		Fields:    d.Data,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}, nil
}
