// Package store defines the resource store contract shared by the memory,
// bolt and postgres backends.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"site-content-api/internal/model"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("unique key conflict")
)

// Store holds the records of one collection.
type Store interface {
	Find(ctx context.Context, q Query) ([]model.Record, error)
	Count(ctx context.Context, q Query) (int, error)
	FindByID(ctx context.Context, id string) (model.Record, error)
	Insert(ctx context.Context, fields map[string]any) (model.Record, error)
	UpdateByID(ctx context.Context, id string, patch map[string]any) (model.Record, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
}

// Backend opens collections on one persistence engine.
type Backend interface {
	Collection(c Collection) (Store, error)
	Ping(ctx context.Context) error
	Close() error
}

// Collection declares the name, ordering and uniqueness policy of a store.
type Collection struct {
	Name   string
	Sort   []SortKey
	Unique *UniqueKey
}

type SortKey struct {
	Field string
	Desc  bool
}

// UniqueKey makes the combination of Fields unique among records whose
// Unless field is not one of UnlessIn.
type UniqueKey struct {
	Fields   []string
	Unless   string
	UnlessIn []string
}

// Of returns the key for a document. ok is false when the document does not
// take part in the constraint (missing key field or excluded status).
func (u *UniqueKey) Of(fields map[string]any) (key string, ok bool) {
	if u == nil || len(u.Fields) == 0 {
		return "", false
	}
	if u.Unless != "" {
		if v, found := model.Lookup(fields, u.Unless); found {
			for _, skip := range u.UnlessIn {
				if fmt.Sprint(v) == skip {
					return "", false
				}
			}
		}
	}
	parts := make([]string, 0, len(u.Fields))
	for _, f := range u.Fields {
		v, found := model.Lookup(fields, f)
		if !found || v == nil {
			return "", false
		}
		s := strings.ToLower(strings.TrimSpace(fmt.Sprint(v)))
		if s == "" {
			return "", false
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, "\x1f"), true
}

type Op int

const (
	OpEq Op = iota
	// OpContains matches when the array at Field holds Value.
	OpContains
	// OpRange matches From <= value < To; either bound may be nil.
	OpRange
)

type Cond struct {
	Field string
	Op    Op
	Value any
	From  any
	To    any
}

func Eq(field string, v any) Cond       { return Cond{Field: field, Op: OpEq, Value: v} }
func Contains(field string, v any) Cond { return Cond{Field: field, Op: OpContains, Value: v} }
func Range(field string, from, to any) Cond {
	return Cond{Field: field, Op: OpRange, From: from, To: to}
}

// Query is a conjunction of conditions.
type Query struct {
	Filter []Cond
}

// Clock stamps createdAt/updatedAt. Postgres keeps microseconds, so every
// backend truncates to the same precision.
type Clock func() time.Time

func SystemClock() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// StripReserved drops keys owned by the store from a payload.
func StripReserved(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		switch k {
		case model.KeyID, model.KeyCreatedAt, model.KeyUpdatedAt:
			continue
		}
		out[k] = v
	}
	return out
}

// JSONShape round-trips fields through encoding/json so an in-process
// backend hands out the same value types (float64, []any, map[string]any)
// as the persistent ones.
func JSONShape(fields map[string]any) (map[string]any, error) {
	b, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	out := map[string]any{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	return out, nil
}
