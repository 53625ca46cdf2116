// Package storetest is the behaviour every store backend must share.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Pallinder/go-randomdata"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site-content-api/internal/store"
)

// Open returns a fresh backend for one test. Collection names are made
// unique per test so shared databases need no cleanup.
type Open func(t *testing.T) store.Backend

var slots = store.Collection{
	Sort: []store.SortKey{{Field: "date"}, {Field: "time"}},
	Unique: &store.UniqueKey{
		Fields:   []string{"date", "time"},
		Unless:   "status",
		UnlessIn: []string{"cancelled"},
	},
}

func collection(t *testing.T, open Open, c store.Collection) store.Store {
	t.Helper()
	b := open(t)
	c.Name = "t_" + uuid.New().String()[:8]
	s, err := b.Collection(c)
	require.NoError(t, err)
	return s
}

func slot(date, tm string) map[string]any {
	return map[string]any{
		"name":   randomdata.FullName(randomdata.RandomGender),
		"email":  randomdata.Email(),
		"date":   date,
		"time":   tm,
		"status": "pending",
	}
}

func Run(t *testing.T, open Open) {
	ctx := context.Background()

	t.Run("insert assigns id and equal timestamps", func(t *testing.T) {
		s := collection(t, open, store.Collection{})
		r, err := s.Insert(ctx, map[string]any{
			"title": "POS", "id": "forged", "createdAt": "1999-01-01",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, r.ID)
		assert.NotEqual(t, "forged", r.ID)
		assert.Equal(t, r.CreatedAt, r.UpdatedAt)
		assert.Equal(t, "POS", r.String("title"))
		_, hasID := r.Fields["id"]
		assert.False(t, hasID)
	})

	t.Run("round trip", func(t *testing.T) {
		s := collection(t, open, store.Collection{})
		in := map[string]any{
			"title":    randomdata.SillyName(),
			"tags":     []any{"go", "api"},
			"price":    map[string]any{"amount": 12.5, "currency": "USD"},
			"isActive": true,
			"order":    float64(3),
		}
		r, err := s.Insert(ctx, in)
		require.NoError(t, err)

		got, err := s.FindByID(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, in, got.Fields)
		assert.True(t, r.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("find by id missing", func(t *testing.T) {
		s := collection(t, open, store.Collection{})
		_, err := s.FindByID(ctx, uuid.New().String())
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("partial update keeps absent fields", func(t *testing.T) {
		s := collection(t, open, store.Collection{})
		r, err := s.Insert(ctx, map[string]any{"a": "1", "b": "2", "c": "3"})
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)

		u, err := s.UpdateByID(ctx, r.ID, map[string]any{"b": "two", "c": nil, "id": "x"})
		require.NoError(t, err)
		assert.Equal(t, r.ID, u.ID)
		assert.Equal(t, map[string]any{"a": "1", "b": "two"}, u.Fields)
		assert.True(t, u.CreatedAt.Equal(r.CreatedAt))
		assert.True(t, u.UpdatedAt.After(r.UpdatedAt))
	})

	t.Run("update missing id", func(t *testing.T) {
		s := collection(t, open, store.Collection{})
		_, err := s.UpdateByID(ctx, uuid.New().String(), map[string]any{"a": "1"})
		assert.ErrorIs(t, err, store.ErrNotFound)
		n, err := s.Count(ctx, store.Query{})
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("delete reports found once", func(t *testing.T) {
		s := collection(t, open, store.Collection{})
		r, err := s.Insert(ctx, map[string]any{"a": "1"})
		require.NoError(t, err)
		_, err = s.Insert(ctx, map[string]any{"a": "2"})
		require.NoError(t, err)

		ok, err := s.DeleteByID(ctx, r.ID)
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = s.DeleteByID(ctx, r.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		n, err := s.Count(ctx, store.Query{})
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("filters", func(t *testing.T) {
		s := collection(t, open, store.Collection{})
		docs := []map[string]any{
			{"status": "approved", "tags": []any{"go"}, "date": "2025-03-01", "rating": float64(5), "isFeatured": true},
			{"status": "pending", "tags": []any{"js"}, "date": "2025-03-02", "rating": float64(3), "isFeatured": false},
			{"status": "approved", "tags": []any{"go", "js"}, "date": "2025-03-03", "rating": float64(4), "isFeatured": false},
		}
		for _, d := range docs {
			_, err := s.Insert(ctx, d)
			require.NoError(t, err)
		}

		tests := []struct {
			name string
			q    store.Query
			want int
		}{
			{"empty", store.Query{}, 3},
			{"eq string", store.Query{Filter: []store.Cond{store.Eq("status", "approved")}}, 2},
			{"eq bool", store.Query{Filter: []store.Cond{store.Eq("isFeatured", true)}}, 1},
			{"eq number", store.Query{Filter: []store.Cond{store.Eq("rating", float64(3))}}, 1},
			{"contains", store.Query{Filter: []store.Cond{store.Contains("tags", "js")}}, 2},
			{"range", store.Query{Filter: []store.Cond{store.Range("date", "2025-03-02", "2025-03-03")}}, 1},
			{"range open end", store.Query{Filter: []store.Cond{store.Range("date", "2025-03-02", nil)}}, 2},
			{"numeric range", store.Query{Filter: []store.Cond{store.Range("rating", float64(4), nil)}}, 2},
			{"conjunction", store.Query{Filter: []store.Cond{
				store.Eq("status", "approved"), store.Contains("tags", "js"),
			}}, 1},
			{"no match", store.Query{Filter: []store.Cond{store.Eq("status", "rejected")}}, 0},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				recs, err := s.Find(ctx, tt.q)
				require.NoError(t, err)
				assert.Len(t, recs, tt.want)
				n, err := s.Count(ctx, tt.q)
				require.NoError(t, err)
				assert.Equal(t, tt.want, n)
			})
		}
	})

	t.Run("empty find is not nil", func(t *testing.T) {
		s := collection(t, open, store.Collection{})
		recs, err := s.Find(ctx, store.Query{})
		require.NoError(t, err)
		assert.NotNil(t, recs)
		assert.Empty(t, recs)
	})

	t.Run("declared sort", func(t *testing.T) {
		s := collection(t, open, store.Collection{
			Sort: []store.SortKey{{Field: "order"}, {Field: "createdAt", Desc: true}},
		})
		for _, d := range []map[string]any{
			{"name": "c", "order": float64(2)},
			{"name": "a", "order": float64(1)},
			{"name": "b", "order": float64(1)},
		} {
			_, err := s.Insert(ctx, d)
			require.NoError(t, err)
			time.Sleep(2 * time.Millisecond)
		}
		recs, err := s.Find(ctx, store.Query{})
		require.NoError(t, err)
		require.Len(t, recs, 3)
		assert.Equal(t, []string{"b", "a", "c"}, []string{
			recs[0].String("name"), recs[1].String("name"), recs[2].String("name"),
		})
	})

	t.Run("unique key on insert", func(t *testing.T) {
		s := collection(t, open, slots)
		_, err := s.Insert(ctx, slot("2025-03-01", "10:00"))
		require.NoError(t, err)

		_, err = s.Insert(ctx, slot("2025-03-01", "10:00"))
		assert.ErrorIs(t, err, store.ErrConflict)

		cancelled := slot("2025-03-01", "10:00")
		cancelled["status"] = "cancelled"
		_, err = s.Insert(ctx, cancelled)
		assert.NoError(t, err)

		n, err := s.Count(ctx, store.Query{})
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("unique key on update", func(t *testing.T) {
		s := collection(t, open, slots)
		_, err := s.Insert(ctx, slot("2025-03-01", "10:00"))
		require.NoError(t, err)
		second, err := s.Insert(ctx, slot("2025-03-01", "11:00"))
		require.NoError(t, err)

		_, err = s.UpdateByID(ctx, second.ID, map[string]any{"time": "10:00"})
		assert.ErrorIs(t, err, store.ErrConflict)

		got, err := s.FindByID(ctx, second.ID)
		require.NoError(t, err)
		assert.Equal(t, "11:00", got.String("time"))

		// updating a record onto its own key is fine
		_, err = s.UpdateByID(ctx, second.ID, map[string]any{"name": "Jane"})
		assert.NoError(t, err)
	})

	t.Run("cancel frees the slot", func(t *testing.T) {
		s := collection(t, open, slots)
		first, err := s.Insert(ctx, slot("2025-04-01", "09:00"))
		require.NoError(t, err)

		_, err = s.UpdateByID(ctx, first.ID, map[string]any{"status": "cancelled"})
		require.NoError(t, err)
		_, err = s.Insert(ctx, slot("2025-04-01", "09:00"))
		assert.NoError(t, err)

		// reinstating the cancelled one now collides
		_, err = s.UpdateByID(ctx, first.ID, map[string]any{"status": "confirmed"})
		assert.ErrorIs(t, err, store.ErrConflict)
	})

	t.Run("delete frees the slot", func(t *testing.T) {
		s := collection(t, open, slots)
		first, err := s.Insert(ctx, slot("2025-05-01", "09:00"))
		require.NoError(t, err)
		_, err = s.DeleteByID(ctx, first.ID)
		require.NoError(t, err)
		_, err = s.Insert(ctx, slot("2025-05-01", "09:00"))
		assert.NoError(t, err)
	})

	t.Run("concurrent inserts for one slot", func(t *testing.T) {
		s := collection(t, open, slots)
		const workers = 8

		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			ok, clash int
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.Insert(ctx, slot("2025-06-01", "14:00"))
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					ok++
				case errors.Is(err, store.ErrConflict):
					clash++
				default:
					t.Errorf("insert: %v", err)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, ok)
		assert.Equal(t, workers-1, clash)
	})

	t.Run("cancelled context writes nothing", func(t *testing.T) {
		s := collection(t, open, store.Collection{})
		kept, err := s.Insert(ctx, map[string]any{"title": "POS"})
		require.NoError(t, err)

		gone, cancel := context.WithCancel(ctx)
		cancel()

		_, err = s.Insert(gone, map[string]any{"title": "HMS"})
		assert.ErrorIs(t, err, context.Canceled)
		_, err = s.UpdateByID(gone, kept.ID, map[string]any{"title": "SMS"})
		assert.ErrorIs(t, err, context.Canceled)
		_, err = s.DeleteByID(gone, kept.ID)
		assert.Error(t, err)

		n, err := s.Count(ctx, store.Query{})
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		got, err := s.FindByID(ctx, kept.ID)
		require.NoError(t, err)
		assert.Equal(t, "POS", got.String("title"))
	})
}
