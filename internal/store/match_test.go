package store_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"site-content-api/internal/model"
	"site-content-api/internal/store"
)

func TestCompare(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		a, b any
		want int
	}{
		{"nil first", nil, "x", -1},
		{"bool order", false, true, -1},
		{"int and float", 3, float64(3), 0},
		{"numbers", 2.5, 10, -1},
		{"strings", "10:00", "09:30", 1},
		{"times", now, now.Add(time.Second), -1},
		{"number before string", 1, "a", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, store.Compare(tt.a, tt.b))
		})
	}
}

func TestMatchNested(t *testing.T) {
	r := model.Record{ID: "1", Fields: map[string]any{
		"price": map[string]any{"type": "fixed", "amount": 100.0},
	}}
	assert.True(t, store.Match(r, store.Query{Filter: []store.Cond{store.Eq("price.type", "fixed")}}))
	assert.False(t, store.Match(r, store.Query{Filter: []store.Cond{store.Eq("price.currency", "USD")}}))
	assert.True(t, store.Match(r, store.Query{Filter: []store.Cond{store.Eq("id", "1")}}))
}

func TestUniqueKeyOf(t *testing.T) {
	u := &store.UniqueKey{Fields: []string{"date", "time"}, Unless: "status", UnlessIn: []string{"cancelled"}}

	k1, ok := u.Of(map[string]any{"date": "2025-03-01", "time": "10:00", "status": "pending"})
	assert.True(t, ok)
	k2, _ := u.Of(map[string]any{"date": " 2025-03-01", "time": "10:00"})
	assert.Equal(t, k1, k2)

	_, ok = u.Of(map[string]any{"date": "2025-03-01", "time": "10:00", "status": "cancelled"})
	assert.False(t, ok)
	_, ok = u.Of(map[string]any{"date": "2025-03-01"})
	assert.False(t, ok)

	var none *store.UniqueKey
	_, ok = none.Of(map[string]any{"date": "x"})
	assert.False(t, ok)
}

func TestSortRecordsTiebreak(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	recs := []model.Record{
		{ID: "b", CreatedAt: t0, Fields: map[string]any{}},
		{ID: "c", CreatedAt: t0.Add(-time.Hour), Fields: map[string]any{}},
		{ID: "a", CreatedAt: t0, Fields: map[string]any{}},
	}
	store.SortRecords(recs, nil)
	assert.Equal(t, "c", recs[0].ID)
	assert.Equal(t, "a", recs[1].ID)
	assert.Equal(t, "b", recs[2].ID)
}
