package store

import (
	"fmt"
	"sort"
	"time"

	"site-content-api/internal/model"
)

// Match evaluates q against a record. Backends without a query language
// (memory, bolt) filter with it; postgres translates q to SQL instead.
func Match(r model.Record, q Query) bool {
	for _, c := range q.Filter {
		v, found := r.Get(c.Field)
		switch c.Op {
		case OpEq:
			if !found || Compare(v, c.Value) != 0 {
				return false
			}
		case OpContains:
			if !found || !contains(v, c.Value) {
				return false
			}
		case OpRange:
			if !found {
				return false
			}
			if c.From != nil && Compare(v, c.From) < 0 {
				return false
			}
			if c.To != nil && Compare(v, c.To) >= 0 {
				return false
			}
		}
	}
	return true
}

func contains(list, want any) bool {
	switch t := list.(type) {
	case []any:
		for _, item := range t {
			if Compare(item, want) == 0 {
				return true
			}
		}
	case []string:
		for _, item := range t {
			if Compare(item, want) == 0 {
				return true
			}
		}
	}
	return false
}

// SortRecords orders records by keys, then createdAt ascending, then id.
func SortRecords(recs []model.Record, keys []SortKey) {
	sort.SliceStable(recs, func(i, j int) bool {
		for _, k := range keys {
			a, _ := recs[i].Get(k.Field)
			b, _ := recs[j].Get(k.Field)
			c := Compare(a, b)
			if c == 0 {
				continue
			}
			if k.Desc {
				return c > 0
			}
			return c < 0
		}
		if !recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].CreatedAt.Before(recs[j].CreatedAt)
		}
		return recs[i].ID < recs[j].ID
	})
}

// Compare orders JSON-shaped values: nil < bool < number < string/time.
// Mismatched kinds fall back to rank order so sorting stays total.
func Compare(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return cmpInt(ra, rb)
	}
	switch x := a.(type) {
	case nil:
		return 0
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		default:
			return 1
		}
	case time.Time:
		y := asTime(b)
		switch {
		case x.Before(y):
			return -1
		case x.After(y):
			return 1
		}
		return 0
	}
	if fa, ok := number(a); ok {
		fb, _ := number(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	sa, sb := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	}
	return 0
}

func rank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case time.Time:
		return 3
	}
	if _, ok := number(v); ok {
		return 2
	}
	return 4
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	}
	return 0, false
}

func asTime(v any) time.Time {
	t, _ := v.(time.Time)
	return t
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
