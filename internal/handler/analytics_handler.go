package handler

import (
	"net/http"
	"slices"

	"github.com/samber/lo"

	"site-content-api/internal/apperr"
	"site-content-api/internal/catalog"
	"site-content-api/internal/model"
	"site-content-api/internal/respond"
	"site-content-api/internal/store"
)

const recentLimit = 5

type Dashboard struct {
	Totals             map[string]int `json:"totals"`
	RecentAppointments []model.Record `json:"recentAppointments"`
	RecentInquiries    []model.Record `json:"recentInquiries"`
}

type Breakdown struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"byStatus"`
	ByPriority map[string]int `json:"byPriority,omitempty"`
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	d := Dashboard{Totals: make(map[string]int, len(h.order))}
	for _, name := range h.order {
		n, err := h.resources[name].Count(ctx, store.Query{})
		if err != nil {
			fail(w, r, err)
			return
		}
		d.Totals[name] = n
	}

	var err error
	if d.RecentAppointments, err = h.recent(r, "appointments"); err != nil {
		fail(w, r, err)
		return
	}
	if d.RecentInquiries, err = h.recent(r, "inquiries"); err != nil {
		fail(w, r, err)
		return
	}
	respond.OK(w, d)
}

func (h *Handler) AppointmentStats(w http.ResponseWriter, r *http.Request) {
	recs, err := h.all(r, "appointments")
	if err != nil {
		fail(w, r, err)
		return
	}
	respond.OK(w, Breakdown{
		Total:    len(recs),
		ByStatus: tally(recs, "status", catalog.AppointmentStatuses),
	})
}

func (h *Handler) InquiryStats(w http.ResponseWriter, r *http.Request) {
	recs, err := h.all(r, "inquiries")
	if err != nil {
		fail(w, r, err)
		return
	}
	respond.OK(w, Breakdown{
		Total:      len(recs),
		ByStatus:   tally(recs, "status", catalog.InquiryStatuses),
		ByPriority: tally(recs, "priority", catalog.Priorities),
	})
}

func (h *Handler) all(r *http.Request, name string) ([]model.Record, error) {
	svc, ok := h.resources[name]
	if !ok {
		return nil, apperr.NotFound("Resource not found")
	}
	return svc.All(r.Context())
}

// recent returns the newest records of name by creation time.
func (h *Handler) recent(r *http.Request, name string) ([]model.Record, error) {
	recs, err := h.all(r, name)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(recs, func(a, b model.Record) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return lo.Slice(recs, 0, recentLimit), nil
}

// tally counts records per value of field. Every known value is present,
// zero when unused.
func tally(recs []model.Record, field string, known []string) map[string]int {
	counts := lo.CountValuesBy(recs, func(r model.Record) string { return r.String(field) })
	out := lo.SliceToMap(known, func(k string) (string, int) { return k, 0 })
	for k, n := range counts {
		if k == "" {
			continue
		}
		out[k] = n
	}
	return out
}
