package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Pallinder/go-randomdata"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site-content-api/internal/app"
	"site-content-api/internal/auth"
	"site-content-api/internal/catalog"
	"site-content-api/internal/handler"
	"site-content-api/internal/middleware"
	"site-content-api/internal/model"
	"site-content-api/internal/resource"
	"site-content-api/internal/store"
	"site-content-api/internal/store/memory"
)

type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Count   *int              `json:"count"`
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Errors  []json.RawMessage `json:"errors"`
}

var staff = model.Identity{UserID: "u-1", Role: model.RoleManager, Name: "Mina"}

func setup(t *testing.T) *app.App {
	t.Helper()
	a, err := app.New(memory.New(), auth.NewTokens("test-secret", time.Hour), store.SystemClock)
	require.NoError(t, err)
	return a
}

func call(t *testing.T, h http.HandlerFunc, method, body string, vars map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, "/", bytes.NewBufferString(body))
	req = req.WithContext(middleware.WithIdentity(req.Context(), staff))
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	rec := httptest.NewRecorder()
	h(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func booking(date, clock string) map[string]any {
	return map[string]any{
		"clientName":      randomdata.FullName(randomdata.RandomGender),
		"clientEmail":     randomdata.Email(),
		"clientPhone":     "0244000000",
		"serviceType":     "POS System",
		"appointmentDate": date,
		"appointmentTime": clock,
	}
}

func jsonBody(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestCreateGetUpdateDelete(t *testing.T) {
	a := setup(t)
	h := a.Handler
	svc := h.Resource("appointments")

	rec, env := call(t, h.Create(svc), http.MethodPost, jsonBody(t, booking("2025-03-01", "10:00")), nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "Appointment booked successfully", env.Message)

	var created map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &created))
	id := created["id"].(string)
	assert.Equal(t, "pending", created["status"])
	assert.Equal(t, created["createdAt"], created["updatedAt"])

	rec, env = call(t, h.Get(svc), http.MethodGet, "", map[string]string{"id": id})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	rec, env = call(t, h.Update(svc), http.MethodPut, `{"status":"confirmed"}`, map[string]string{"id": id})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Appointment updated successfully", env.Message)
	var updated map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "confirmed", updated["status"])
	assert.Equal(t, created["clientEmail"], updated["clientEmail"])

	rec, env = call(t, h.Delete(svc), http.MethodDelete, "", map[string]string{"id": id})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Appointment deleted successfully", env.Message)
	assert.Empty(t, env.Data)

	rec, env = call(t, h.Delete(svc), http.MethodDelete, "", map[string]string{"id": id})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Appointment not found", env.Error)
}

func TestErrorEnvelopes(t *testing.T) {
	a := setup(t)
	h := a.Handler
	svc := h.Resource("contact")

	tests := []struct {
		name      string
		handler   http.HandlerFunc
		body      string
		vars      map[string]string
		status    int
		error     string
		fieldErrs int
	}{
		{"malformed json", h.Create(svc), `{"name":`, nil, http.StatusBadRequest, "invalid json body", 0},
		{"array body", h.Create(svc), `[1,2]`, nil, http.StatusBadRequest, "invalid json body", 0},
		{"every violation", h.Create(svc), `{"name":"A","email":"nope"}`, nil, http.StatusBadRequest, "Validation failed", 4},
		{"missing id", h.Get(svc), "", map[string]string{"id": "missing"}, http.StatusNotFound, "Contact message not found", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := call(t, tt.handler, http.MethodPost, tt.body, tt.vars)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.error, env.Error)
			assert.Len(t, env.Errors, tt.fieldErrs)
			if tt.error != "" {
				assert.False(t, env.Success)
				assert.Empty(t, env.Data)
			}
		})
	}
}

func TestListFilters(t *testing.T) {
	a := setup(t)
	h := a.Handler
	svc := h.Resource("testimonials")
	ctx := context.Background()

	for _, status := range []string{"approved", "pending", "approved"} {
		_, err := svc.Create(ctx, staff, map[string]any{
			"clientName": randomdata.FullName(randomdata.RandomGender),
			"content":    "Delivered on time and on budget.",
			"rating":     5,
			"status":     status,
		})
		require.NoError(t, err)
	}

	req := httptest.NewRequest(http.MethodGet, "/?status=approved", nil)
	rec := httptest.NewRecorder()
	h.List(svc)(rec, req)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NotNil(t, env.Count)
	assert.Equal(t, 2, *env.Count)

	req = httptest.NewRequest(http.MethodGet, "/?featured=maybe", nil)
	rec = httptest.NewRecorder()
	h.List(svc)(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEmptyListIsArray(t *testing.T) {
	a := setup(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	a.Handler.List(a.Handler.Resource("team"))(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":[],"count":0}`, rec.Body.String())
}

type brokenStore struct{ store.Store }

func (brokenStore) Find(context.Context, store.Query) ([]model.Record, error) {
	return nil, errors.New("pq: connection reset by peer")
}

func TestInternalErrorsAreHidden(t *testing.T) {
	svc := resource.New(catalog.Services(), brokenStore{}, nil)
	h := handler.New(nil, svc)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.List(svc)(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Server error"}`, rec.Body.String())
}

func TestAnalytics(t *testing.T) {
	a := setup(t)
	h := a.Handler
	ctx := context.Background()

	appts := h.Resource("appointments")
	for i, clock := range []string{"09:00", "10:00", "11:00", "12:00", "13:00", "14:00"} {
		doc := booking("2025-04-0"+string(rune('1'+i)), clock)
		if i == 0 {
			doc["status"] = "cancelled"
		}
		_, err := appts.Create(ctx, staff, doc)
		require.NoError(t, err)
	}
	_, err := h.Resource("inquiries").Create(ctx, staff, map[string]any{
		"clientName":  "Kwame Asante",
		"clientEmail": "kwame@example.com",
		"subject":     "Hospital system",
		"message":     "We need an HMS for three branches.",
		"priority":    "high",
	})
	require.NoError(t, err)

	rec, env := call(t, h.Dashboard, http.MethodGet, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var d handler.Dashboard
	require.NoError(t, json.Unmarshal(env.Data, &d))
	assert.Equal(t, 6, d.Totals["appointments"])
	assert.Equal(t, 1, d.Totals["inquiries"])
	assert.Equal(t, 0, d.Totals["blog"])
	assert.Len(t, d.Totals, 8)
	assert.Len(t, d.RecentAppointments, 5)
	assert.Len(t, d.RecentInquiries, 1)

	_, env = call(t, h.AppointmentStats, http.MethodGet, "", nil)
	var ab handler.Breakdown
	require.NoError(t, json.Unmarshal(env.Data, &ab))
	assert.Equal(t, 6, ab.Total)
	assert.Equal(t, 5, ab.ByStatus["pending"])
	assert.Equal(t, 1, ab.ByStatus["cancelled"])
	assert.Contains(t, ab.ByStatus, "rescheduled")

	_, env = call(t, h.InquiryStats, http.MethodGet, "", nil)
	var ib handler.Breakdown
	require.NoError(t, json.Unmarshal(env.Data, &ib))
	assert.Equal(t, 1, ib.ByStatus["new"])
	assert.Equal(t, 1, ib.ByPriority["high"])
	assert.Equal(t, 0, ib.ByPriority["low"])
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func TestReadyz(t *testing.T) {
	tests := []struct {
		name   string
		deps   []handler.Pinger
		status int
	}{
		{"no deps", nil, http.StatusOK},
		{"healthy", []handler.Pinger{pinger{}}, http.StatusOK},
		{"store down", []handler.Pinger{pinger{}, pinger{errors.New("down")}}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.Readyz(tt.deps...)(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
