package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Pallinder/go-randomdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site-content-api/internal/app"
	"site-content-api/internal/auth"
	"site-content-api/internal/router"
	"site-content-api/internal/store"
	"site-content-api/internal/store/memory"
	"site-content-api/pkg/client"
)

func server(t *testing.T) *client.Client {
	t.Helper()
	a, err := app.New(memory.New(), auth.NewTokens("client-test-secret", time.Hour), store.SystemClock)
	require.NoError(t, err)
	require.NoError(t, a.Accounts.Bootstrap(context.Background(), "admin@mitech.com", "changeme123", "Admin"))

	srv := httptest.NewServer(router.New(a.Handler, router.Options{Tokens: a.Tokens}))
	t.Cleanup(srv.Close)
	return client.New(srv.URL + "/api")
}

func TestLoginAndToken(t *testing.T) {
	c := server(t)
	ctx := context.Background()

	res := c.Login(ctx, "admin@mitech.com", "wrong-password")
	assert.False(t, res.Success)
	assert.Equal(t, "Invalid credentials", res.Error)
	assert.Empty(t, c.Token())

	res = c.Login(ctx, "admin@mitech.com", "changeme123")
	require.True(t, res.Success, res.Error)
	assert.Equal(t, res.Data.Token, c.Token())

	p := c.Profile(ctx)
	require.True(t, p.Success)
	assert.Equal(t, "admin", p.Data.Role)

	c.ClearToken()
	p = c.Profile(ctx)
	assert.False(t, p.Success)
	assert.NotEmpty(t, p.Error)
}

func TestResourceRoundTrip(t *testing.T) {
	c := server(t)
	ctx := context.Background()
	require.True(t, c.Login(ctx, "admin@mitech.com", "changeme123").Success)

	amount := 1499.999
	created := c.Services.Create(ctx, client.Service{
		Title:            "Web Development",
		Description:      "Fast, accessible websites and web apps.",
		ShortDescription: "Websites that convert",
		Icon:             "globe",
		Features:         []string{"SEO", "CMS"},
		Category:         "web-development",
		Price:            &client.Price{Type: "starting", Amount: &amount, Currency: "USD"},
	})
	require.True(t, created.Success, created.Error)
	assert.Equal(t, "Service created successfully", created.Message)
	require.NotNil(t, created.Data.Price.Amount)
	assert.Equal(t, 1500.0, *created.Data.Price.Amount)
	assert.False(t, created.Data.CreatedAt.IsZero())

	id := created.Data.ID
	updated := c.Services.Update(ctx, id, map[string]any{"order": 3})
	require.True(t, updated.Success, updated.Error)
	assert.Equal(t, 3.0, updated.Data.Order)
	assert.Equal(t, created.Data.Title, updated.Data.Title)

	list := c.Services.List(ctx, url.Values{"category": {"web-development"}})
	require.True(t, list.Success)
	assert.Equal(t, 1, list.Count)
	assert.Len(t, list.Data, 1)

	del := c.Services.Delete(ctx, id)
	assert.True(t, del.Success)
	assert.Equal(t, "Service deleted successfully", del.Message)

	got := c.Services.Get(ctx, id)
	assert.False(t, got.Success)
	assert.Equal(t, "Service not found", got.Error)
}

func TestValidationErrorsSurface(t *testing.T) {
	c := server(t)
	res := c.Contact.Create(context.Background(), client.ContactMessage{Name: randomdata.FirstName(randomdata.RandomGender)})

	assert.False(t, res.Success)
	assert.Equal(t, "Validation failed", res.Error)
	fields := make([]string, 0, len(res.Errors))
	for _, e := range res.Errors {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{"email", "subject", "message"}, fields)
}

func TestBookingConflict(t *testing.T) {
	c := server(t)
	ctx := context.Background()
	appt := client.Appointment{
		ClientName:      "John Doe",
		ClientEmail:     "john@x.com",
		ClientPhone:     "0244000000",
		ServiceType:     "POS System",
		AppointmentDate: "2025-03-01",
		AppointmentTime: "10:00",
	}

	first := c.Appointments.Create(ctx, appt)
	require.True(t, first.Success, first.Error)
	assert.Equal(t, "pending", first.Data.Status)

	second := c.Appointments.Create(ctx, appt)
	assert.False(t, second.Success)
	assert.Equal(t, "This time slot is already booked", second.Error)
}

func TestFailureFallbacks(t *testing.T) {
	var posts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost:
			posts.Add(1)
			w.WriteHeader(http.StatusBadGateway)
		case r.URL.Path == "/api/team":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"legacy failure"}`))
		default:
			w.WriteHeader(http.StatusTeapot)
			_, _ = w.Write([]byte("<html>nope</html>"))
		}
	}))
	defer srv.Close()
	c := client.New(srv.URL + "/api")
	ctx := context.Background()

	res := c.Team.List(ctx, nil)
	assert.False(t, res.Success)
	assert.Equal(t, "legacy failure", res.Error)

	res2 := c.Blog.Get(ctx, "x")
	assert.False(t, res2.Success)
	assert.Equal(t, "HTTP error! status: 418", res2.Error)

	res3 := c.Inquiries.Create(ctx, client.Inquiry{ClientName: "X"})
	assert.False(t, res3.Success)
	assert.Equal(t, "HTTP error! status: 502", res3.Error)
	assert.EqualValues(t, 1, posts.Load())
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := client.NewWithClient(base+"/api", &http.Client{Timeout: time.Second})
	res := c.Services.List(context.Background(), nil)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
}
