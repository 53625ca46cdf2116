package catalog_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site-content-api/internal/apperr"
	"site-content-api/internal/catalog"
	"site-content-api/internal/model"
	"site-content-api/internal/resource"
	"site-content-api/internal/store/memory"
	"site-content-api/internal/validate"
)

var editor = model.Identity{UserID: "u-1", Role: model.RoleManager, Name: "Kofi Boateng"}

func newService(t *testing.T, def resource.Definition) *resource.Service {
	t.Helper()
	st, err := memory.New().Collection(def.Collection())
	require.NoError(t, err)
	return resource.New(def, st, nil)
}

func TestDefinitions(t *testing.T) {
	defs := catalog.Definitions(nil)
	names := make(map[string]bool)
	for _, d := range defs {
		assert.False(t, names[d.Name], "duplicate %s", d.Name)
		names[d.Name] = true
		assert.NotEmpty(t, d.Fields, d.Name)
		assert.NotEmpty(t, d.Create, d.Name)
		assert.NotEmpty(t, d.Sort, d.Name)
		// public creates are only allowed behind the rate limiter
		assert.True(t, d.Access.Create != nil || d.Access.LimitCreate, d.Name)
		assert.NotEmpty(t, d.Access.Delete, d.Name)
	}
	assert.Len(t, defs, 8)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Choosing a POS for a growing shop", "choosing-a-pos-for-a-growing-shop"},
		{"  Go & PostgreSQL: 10 tips!  ", "go-postgresql-10-tips"},
		{"---", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, catalog.Slugify(tt.in))
		})
	}
}

func TestReadTime(t *testing.T) {
	assert.Equal(t, 1, catalog.ReadTime(""))
	assert.Equal(t, 1, catalog.ReadTime("a few words"))
	assert.Equal(t, 2, catalog.ReadTime(strings.Repeat("word ", 201)))
}

func TestBlogPublishing(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	svc := newService(t, catalog.Blog(func() time.Time { return now }))
	ctx := context.Background()

	post, err := svc.Create(ctx, editor, map[string]any{
		"title":    "Choosing a POS for a growing shop",
		"excerpt":  "What to look for before you buy.",
		"content":  strings.Repeat("A point of sale is more than a till. ", 5),
		"category": "Guides",
	})
	require.NoError(t, err)
	assert.Equal(t, "choosing-a-pos-for-a-growing-shop", post.String("slug"))
	assert.Equal(t, "Kofi Boateng", post.String("author"))
	assert.Equal(t, "draft", post.String("status"))
	assert.Equal(t, false, post.Fields["isPublished"])
	assert.Equal(t, 1.0, post.Fields["readTime"])
	_, hasPublished := post.Get("publishedAt")
	assert.False(t, hasPublished)

	post, err = svc.Update(ctx, editor, post.ID, map[string]any{"status": "published"})
	require.NoError(t, err)
	assert.Equal(t, true, post.Fields["isPublished"])
	assert.Equal(t, "2025-03-01T09:30:00Z", post.String("publishedAt"))

	now = now.Add(time.Hour)
	post, err = svc.Update(ctx, editor, post.ID, map[string]any{"title": "Picking a POS"})
	require.NoError(t, err)
	assert.Equal(t, "picking-a-pos", post.String("slug"))
	assert.Equal(t, "2025-03-01T09:30:00Z", post.String("publishedAt"))

	_, err = svc.Create(ctx, editor, map[string]any{
		"title":    "Picking a POS!",
		"excerpt":  "Same slug, different punctuation.",
		"content":  strings.Repeat("Duplicate titles collide on their slug. ", 3),
		"category": "Guides",
	})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	e, _ := apperr.Lookup(err)
	assert.Equal(t, "A blog post with this title already exists", e.Message)
}

func TestAppointmentDates(t *testing.T) {
	svc := newService(t, catalog.Appointments())
	ctx := context.Background()
	base := map[string]any{
		"clientName":  "John Doe",
		"clientEmail": " John@X.com ",
		"clientPhone": "0244000000",
		"serviceType": "POS System",
	}
	with := func(date, clock string) map[string]any {
		doc := model.CloneFields(base)
		doc["appointmentDate"] = date
		doc["appointmentTime"] = clock
		return doc
	}

	r, err := svc.Create(ctx, editor, with("2025-03-01T14:00:00Z", "09:30"))
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01", r.String("appointmentDate"))
	assert.Equal(t, "john@x.com", r.String("clientEmail"))

	tests := []struct {
		name  string
		date  string
		clock string
		field string
	}{
		{"bad date", "first of march", "10:00", "appointmentDate"},
		{"bad clock", "2025-03-02", "25:00", "appointmentTime"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, editor, with(tt.date, tt.clock))
			verrs, ok := validate.As(err)
			require.True(t, ok, "expected validation error, got %v", err)
			require.Len(t, verrs.Fields, 1)
			assert.Equal(t, tt.field, verrs.Fields[0].Field)
		})
	}
}

func TestProductCategories(t *testing.T) {
	svc := newService(t, catalog.Products())
	doc := func(category string) map[string]any {
		return map[string]any{
			"name":             "Campus",
			"description":      "School management for admissions and fees.",
			"shortDescription": "Run your school",
			"category":         category,
			"features":         []any{"Fee tracking"},
			"technologies":     []any{"Go"},
		}
	}

	for _, c := range []string{"POS", "HMS", "School Management", "Other"} {
		_, err := svc.Create(context.Background(), editor, doc(c))
		assert.NoError(t, err, c)
	}
	_, err := svc.Create(context.Background(), editor, doc("ERP"))
	_, ok := validate.As(err)
	assert.True(t, ok)
}

func TestInquiryBudgetRounding(t *testing.T) {
	svc := newService(t, catalog.Inquiries())
	r, err := svc.Create(context.Background(), model.Identity{}, map[string]any{
		"clientName":  "Kwame Asante",
		"clientEmail": "kwame@example.com",
		"subject":     "Hospital system",
		"message":     "We need an HMS for three branches.",
		"budget":      map[string]any{"min": 1000.005, "max": 2500.125, "currency": "USD"},
	})
	require.NoError(t, err)
	lo, _ := r.Get("budget.min")
	hi, _ := r.Get("budget.max")
	assert.Equal(t, 1000.0, lo)
	assert.Equal(t, 2500.12, hi)
	assert.Equal(t, "new", r.String("status"))
	assert.Equal(t, "medium", r.String("priority"))
}
