package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site-content-api/internal/validate"
)

var rules = validate.RuleSet{
	{Field: "clientName", Kind: validate.String, Tag: "required,min=2,max=100"},
	{Field: "clientEmail", Kind: validate.String, Tag: "required,email"},
	{Field: "appointmentDate", Kind: validate.String, Tag: "required,isodate"},
	{Field: "appointmentTime", Kind: validate.String, Tag: "required,clock"},
	{Field: "rating", Kind: validate.Integer, Tag: "min=1,max=5", Optional: true},
	{Field: "price.type", Kind: validate.String, Tag: "oneof=fixed starting custom", Optional: true},
	{Field: "category", Kind: validate.String, Tag: "oneof=POS HMS SMS 'School Management' Other", Optional: true},
	{Field: "features", Kind: validate.List, Tag: "min=1", Optional: true, Message: "At least one feature is required"},
}

func valid() map[string]any {
	return map[string]any{
		"clientName":      "John Doe",
		"clientEmail":     "john@x.com",
		"appointmentDate": "2025-03-01",
		"appointmentTime": "10:00",
	}
}

func fields(err error) []string {
	verr, ok := validate.As(err)
	if !ok {
		return nil
	}
	out := make([]string, len(verr.Fields))
	for i, f := range verr.Fields {
		out[i] = f.Field
	}
	return out
}

func TestCheckValid(t *testing.T) {
	doc := valid()
	doc["rating"] = float64(5)
	doc["price"] = map[string]any{"type": "fixed"}
	doc["category"] = "School Management"
	doc["features"] = []any{"a"}
	assert.NoError(t, rules.Check(doc))
}

func TestCheckGathersAll(t *testing.T) {
	err := rules.Check(map[string]any{
		"clientName":      "J",
		"clientEmail":     "not-an-email",
		"appointmentDate": "01/03/2025",
		"appointmentTime": "25:00",
		"rating":          float64(6),
	})
	require.Error(t, err)
	assert.Equal(t, []string{
		"clientName", "clientEmail", "appointmentDate", "appointmentTime", "rating",
	}, fields(err))
}

func TestCheckMessages(t *testing.T) {
	doc := valid()
	delete(doc, "clientName")
	doc["clientEmail"] = "bad"
	doc["features"] = []any{}

	verr, ok := validate.As(rules.Check(doc))
	require.True(t, ok)
	require.Len(t, verr.Fields, 3)
	assert.Equal(t, "Client name is required", verr.Fields[0].Message)
	assert.Equal(t, "Please provide a valid email", verr.Fields[1].Message)
	assert.Equal(t, "At least one feature is required", verr.Fields[2].Message)
}

func TestCheckKinds(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value any
	}{
		{"string as number", "clientName", float64(3)},
		{"fractional integer", "rating", 4.5},
		{"list as string", "features", "a,b"},
		{"nested not object", "price.type", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := valid()
			if tt.field == "price.type" {
				doc["price"] = "fixed"
				assert.NoError(t, rules.Check(doc), "unreachable nested path is treated as absent")
				return
			}
			doc[tt.field] = tt.value
			assert.Equal(t, []string{tt.field}, fields(rules.Check(doc)))
		})
	}
}

func TestRelaxed(t *testing.T) {
	relaxed := rules.Relaxed()

	assert.NoError(t, relaxed.Check(map[string]any{}))
	assert.NoError(t, relaxed.Check(map[string]any{"appointmentTime": "09:30"}))
	assert.Equal(t, []string{"clientEmail"}, fields(relaxed.Check(map[string]any{"clientEmail": "nope"})))

	// mandatory fields cannot be cleared, optional ones can
	assert.Equal(t, []string{"clientName"}, fields(relaxed.Check(map[string]any{"clientName": nil})))
	assert.NoError(t, relaxed.Check(map[string]any{"rating": nil}))
}

func TestKeep(t *testing.T) {
	kept := rules.Relaxed().Keep("rating", "price.type")

	assert.NoError(t, kept.Check(map[string]any{}))
	assert.NoError(t, kept.Check(map[string]any{"rating": 4.0}))
	assert.Equal(t, []string{"rating"}, fields(kept.Check(map[string]any{"rating": nil})))
	assert.Equal(t, []string{"price.type"}, fields(kept.Check(map[string]any{"price": map[string]any{"type": nil}})))
	assert.NoError(t, kept.Check(map[string]any{"category": nil}))

	// the receiver is left untouched
	assert.NoError(t, rules.Relaxed().Check(map[string]any{"rating": nil}))
}

func TestParseDate(t *testing.T) {
	d, ok := validate.ParseDate("2025-03-01T10:00:00Z")
	require.True(t, ok)
	assert.Equal(t, 2025, d.Year())

	_, ok = validate.ParseDate("2025-13-01")
	assert.False(t, ok)
}
