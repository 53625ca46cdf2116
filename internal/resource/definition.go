package resource

import (
	"context"

	"site-content-api/internal/model"
	"site-content-api/internal/store"
	"site-content-api/internal/validate"
)

type FilterKind int

const (
	// Exact matches the query value verbatim.
	Exact FilterKind = iota
	// Flag accepts only "true" or "false".
	Flag
	// Day matches every value on the given calendar day.
	Day
	// Tag matches when the array field holds the value.
	Tag
)

// Filter binds a list query parameter to a document field.
type Filter struct {
	Param string
	Field string
	Kind  FilterKind
}

// Access lists the roles allowed per operation. A nil list is public.
type Access struct {
	List   []string
	Get    []string
	Create []string
	Update []string
	Delete []string

	// LimitCreate puts public submissions behind the rate limiter.
	LimitCreate bool
}

type Messages struct {
	Created  string
	Updated  string
	Deleted  string
	NotFound string
	Conflict string
}

// Definition parametrises the engine for one resource type.
type Definition struct {
	// Name is both the route segment and the collection name.
	Name     string
	Singular string

	// Fields is the top-level payload whitelist.
	Fields []string
	// Lower names string fields stored lower-cased, such as emails.
	Lower []string

	Create validate.RuleSet
	// Update defaults to Create.Relaxed(). Fields named in Defaults are
	// never clearable on update.
	Update validate.RuleSet

	Filters []Filter
	Sort    []store.SortKey
	Unique  *store.UniqueKey

	// Defaults fill absent fields on create, recursing into objects.
	Defaults map[string]any

	// Normalize runs on every payload after trimming and before validation.
	Normalize func(doc map[string]any)
	// BeforeCreate may derive fields on a validated, defaulted document.
	BeforeCreate func(ctx context.Context, who model.Identity, doc map[string]any) error
	// BeforeUpdate sees the merged document and may add derived fields to patch.
	BeforeUpdate func(ctx context.Context, who model.Identity, merged, patch map[string]any) error

	Access   Access
	Messages Messages
}

// Collection is the store declaration for the resource.
func (d Definition) Collection() store.Collection {
	return store.Collection{Name: d.Name, Sort: d.Sort, Unique: d.Unique}
}

// updateRules also forbids nulling any field that has a create default,
// so enums such as status always hold a value.
func (d Definition) updateRules() validate.RuleSet {
	rules := d.Update
	if rules == nil {
		rules = d.Create.Relaxed()
	}
	var defaulted []string
	for _, r := range rules {
		if _, ok := model.Lookup(d.Defaults, r.Field); ok {
			defaulted = append(defaulted, r.Field)
		}
	}
	return rules.Keep(defaulted...)
}

func (d Definition) messages() Messages {
	m := d.Messages
	if m.Created == "" {
		m.Created = d.Singular + " created successfully"
	}
	if m.Updated == "" {
		m.Updated = d.Singular + " updated successfully"
	}
	if m.Deleted == "" {
		m.Deleted = d.Singular + " deleted successfully"
	}
	if m.NotFound == "" {
		m.NotFound = d.Singular + " not found"
	}
	if m.Conflict == "" {
		m.Conflict = d.Singular + " already exists"
	}
	return m
}
