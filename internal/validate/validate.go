// Package validate checks JSON documents against declarative rule sets.
// Every rule is evaluated and all violations are returned together.
package validate

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"site-content-api/internal/model"
)

// Kind is the JSON type a field must have.
type Kind int

const (
	Any Kind = iota
	String
	Number
	Integer
	Bool
	List
	Object
)

func (k Kind) String() string {
	switch k {
	case String:
		return "a string"
	case Number:
		return "a number"
	case Integer:
		return "an integer"
	case Bool:
		return "a boolean"
	case List:
		return "an array"
	case Object:
		return "an object"
	}
	return "a value"
}

// Rule constrains one field. Field may be a dotted path into nested
// objects. Tag is a validator tag evaluated against the field value.
type Rule struct {
	Field    string
	Kind     Kind
	Tag      string
	Optional bool
	Message  string

	// set by Relaxed on rules that were mandatory: the field may be
	// omitted from a patch but not cleared with null.
	keep bool
}

type RuleSet []Rule

// Relaxed returns the update variant of rs: same predicates, every field
// optional.
func (rs RuleSet) Relaxed() RuleSet {
	out := make(RuleSet, len(rs))
	for i, r := range rs {
		r.keep = !r.Optional
		r.Optional = true
		out[i] = r
	}
	return out
}

// Keep marks the named fields as not clearable: a patch may omit them but
// may not set them to null.
func (rs RuleSet) Keep(fields ...string) RuleSet {
	out := make(RuleSet, len(rs))
	copy(out, rs)
	for i := range out {
		if slices.Contains(fields, out[i].Field) {
			out[i].keep = true
		}
	}
	return out
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is returned when at least one rule fails.
type Errors struct {
	Fields []FieldError
}

func (e *Errors) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *Errors) Add(field, msg string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: msg})
}

// Err returns e when it holds violations and nil otherwise.
func (e *Errors) Err() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func As(err error) (*Errors, bool) {
	var e *Errors
	return e, errors.As(err, &e)
}

var (
	v     = newValidator()
	clock = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

func newValidator() *validator.Validate {
	val := validator.New()
	_ = val.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, ok := ParseDate(fl.Field().String())
		return ok
	})
	_ = val.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		return clock.MatchString(fl.Field().String())
	})
	return val
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// Check evaluates every rule against doc.
func (rs RuleSet) Check(doc map[string]any) error {
	errs := &Errors{}
	for _, r := range rs {
		val, found := model.Lookup(doc, r.Field)
		if !found || val == nil {
			if (!found && !r.Optional) || (found && (r.keep || !r.Optional)) {
				errs.Add(r.Field, r.message("required"))
			}
			continue
		}
		if !r.Kind.accepts(val) {
			errs.Add(r.Field, fmt.Sprintf("%s must be %s", label(r.Field), r.Kind))
			continue
		}
		if r.Tag == "" {
			continue
		}
		if err := v.Var(val, r.Tag); err != nil {
			tag := "invalid"
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) && len(verrs) > 0 {
				tag = verrs[0].Tag()
			}
			errs.Add(r.Field, r.message(tag))
		}
	}
	return errs.Err()
}

func (r Rule) message(tag string) string {
	if r.Message != "" {
		return r.Message
	}
	name := label(r.Field)
	switch tag {
	case "required":
		return name + " is required"
	case "email":
		return "Please provide a valid email"
	case "url":
		return name + " must be a valid URL"
	case "oneof":
		return "Invalid " + name
	case "isodate":
		return name + " must be a valid date"
	case "clock":
		return name + " must be a time in HH:MM format"
	}
	return name + " is invalid"
}

// label turns "price.amount" into "Price amount".
func label(field string) string {
	s := strings.ReplaceAll(field, ".", " ")
	var b strings.Builder
	for i, c := range s {
		if i > 0 && c >= 'A' && c <= 'Z' {
			b.WriteByte(' ')
			c += 'a' - 'A'
		}
		b.WriteRune(c)
	}
	out := b.String()
	if out == "" {
		return out
	}
	return strings.ToUpper(out[:1]) + out[1:]
}

func (k Kind) accepts(val any) bool {
	switch k {
	case String:
		_, ok := val.(string)
		return ok
	case Number:
		_, ok := number(val)
		return ok
	case Integer:
		f, ok := number(val)
		return ok && f == math.Trunc(f)
	case Bool:
		_, ok := val.(bool)
		return ok
	case List:
		switch val.(type) {
		case []any, []string:
			return true
		}
		return false
	case Object:
		_, ok := val.(map[string]any)
		return ok
	}
	return true
}

func number(val any) (float64, bool) {
	switch n := val.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
