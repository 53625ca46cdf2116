// Package resource is the generic CRUD engine. One Service runs the five
// canonical operations for one Definition against one store.
package resource

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/samber/lo"

	"site-content-api/internal/apperr"
	"site-content-api/internal/model"
	"site-content-api/internal/store"
	"site-content-api/internal/validate"
)

// Observer is told the outcome of every write.
type Observer func(resource, op string, err error)

type Service struct {
	def     Definition
	msgs    Messages
	store   store.Store
	observe Observer
	fields  map[string]bool
	lower   map[string]bool
	update  validate.RuleSet
}

func New(def Definition, st store.Store, observe Observer) *Service {
	if observe == nil {
		observe = func(string, string, error) {}
	}
	return &Service{
		def:     def,
		msgs:    def.messages(),
		store:   st,
		observe: observe,
		fields:  lo.SliceToMap(def.Fields, func(f string) (string, bool) { return f, true }),
		lower:   lo.SliceToMap(def.Lower, func(f string) (string, bool) { return f, true }),
		update:  def.updateRules(),
	}
}

func (s *Service) Definition() Definition { return s.def }
func (s *Service) Messages() Messages     { return s.msgs }

// List returns every record matching the declared filter parameters present
// in params. Undeclared parameters are ignored.
func (s *Service) List(ctx context.Context, params url.Values) ([]model.Record, error) {
	q, err := s.Query(params)
	if err != nil {
		return nil, err
	}
	recs, err := s.store.Find(ctx, q)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("list %s: %w", s.def.Name, err))
	}
	return recs, nil
}

// Query translates list parameters into a store query.
func (s *Service) Query(params url.Values) (store.Query, error) {
	var (
		q    store.Query
		errs = &validate.Errors{}
	)
	for _, f := range s.def.Filters {
		raw := strings.TrimSpace(params.Get(f.Param))
		if raw == "" {
			continue
		}
		switch f.Kind {
		case Exact:
			q.Filter = append(q.Filter, store.Eq(f.Field, raw))
		case Tag:
			q.Filter = append(q.Filter, store.Contains(f.Field, raw))
		case Flag:
			switch raw {
			case "true":
				q.Filter = append(q.Filter, store.Eq(f.Field, true))
			case "false":
				q.Filter = append(q.Filter, store.Eq(f.Field, false))
			default:
				errs.Add(f.Param, f.Param+" must be true or false")
			}
		case Day:
			d, ok := validate.ParseDate(raw)
			if !ok {
				errs.Add(f.Param, f.Param+" must be a valid date")
				continue
			}
			from := d.Format(time.DateOnly)
			to := d.AddDate(0, 0, 1).Format(time.DateOnly)
			q.Filter = append(q.Filter, store.Range(f.Field, from, to))
		}
	}
	if err := errs.Err(); err != nil {
		return store.Query{}, err
	}
	return q, nil
}

func (s *Service) Get(ctx context.Context, id string) (model.Record, error) {
	r, err := s.store.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return model.Record{}, apperr.NotFound(s.msgs.NotFound)
	}
	if err != nil {
		return model.Record{}, apperr.Internal(fmt.Errorf("get %s %s: %w", s.def.Name, id, err))
	}
	return r, nil
}

func (s *Service) Create(ctx context.Context, who model.Identity, payload map[string]any) (r model.Record, err error) {
	defer func() { s.observe(s.def.Name, "create", err) }()

	doc := s.prepare(payload)
	if err := s.def.Create.Check(doc); err != nil {
		return model.Record{}, err
	}
	fill(doc, s.def.Defaults)
	if s.def.BeforeCreate != nil {
		if err := s.def.BeforeCreate(ctx, who, doc); err != nil {
			return model.Record{}, err
		}
	}

	r, err = s.store.Insert(ctx, doc)
	switch {
	case errors.Is(err, store.ErrConflict):
		return model.Record{}, apperr.Conflict(s.msgs.Conflict)
	case err != nil:
		return model.Record{}, apperr.Internal(fmt.Errorf("create %s: %w", s.def.Name, err))
	}
	return r, nil
}

// Update merges payload into the record: supplied fields overwrite, absent
// fields are kept and explicit nulls clear.
func (s *Service) Update(ctx context.Context, who model.Identity, id string, payload map[string]any) (r model.Record, err error) {
	defer func() { s.observe(s.def.Name, "update", err) }()

	patch := s.prepare(payload)
	if err := s.update.Check(patch); err != nil {
		return model.Record{}, err
	}

	cur, err := s.Get(ctx, id)
	if err != nil {
		return model.Record{}, err
	}
	if s.def.BeforeUpdate != nil {
		merged := model.Merge(cur.Fields, patch)
		if err := s.def.BeforeUpdate(ctx, who, merged, patch); err != nil {
			return model.Record{}, err
		}
	}

	r, err = s.store.UpdateByID(ctx, id, patch)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return model.Record{}, apperr.NotFound(s.msgs.NotFound)
	case errors.Is(err, store.ErrConflict):
		return model.Record{}, apperr.Conflict(s.msgs.Conflict)
	case err != nil:
		return model.Record{}, apperr.Internal(fmt.Errorf("update %s %s: %w", s.def.Name, id, err))
	}
	return r, nil
}

func (s *Service) Delete(ctx context.Context, id string) (err error) {
	defer func() { s.observe(s.def.Name, "delete", err) }()

	found, err := s.store.DeleteByID(ctx, id)
	if err != nil {
		return apperr.Internal(fmt.Errorf("delete %s %s: %w", s.def.Name, id, err))
	}
	if !found {
		return apperr.NotFound(s.msgs.NotFound)
	}
	return nil
}

func (s *Service) Count(ctx context.Context, q store.Query) (int, error) {
	n, err := s.store.Count(ctx, q)
	if err != nil {
		return 0, apperr.Internal(fmt.Errorf("count %s: %w", s.def.Name, err))
	}
	return n, nil
}

// All returns every record in the collection's declared order.
func (s *Service) All(ctx context.Context) ([]model.Record, error) {
	recs, err := s.store.Find(ctx, store.Query{})
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("list %s: %w", s.def.Name, err))
	}
	return recs, nil
}

// prepare whitelists, trims and normalises a payload into a fresh document.
func (s *Service) prepare(payload map[string]any) map[string]any {
	doc := make(map[string]any, len(payload))
	for k, v := range payload {
		if !s.fields[k] {
			continue
		}
		if str, ok := v.(string); ok {
			str = strings.TrimSpace(str)
			if s.lower[k] {
				str = strings.ToLower(str)
			}
			v = str
		}
		doc[k] = v
	}
	if s.def.Normalize != nil {
		s.def.Normalize(doc)
	}
	return doc
}

// fill copies defaults into doc where absent, descending into objects.
func fill(doc, defaults map[string]any) {
	for k, def := range defaults {
		cur, ok := doc[k]
		if !ok || cur == nil {
			if m, isMap := def.(map[string]any); isMap {
				sub := map[string]any{}
				fill(sub, m)
				doc[k] = sub
				continue
			}
			doc[k] = def
			continue
		}
		if sub, isMap := cur.(map[string]any); isMap {
			if m, defIsMap := def.(map[string]any); defIsMap {
				fill(sub, m)
			}
		}
	}
}
