package model

import (
	"encoding/json"
	"strings"
	"time"
)

// Reserved keys are owned by the store and never taken from a payload.
const (
	KeyID        = "id"
	KeyCreatedAt = "createdAt"
	KeyUpdatedAt = "updatedAt"
)

// Record is one document of a resource collection.
type Record struct {
	ID        string
	Fields    map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Get resolves a dotted path ("price.amount") inside the record.
// id, createdAt and updatedAt resolve to the record metadata.
func (r Record) Get(path string) (any, bool) {
	switch path {
	case KeyID:
		return r.ID, true
	case KeyCreatedAt:
		return r.CreatedAt, true
	case KeyUpdatedAt:
		return r.UpdatedAt, true
	}
	return Lookup(r.Fields, path)
}

// String returns the string value at path, or "" when absent or not a string.
func (r Record) String(path string) string {
	v, _ := r.Get(path)
	s, _ := v.(string)
	return s
}

func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Fields)+3)
	for k, v := range r.Fields {
		out[k] = v
	}
	out[KeyID] = r.ID
	out[KeyCreatedAt] = r.CreatedAt
	out[KeyUpdatedAt] = r.UpdatedAt
	return json.Marshal(out)
}

// Clone returns a deep copy so callers never share maps with a store.
func (r Record) Clone() Record {
	r.Fields = CloneFields(r.Fields)
	return r
}

// Lookup walks a dotted path through nested objects.
func Lookup(fields map[string]any, path string) (any, bool) {
	cur := any(fields)
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// CloneFields deep-copies JSON-shaped values (objects, arrays, scalars).
func CloneFields(fields map[string]any) map[string]any {
	if fields == nil {
		return nil
	}
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CloneFields(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}

// Merge applies a shallow patch: supplied keys overwrite, nil clears.
func Merge(dst, patch map[string]any) map[string]any {
	out := CloneFields(dst)
	if out == nil {
		out = map[string]any{}
	}
	for k, v := range patch {
		if v == nil {
			delete(out, k)
			continue
		}
		out[k] = cloneValue(v)
	}
	return out
}

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
)

// Identity is the authenticated caller of a request. The zero value is an
// anonymous caller.
type Identity struct {
	UserID string
	Role   string
	Name   string
}

func (i Identity) Anonymous() bool { return i.UserID == "" }

// User is an admin dashboard account. It lives in the internal users
// collection and is never exposed through the generic resource routes.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile is the outward view of a user, without credentials.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
