package store

import (
	"context"
	"strings"

	"site-content-api/internal/model"
)

// UsersCollection holds dashboard accounts; email is unique.
var UsersCollection = Collection{
	Name:   "users",
	Sort:   []SortKey{{Field: "email"}},
	Unique: &UniqueKey{Fields: []string{"email"}},
}

// Users maps model.User onto a generic collection.
type Users struct {
	s Store
}

func NewUsers(s Store) *Users {
	return &Users{s: s}
}

// CreateUser stores u and fills in its id and timestamps. A taken email
// surfaces as ErrConflict.
func (u *Users) CreateUser(ctx context.Context, usr *model.User) error {
	r, err := u.s.Insert(ctx, map[string]any{
		"email":        strings.ToLower(strings.TrimSpace(usr.Email)),
		"passwordHash": usr.PasswordHash,
		"name":         usr.Name,
		"role":         usr.Role,
	})
	if err != nil {
		return err
	}
	*usr = toUser(r)
	return nil
}

func (u *Users) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	recs, err := u.s.Find(ctx, Query{Filter: []Cond{
		Eq("email", strings.ToLower(strings.TrimSpace(email))),
	}})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrNotFound
	}
	usr := toUser(recs[0])
	return &usr, nil
}

func (u *Users) UserByID(ctx context.Context, id string) (*model.User, error) {
	r, err := u.s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	usr := toUser(r)
	return &usr, nil
}

// UpdateUser applies the non-empty name, email and password hash of patch.
func (u *Users) UpdateUser(ctx context.Context, id string, patch model.User) (*model.User, error) {
	fields := map[string]any{}
	if patch.Name != "" {
		fields["name"] = patch.Name
	}
	if patch.Email != "" {
		fields["email"] = strings.ToLower(strings.TrimSpace(patch.Email))
	}
	if patch.PasswordHash != "" {
		fields["passwordHash"] = patch.PasswordHash
	}
	r, err := u.s.UpdateByID(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	usr := toUser(r)
	return &usr, nil
}

func (u *Users) CountUsers(ctx context.Context) (int, error) {
	return u.s.Count(ctx, Query{})
}

func toUser(r model.Record) model.User {
	return model.User{
		ID:           r.ID,
		Email:        r.String("email"),
		PasswordHash: r.String("passwordHash"),
		Name:         r.String("name"),
		Role:         r.String("role"),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}
