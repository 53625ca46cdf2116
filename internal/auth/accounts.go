package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"site-content-api/internal/apperr"
	"site-content-api/internal/model"
	"site-content-api/internal/store"
	v "site-content-api/internal/validate"
)

var (
	registerRules = v.RuleSet{
		{Field: "email", Kind: v.String, Tag: "email", Message: "Please provide a valid email"},
		{Field: "password", Kind: v.String, Tag: "min=6", Message: "Password must be at least 6 characters"},
		{Field: "name", Kind: v.String, Tag: "min=2", Message: "Name must be at least 2 characters"},
		{Field: "role", Kind: v.String, Tag: "oneof=admin manager", Optional: true, Message: "Invalid role"},
	}
	loginRules = v.RuleSet{
		{Field: "email", Kind: v.String, Tag: "email", Message: "Please provide a valid email"},
		{Field: "password", Kind: v.String, Tag: "required", Message: "Password is required"},
	}
	profileRules = v.RuleSet{
		{Field: "email", Kind: v.String, Tag: "email", Optional: true, Message: "Please provide a valid email"},
		{Field: "name", Kind: v.String, Tag: "min=2", Optional: true, Message: "Name must be at least 2 characters"},
		{Field: "password", Kind: v.String, Tag: "min=6", Optional: true, Message: "Password must be at least 6 characters"},
	}
)

// Accounts runs login, registration and profile changes for dashboard users.
type Accounts struct {
	users  *store.Users
	tokens *Tokens
}

func NewAccounts(users *store.Users, tokens *Tokens) *Accounts {
	return &Accounts{users: users, tokens: tokens}
}

type Session struct {
	Token string        `json:"token"`
	User  model.Profile `json:"user"`
}

func (a *Accounts) Login(ctx context.Context, payload map[string]any) (*Session, error) {
	doc := trimmed(payload, "email", "password")
	if err := loginRules.Check(doc); err != nil {
		return nil, err
	}
	email, pw := doc["email"].(string), doc["password"].(string)

	u, err := a.users.UserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Unauthorized("Invalid credentials")
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("login: %w", err))
	}
	if !CheckPassword(u.PasswordHash, pw) {
		return nil, apperr.Unauthorized("Invalid credentials")
	}

	tok, err := a.tokens.Make(*u)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("sign token: %w", err))
	}
	return &Session{Token: tok, User: u.Profile()}, nil
}

// Register creates a dashboard user. Role defaults to manager.
func (a *Accounts) Register(ctx context.Context, payload map[string]any) (*model.Profile, error) {
	doc := trimmed(payload, "email", "password", "name", "role")
	if err := registerRules.Check(doc); err != nil {
		return nil, err
	}
	role, _ := doc["role"].(string)
	if role == "" {
		role = model.RoleManager
	}
	u, err := a.create(ctx, doc["email"].(string), doc["password"].(string), doc["name"].(string), role)
	if err != nil {
		return nil, err
	}
	p := u.Profile()
	return &p, nil
}

func (a *Accounts) create(ctx context.Context, email, pw, name, role string) (*model.User, error) {
	hash, err := HashPassword(pw)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("hash password: %w", err))
	}
	u := &model.User{Email: email, PasswordHash: hash, Name: name, Role: role}
	err = a.users.CreateUser(ctx, u)
	if errors.Is(err, store.ErrConflict) {
		return nil, apperr.Conflict("User already exists")
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("create user: %w", err))
	}
	return u, nil
}

func (a *Accounts) Profile(ctx context.Context, id string) (*model.Profile, error) {
	u, err := a.users.UserByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("profile: %w", err))
	}
	p := u.Profile()
	return &p, nil
}

// UpdateProfile changes name, email or password of the caller. Role is
// never taken from the payload.
func (a *Accounts) UpdateProfile(ctx context.Context, id string, payload map[string]any) (*model.Profile, error) {
	doc := trimmed(payload, "email", "name", "password")
	if err := profileRules.Check(doc); err != nil {
		return nil, err
	}
	var patch model.User
	patch.Email, _ = doc["email"].(string)
	patch.Name, _ = doc["name"].(string)
	if pw, _ := doc["password"].(string); pw != "" {
		hash, err := HashPassword(pw)
		if err != nil {
			return nil, apperr.Internal(fmt.Errorf("hash password: %w", err))
		}
		patch.PasswordHash = hash
	}

	u, err := a.users.UpdateUser(ctx, id, patch)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, apperr.NotFound("User not found")
	case errors.Is(err, store.ErrConflict):
		return nil, apperr.Conflict("User already exists")
	case err != nil:
		return nil, apperr.Internal(fmt.Errorf("update profile: %w", err))
	}
	p := u.Profile()
	return &p, nil
}

// Bootstrap creates the first admin when no account with email exists.
func (a *Accounts) Bootstrap(ctx context.Context, email, pw, name string) error {
	if email == "" || pw == "" {
		return nil
	}
	_, err := a.users.UserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if _, err := a.create(ctx, strings.ToLower(email), pw, name, model.RoleAdmin); err != nil {
		if apperr.KindOf(err) == apperr.KindConflict {
			return nil
		}
		return err
	}
	log.WithField("email", email).Info("bootstrap admin created")
	return nil
}

// trimmed keeps the named string keys of payload, trimmed. Emails are
// lower-cased. Passwords are kept verbatim.
func trimmed(payload map[string]any, keys ...string) map[string]any {
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		val, ok := payload[k]
		if !ok {
			continue
		}
		if s, isStr := val.(string); isStr && k != "password" {
			s = strings.TrimSpace(s)
			if k == "email" {
				s = strings.ToLower(s)
			}
			val = s
		}
		out[k] = val
	}
	return out
}
