package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site-content-api/internal/apperr"
	"site-content-api/internal/auth"
	"site-content-api/internal/model"
	"site-content-api/internal/store"
	"site-content-api/internal/store/memory"
	"site-content-api/internal/validate"
)

const secret = "test-secret-at-least-32-bytes-long!!"

func accounts(t *testing.T) (*auth.Accounts, *auth.Tokens) {
	t.Helper()
	st, err := memory.New().Collection(store.UsersCollection)
	require.NoError(t, err)
	tokens := auth.NewTokens(secret, time.Hour)
	return auth.NewAccounts(store.NewUsers(st), tokens), tokens
}

func TestPasswordHash(t *testing.T) {
	h, err := auth.HashPassword("testpass123")
	require.NoError(t, err)
	assert.NotEqual(t, "testpass123", h)
	assert.True(t, auth.CheckPassword(h, "testpass123"))
	assert.False(t, auth.CheckPassword(h, "wrongpassword"))
}

func TestTokenRoundTrip(t *testing.T) {
	tokens := auth.NewTokens(secret, time.Hour)
	u := model.User{ID: uuid.New().String(), Role: model.RoleManager, Name: "Yaw"}

	raw, err := tokens.Make(u)
	require.NoError(t, err)

	c, err := tokens.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, model.Identity{UserID: u.ID, Role: model.RoleManager, Name: "Yaw"}, c.Identity())
}

func TestTokenRejected(t *testing.T) {
	tokens := auth.NewTokens(secret, time.Hour)
	u := model.User{ID: uuid.New().String(), Role: model.RoleAdmin}

	other, err := auth.NewTokens("another-secret-another-secret-1234", time.Hour).Make(u)
	require.NoError(t, err)
	expired, err := auth.NewTokens(secret, -time.Minute).Make(u)
	require.NoError(t, err)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, auth.Claims{UserID: u.ID, Role: model.RoleAdmin}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  string
	}{
		{"garbage", "not.a.jwt"},
		{"wrong secret", other},
		{"expired", expired},
		{"alg none", unsigned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tokens.Parse(tt.raw)
			assert.Error(t, err)
		})
	}
}

func TestRegisterAndLogin(t *testing.T) {
	a, tokens := accounts(t)
	ctx := context.Background()

	p, err := a.Register(ctx, map[string]any{
		"email": " Ops@Mitech.com ", "password": "testpass123", "name": "Ops Lead",
	})
	require.NoError(t, err)
	assert.Equal(t, "ops@mitech.com", p.Email)
	assert.Equal(t, model.RoleManager, p.Role)

	s, err := a.Login(ctx, map[string]any{"email": "OPS@mitech.com", "password": "testpass123"})
	require.NoError(t, err)
	assert.Equal(t, p.ID, s.User.ID)

	c, err := tokens.Parse(s.Token)
	require.NoError(t, err)
	assert.Equal(t, p.ID, c.UserID)
	assert.Equal(t, "Ops Lead", c.Name)
}

func TestRegisterValidation(t *testing.T) {
	a, _ := accounts(t)

	tests := []struct {
		name string
		req  map[string]any
	}{
		{"empty email", map[string]any{"email": "", "password": "testpass123", "name": "X Y"}},
		{"empty password", map[string]any{"email": "a@b.com", "password": "", "name": "X Y"}},
		{"short password", map[string]any{"email": "a@b.com", "password": "short", "name": "X Y"}},
		{"empty name", map[string]any{"email": "a@b.com", "password": "testpass123", "name": ""}},
		{"unknown role", map[string]any{"email": "a@b.com", "password": "testpass123", "name": "X Y", "role": "root"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Register(context.Background(), tt.req)
			_, ok := validate.As(err)
			assert.True(t, ok, "expected validation error, got %v", err)
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	a, _ := accounts(t)
	req := map[string]any{"email": "dup@mitech.com", "password": "testpass123", "name": "First"}

	_, err := a.Register(context.Background(), req)
	require.NoError(t, err)
	_, err = a.Register(context.Background(), req)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestLoginFailures(t *testing.T) {
	a, _ := accounts(t)
	_, err := a.Register(context.Background(), map[string]any{
		"email": "x@mitech.com", "password": "testpass123", "name": "Xena",
	})
	require.NoError(t, err)

	_, err = a.Login(context.Background(), map[string]any{"email": "x@mitech.com", "password": "wrongpassword"})
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	_, err = a.Login(context.Background(), map[string]any{"email": "nobody@nowhere.com", "password": "testpass123"})
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestUpdateProfile(t *testing.T) {
	a, _ := accounts(t)
	ctx := context.Background()
	p, err := a.Register(ctx, map[string]any{
		"email": "p@mitech.com", "password": "testpass123", "name": "Pat", "role": "admin",
	})
	require.NoError(t, err)

	up, err := a.UpdateProfile(ctx, p.ID, map[string]any{"name": "Patience", "role": "manager", "password": "newpass123"})
	require.NoError(t, err)
	assert.Equal(t, "Patience", up.Name)
	assert.Equal(t, model.RoleAdmin, up.Role)

	_, err = a.Login(ctx, map[string]any{"email": "p@mitech.com", "password": "newpass123"})
	assert.NoError(t, err)

	_, err = a.UpdateProfile(ctx, uuid.New().String(), map[string]any{"name": "Ghost"})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestBootstrap(t *testing.T) {
	a, _ := accounts(t)
	ctx := context.Background()

	require.NoError(t, a.Bootstrap(ctx, "admin@mitech.com", "changeme123", "Admin"))
	require.NoError(t, a.Bootstrap(ctx, "admin@mitech.com", "changeme123", "Admin"))
	require.NoError(t, a.Bootstrap(ctx, "", "", ""))

	s, err := a.Login(ctx, map[string]any{"email": "admin@mitech.com", "password": "changeme123"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, s.User.Role)
}
