package config_test

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site-content-api/internal/config"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	c, err := config.FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "5000", c.Port)
	assert.Equal(t, config.DriverMemory, c.StoreDriver)
	assert.Equal(t, 24*time.Hour, c.JWTTTL)
	assert.Equal(t, 15*time.Second, c.RequestTimeout)
	assert.Equal(t, int64(10<<20), c.RequestBodyLimit)
	assert.Equal(t, []string{"http://localhost:3000"}, c.Origins())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "8080")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/site")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("RATE_LIMIT_RPS", "0.5")

	c, err := config.FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, 2*time.Hour, c.JWTTTL)
	assert.Equal(t, 0.5, c.RateLimitRPS)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.Origins())
}

func TestValidate(t *testing.T) {
	base := func() config.Config {
		return config.Config{
			JWTSecret:       "s",
			StoreDriver:     config.DriverMemory,
			JWTTTL:          time.Hour,
			RateLimitRPS:    1,
			RateLimitBurst:  5,
			OTelSampleRatio: 1,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr string
	}{
		{"ok", func(*config.Config) {}, ""},
		{"missing secret", func(c *config.Config) { c.JWTSecret = "" }, "JWT_SECRET"},
		{"postgres without url", func(c *config.Config) { c.StoreDriver = config.DriverPostgres }, "DATABASE_URL"},
		{"bolt without path", func(c *config.Config) { c.StoreDriver = config.DriverBolt }, "BOLT_PATH"},
		{"unknown driver", func(c *config.Config) { c.StoreDriver = "mongo" }, "STORE_DRIVER"},
		{"sample ratio", func(c *config.Config) { c.OTelSampleRatio = 2 }, "OTEL_SAMPLING_RATIO"},
		{"admin half set", func(c *config.Config) { c.AdminEmail = "a@b.com" }, "ADMIN_PASSWORD"},
		{"bad proxy", func(c *config.Config) { c.TrustedProxies = "10.0.0.0/8, lb.internal" }, "TRUSTED_PROXIES"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestProxies(t *testing.T) {
	c := config.Config{TrustedProxies: " 10.1.2.3/8, 192.168.1.10 ,, ::1"}

	got, err := c.Proxies()
	require.NoError(t, err)
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.168.1.10/32"),
		netip.MustParsePrefix("::1/128"),
	}, got)

	empty, err := (&config.Config{}).Proxies()
	require.NoError(t, err)
	assert.Empty(t, empty)
}
