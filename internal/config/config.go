// Package config loads process configuration from the environment, with an
// optional .env file in the working directory.
package config

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverBolt     = "bolt"
)

type Config struct {
	Port     string `env:"PORT,default=5000"`
	GRPCPort string `env:"GRPC_PORT"`

	StoreDriver string `env:"STORE_DRIVER,default=memory"`
	DatabaseURL string `env:"DATABASE_URL"`
	BoltPath    string `env:"BOLT_PATH,default=site-content.db"`

	JWTSecret string        `env:"JWT_SECRET"`
	JWTTTL    time.Duration `env:"JWT_TTL,default=24h"`

	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
	AdminName     string `env:"ADMIN_NAME,default=Administrator"`

	// CORSOrigins is comma separated.
	CORSOrigins string `env:"CORS_ORIGINS,default=http://localhost:3000"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS,default=1"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST,default=10"`
	RedisAddr      string  `env:"REDIS_ADDR"`
	RedisPassword  string  `env:"REDIS_PASSWORD"`
	RedisDB        int     `env:"REDIS_DB,default=0"`

	// TrustedProxies lists addresses or CIDR ranges, comma separated,
	// whose X-Forwarded-For header is believed.
	TrustedProxies string `env:"TRUSTED_PROXIES"`

	RequestTimeout   time.Duration `env:"REQUEST_TIMEOUT,default=15s"`
	RequestBodyLimit int64         `env:"REQUEST_BODY_LIMIT,default=10485760"`

	SeedFile string `env:"SEED_FILE"`
	LogLevel string `env:"LOG_LEVEL,default=info"`

	OTelEnabled     bool    `env:"OTEL_ENABLED,default=false"`
	OTelEndpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT,default=localhost:4317"`
	OTelSampleRatio float64 `env:"OTEL_SAMPLING_RATIO,default=1"`
}

// Load reads .env when present, then decodes and validates the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() (*Config, error) {
	var c Config
	// defaults alone are a valid configuration
	if err := envdecode.Decode(&c); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode env: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch c.StoreDriver {
	case DriverMemory:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	case DriverBolt:
		if c.BoltPath == "" {
			errs = append(errs, errors.New("BOLT_PATH is required for the bolt driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"))
	}
	if c.OTelSampleRatio < 0 || c.OTelSampleRatio > 1 {
		errs = append(errs, errors.New("OTEL_SAMPLING_RATIO must be within [0, 1]"))
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		errs = append(errs, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together"))
	}
	if _, err := c.Proxies(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Proxies parses TrustedProxies. A bare address is a single-host range.
func (c *Config) Proxies() ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, p := range strings.Split(c.TrustedProxies, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if strings.Contains(p, "/") {
			pfx, err := netip.ParsePrefix(p)
			if err != nil {
				return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
			}
			out = append(out, pfx.Masked())
			continue
		}
		addr, err := netip.ParseAddr(p)
		if err != nil {
			return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
		}
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}
