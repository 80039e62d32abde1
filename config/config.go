package config

import (
	"fmt"
	"time"

	"github.com/jonwraymond/opsdash/cache"
	"github.com/jonwraymond/opsdash/observe"
)

// Defaults.
const (
	DefaultAddr            = ":3001"
	DefaultServiceName     = "opsdash"
	DefaultAdminRole       = "cache-admin"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultCacheWarnSize   = 10000
	minSecretLen           = 16
)

// Config is the complete opsdash configuration.
type Config struct {
	Server  ServerConfig   `yaml:"server"`
	Cache   CacheConfig    `yaml:"cache"`
	Auth    AuthConfig     `yaml:"auth"`
	Observe observe.Config `yaml:"observe"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr            string   `yaml:"addr"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// CacheConfig configures the response cache.
type CacheConfig struct {
	Validity        Duration `yaml:"validity"`
	Retention       Duration `yaml:"retention"`
	SweepInterval   Duration `yaml:"sweep_interval"`
	Coalesce        bool     `yaml:"coalesce"`
	ScopeByIdentity bool     `yaml:"scope_by_identity"`

	// WarnEntries is the entry count at which the cache health check
	// reports degraded. Zero disables the threshold.
	WarnEntries int `yaml:"warn_entries"`
}

// AuthConfig configures the admin surface credentials.
type AuthConfig struct {
	JWTSecret string         `yaml:"jwt_secret"`
	JWTIssuer string         `yaml:"jwt_issuer"`
	APIKeys   []APIKeyConfig `yaml:"api_keys"`
	AdminRole string         `yaml:"admin_role"`
}

// APIKeyConfig is a statically configured API key.
type APIKeyConfig struct {
	ID        string   `yaml:"id"`
	Key       string   `yaml:"key"`
	Principal string   `yaml:"principal"`
	Roles     []string `yaml:"roles"`
}

// Enabled reports whether any credential is configured. Without
// credentials the admin surface is served unauthenticated.
func (a AuthConfig) Enabled() bool {
	return a.JWTSecret != "" || len(a.APIKeys) > 0
}

// Default returns the built-in configuration.
func Default() *Config {
	p := cache.DefaultPolicy()
	return &Config{
		Server: ServerConfig{
			Addr:            DefaultAddr,
			ReadTimeout:     Duration(15 * time.Second),
			WriteTimeout:    Duration(15 * time.Second),
			ShutdownTimeout: Duration(DefaultShutdownTimeout),
		},
		Cache: CacheConfig{
			Validity:      Duration(p.Validity),
			Retention:     Duration(p.Retention),
			SweepInterval: Duration(p.SweepInterval),
			WarnEntries:   DefaultCacheWarnSize,
		},
		Auth: AuthConfig{AdminRole: DefaultAdminRole},
		Observe: observe.Config{
			ServiceName: DefaultServiceName,
			Version:     "1.0.0",
			Tracing:     observe.TracingConfig{Exporter: "none", SamplePct: 1.0},
			Metrics:     observe.MetricsConfig{Enabled: true, Exporter: "prometheus"},
			Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
		},
	}
}

// Policy returns the cache policy described by c.
func (c CacheConfig) Policy() cache.Policy {
	return cache.Policy{
		Validity:      c.Validity.Std(),
		Retention:     c.Retention.Std(),
		SweepInterval: c.SweepInterval.Std(),
		Coalesce:      c.Coalesce,
	}.Normalize()
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return ErrMissingAddr
	}

	durations := map[string]Duration{
		"server.read_timeout":     c.Server.ReadTimeout,
		"server.write_timeout":    c.Server.WriteTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
		"cache.validity":          c.Cache.Validity,
		"cache.retention":         c.Cache.Retention,
		"cache.sweep_interval":    c.Cache.SweepInterval,
	}
	for name, d := range durations {
		if d < 0 {
			return fmt.Errorf("%w: %s", ErrNegativeDuration, name)
		}
	}

	if c.Auth.JWTSecret != "" && len(c.Auth.JWTSecret) < minSecretLen {
		return ErrShortSecret
	}
	for i, k := range c.Auth.APIKeys {
		if k.Key == "" || k.Principal == "" {
			return fmt.Errorf("%w: entry %d", ErrInvalidAPIKey, i)
		}
	}

	if err := c.Observe.Validate(); err != nil {
		return fmt.Errorf("config: observe: %w", err)
	}
	return nil
}
