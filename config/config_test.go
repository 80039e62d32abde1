package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonwraymond/opsdash/cache"
	"github.com/jonwraymond/opsdash/observe"
)

func TestDefault_Valid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.Cache.Validity.Std() != cache.DefaultValidity {
		t.Errorf("Validity = %v", cfg.Cache.Validity)
	}
	if cfg.Auth.Enabled() {
		t.Error("auth enabled by default")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"ok", func(*Config) {}, nil},
		{"no addr", func(c *Config) { c.Server.Addr = "" }, ErrMissingAddr},
		{"negative validity", func(c *Config) { c.Cache.Validity = -1 }, ErrNegativeDuration},
		{"short secret", func(c *Config) { c.Auth.JWTSecret = "short" }, ErrShortSecret},
		{"key without principal", func(c *Config) {
			c.Auth.APIKeys = []APIKeyConfig{{Key: "k"}}
		}, ErrInvalidAPIKey},
		{"bad log level", func(c *Config) { c.Observe.Logging.Level = "loud" }, observe.ErrInvalidLogLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Fatalf("Validate() = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCacheConfig_Policy(t *testing.T) {
	c := CacheConfig{Validity: Duration(time.Minute), Coalesce: true}
	p := c.Policy()
	if p.Validity != time.Minute || p.Retention != time.Minute {
		t.Errorf("Policy() = %+v, want retention tied to validity", p)
	}
	if p.SweepInterval != cache.DefaultSweepInterval || !p.Coalesce {
		t.Errorf("Policy() = %+v", p)
	}
}

func TestParse(t *testing.T) {
	t.Setenv("TEST_OPSDASH_SECRET", "0123456789abcdef-secret")
	data := []byte(`
server:
  addr: ":8080"
cache:
  validity: 2m
  retention: 1d
  sweep_interval: 30s
  scope_by_identity: true
auth:
  jwt_secret: ${TEST_OPSDASH_SECRET}
  api_keys:
    - id: ci
      key: "pa$$word"
      principal: ci-bot
      roles: [cache-admin]
observe:
  service_name: opsdash-test
  logging:
    enabled: true
    level: debug
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Cache.Validity.Std() != 2*time.Minute || cfg.Cache.Retention.Std() != 24*time.Hour {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if !cfg.Cache.ScopeByIdentity {
		t.Error("scope_by_identity not decoded")
	}
	if cfg.Auth.JWTSecret != "0123456789abcdef-secret" {
		t.Errorf("JWTSecret = %q", cfg.Auth.JWTSecret)
	}
	if len(cfg.Auth.APIKeys) != 1 || cfg.Auth.APIKeys[0].Key != "pa$word" {
		t.Errorf("APIKeys = %+v", cfg.Auth.APIKeys)
	}
	if cfg.Auth.AdminRole != DefaultAdminRole {
		t.Errorf("AdminRole default lost: %q", cfg.Auth.AdminRole)
	}
	if cfg.Observe.ServiceName != "opsdash-test" || cfg.Observe.Logging.Level != "debug" {
		t.Errorf("observe = %+v", cfg.Observe)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"missing env", "auth:\n  jwt_secret: ${OPSDASH_TEST_UNSET_VAR}\n", ErrMissingEnv},
		{"bad duration", "cache:\n  validity: soon\n", ErrInvalidDuration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); !errors.Is(err, tt.want) {
				t.Errorf("Parse() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"PORT":                            "9000",
		"OPSDASH_CACHE_VALIDITY":          "10m",
		"OPSDASH_CACHE_COALESCE":          "true",
		"OPSDASH_CACHE_SCOPE_BY_IDENTITY": "1",
		"OPSDASH_ADMIN_API_KEY":           "k-123",
		"OPSDASH_LOG_LEVEL":               "warn",
		"OPSDASH_METRICS_EXPORTER":        "none",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	if err := cfg.applyEnv(lookup); err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Cache.Validity.Std() != 10*time.Minute || !cfg.Cache.Coalesce || !cfg.Cache.ScopeByIdentity {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if !cfg.Auth.Enabled() || cfg.Auth.APIKeys[0].Roles[0] != DefaultAdminRole {
		t.Errorf("auth = %+v", cfg.Auth)
	}
	if cfg.Observe.Logging.Level != "warn" || cfg.Observe.Metrics.Enabled {
		t.Errorf("observe = %+v", cfg.Observe)
	}

	env["OPSDASH_ADDR"] = "127.0.0.1:7000"
	cfg = Default()
	_ = cfg.applyEnv(lookup)
	if cfg.Server.Addr != "127.0.0.1:7000" {
		t.Errorf("OPSDASH_ADDR did not win over PORT: %q", cfg.Server.Addr)
	}
}

func TestApplyEnv_Invalid(t *testing.T) {
	tests := map[string]string{
		"OPSDASH_CACHE_RETENTION": "forever",
		"OPSDASH_CACHE_COALESCE":  "maybe",
	}
	for k, v := range tests {
		t.Run(k, func(t *testing.T) {
			lookup := func(name string) (string, bool) {
				if name == k {
					return v, true
				}
				return "", false
			}
			if err := Default().applyEnv(lookup); err == nil {
				t.Error("applyEnv() = nil, want error")
			}
		})
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "opsdash.yaml")
	if err := os.WriteFile(path, []byte("cache:\n  validity: 1m\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OPSDASH_CACHE_SWEEP_INTERVAL", "2m")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Cache.Validity.Std() != time.Minute || cfg.Cache.SweepInterval.Std() != 2*time.Minute {
		t.Errorf("cache = %+v", cfg.Cache)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Load(missing) = nil error")
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("OPSDASH_TEST_DOTENV_LEVEL=debug\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("OPSDASH_TEST_DOTENV_LEVEL") })
	path := filepath.Join(dir, "opsdash.yaml")
	if err := os.WriteFile(path, []byte("observe:\n  logging:\n    level: ${OPSDASH_TEST_DOTENV_LEVEL}\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Observe.Logging.Level != "debug" {
		t.Errorf("Level = %q, want value from .env", cfg.Observe.Logging.Level)
	}
}
