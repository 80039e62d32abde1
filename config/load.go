package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "OPSDASH_"

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty), and the environment, then validates it.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML data over the defaults without consulting the
// environment beyond ${VAR} expansion.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(data); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := c.decode(data); err != nil {
		return fmt.Errorf("config: %s: %w", path, err)
	}
	return nil
}

func (c *Config) decode(data []byte) error {
	expanded, err := ExpandEnvStrict(string(data))
	if err != nil {
		return err
	}
	return yaml.Unmarshal([]byte(expanded), c)
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	dur := func(name string, dst *Duration) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok || v == "" {
			return nil
		}
		d, err := ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = d
		return nil
	}
	boolean := func(name string, dst *bool) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %s%s: %w", EnvPrefix, name, err)
		}
		*dst = b
		return nil
	}

	if port, ok := lookup("PORT"); ok && port != "" {
		c.Server.Addr = ":" + strings.TrimPrefix(port, ":")
	}
	str("ADDR", &c.Server.Addr)

	for name, dst := range map[string]*Duration{
		"CACHE_VALIDITY":       &c.Cache.Validity,
		"CACHE_RETENTION":      &c.Cache.Retention,
		"CACHE_SWEEP_INTERVAL": &c.Cache.SweepInterval,
	} {
		if err := dur(name, dst); err != nil {
			return err
		}
	}
	if err := boolean("CACHE_COALESCE", &c.Cache.Coalesce); err != nil {
		return err
	}
	if err := boolean("CACHE_SCOPE_BY_IDENTITY", &c.Cache.ScopeByIdentity); err != nil {
		return err
	}

	str("JWT_SECRET", &c.Auth.JWTSecret)
	if key, ok := lookup(EnvPrefix + "ADMIN_API_KEY"); ok && key != "" {
		c.Auth.APIKeys = append(c.Auth.APIKeys, APIKeyConfig{
			ID:        "env",
			Key:       key,
			Principal: "admin",
			Roles:     []string{c.Auth.AdminRole},
		})
	}

	str("LOG_LEVEL", &c.Observe.Logging.Level)
	if v, ok := lookup(EnvPrefix + "METRICS_EXPORTER"); ok && v != "" {
		c.Observe.Metrics.Exporter = v
		c.Observe.Metrics.Enabled = v != "none"
	}
	if v, ok := lookup(EnvPrefix + "TRACING_EXPORTER"); ok && v != "" {
		c.Observe.Tracing.Exporter = v
		c.Observe.Tracing.Enabled = v != "none"
	}
	return nil
}
