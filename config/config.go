// Package config provides configuration loading from YAML and environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "HYPERAPI_"

// Config is the complete application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	OpenAPI    OpenAPIConfig    `yaml:"openapi"`
	Hypermedia HypermediaConfig `yaml:"hypermedia"`
	Auth       AuthConfig       `yaml:"auth"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// BaseURL is the public server URL documents link against. Empty means
	// derive it from each request.
	BaseURL      string        `yaml:"base_url"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig contains the sample store settings.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// OpenAPIConfig contains OpenAPI settings.
type OpenAPIConfig struct {
	Enabled bool `yaml:"enabled"` // /_openapi.json and /swagger/
}

// HypermediaConfig controls document writing.
type HypermediaConfig struct {
	// DefaultFormat is used when the client accepts anything: "hydra",
	// "hal" or "jsonapi".
	DefaultFormat   string `yaml:"default_format"`
	MaxEmbedDepth   int    `yaml:"max_embed_depth"`
	DefaultPageSize int    `yaml:"default_page_size"`
	MaxPageSize     int    `yaml:"max_page_size"`
}

// AuthConfig lists the users accepted by HTTP basic authentication.
type AuthConfig struct {
	Users []UserConfig `yaml:"users"`
}

// UserConfig is one basic-auth user.
type UserConfig struct {
	Name         string   `yaml:"name"`
	PasswordHash string   `yaml:"password_hash"` // bcrypt
	Roles        []string `yaml:"roles"`
}

// Load reads configuration from a YAML file.
// Environment variables in the file are expanded (${VAR}), then
// HYPERAPI_* variables override file values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse builds a configuration from YAML bytes.
func Parse(data []byte) (*Config, error) {
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return finish(&cfg)
}

// LoadFromEnv builds a configuration from defaults and HYPERAPI_* variables.
func LoadFromEnv() (*Config, error) {
	return finish(&Config{})
}

// LoadWithFallback loads path when it exists, the environment otherwise.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return LoadFromEnv()
}

func finish(cfg *Config) (*Config, error) {
	applyEnvOverrides(cfg)
	setDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func env(key string) string {
	return os.Getenv(EnvPrefix + key)
}

func applyEnvOverrides(cfg *Config) {
	// Server configuration
	if v := env("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := env("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := env("SERVER_BASE_URL"); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := env("SERVER_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if v := env("SERVER_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}

	if v := env("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}

	if v := env("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := env("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	if v := env("METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v := env("METRICS_PATH"); v != "" {
		cfg.Metrics.Path = v
	}

	if v := env("OPENAPI_ENABLED"); v != "" {
		cfg.OpenAPI.Enabled = parseBool(v)
	}

	// Hypermedia configuration
	if v := env("DEFAULT_FORMAT"); v != "" {
		cfg.Hypermedia.DefaultFormat = v
	}
	if v := env("MAX_EMBED_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Hypermedia.MaxEmbedDepth = n
		}
	}
	if v := env("DEFAULT_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Hypermedia.DefaultPageSize = n
		}
	}
	if v := env("MAX_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Hypermedia.MaxPageSize = n
		}
	}
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}
	cfg.Server.BaseURL = strings.TrimRight(cfg.Server.BaseURL, "/")

	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "hyperapi.db"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	if cfg.Hypermedia.DefaultFormat == "" {
		cfg.Hypermedia.DefaultFormat = "hydra"
	}
	if cfg.Hypermedia.MaxEmbedDepth == 0 {
		cfg.Hypermedia.MaxEmbedDepth = 5
	}
	if cfg.Hypermedia.DefaultPageSize == 0 {
		cfg.Hypermedia.DefaultPageSize = 30
	}
	if cfg.Hypermedia.MaxPageSize == 0 {
		cfg.Hypermedia.MaxPageSize = 100
	}
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, fmt.Errorf("logging.level must be one of: debug, info, warn, error, got %q", cfg.Logging.Level))
	}
	if cfg.Logging.Format != "json" && cfg.Logging.Format != "console" {
		errs = append(errs, fmt.Errorf("logging.format must be 'json' or 'console', got %q", cfg.Logging.Format))
	}

	if !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("metrics.path must start with '/', got %q", cfg.Metrics.Path))
	}

	h := cfg.Hypermedia
	switch h.DefaultFormat {
	case "hydra", "hal", "jsonapi":
	default:
		errs = append(errs, fmt.Errorf("hypermedia.default_format must be 'hydra', 'hal' or 'jsonapi', got %q", h.DefaultFormat))
	}
	if h.MaxEmbedDepth < 1 {
		errs = append(errs, fmt.Errorf("hypermedia.max_embed_depth must be positive, got %d", h.MaxEmbedDepth))
	}
	if h.DefaultPageSize < 1 || h.MaxPageSize < h.DefaultPageSize {
		errs = append(errs, fmt.Errorf("hypermedia page sizes must satisfy 1 <= default_page_size (%d) <= max_page_size (%d)",
			h.DefaultPageSize, h.MaxPageSize))
	}

	seen := make(map[string]bool)
	for i, u := range cfg.Auth.Users {
		if u.Name == "" {
			errs = append(errs, fmt.Errorf("auth.users[%d].name is required", i))
			continue
		}
		if seen[u.Name] {
			errs = append(errs, fmt.Errorf("auth.users[%d]: duplicate user %q", i, u.Name))
		}
		seen[u.Name] = true
		if _, err := bcrypt.Cost([]byte(u.PasswordHash)); err != nil {
			errs = append(errs, fmt.Errorf("auth.users[%d].password_hash: %w", i, err))
		}
	}

	return errors.Join(errs...)
}
