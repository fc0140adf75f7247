// Package config loads the quote server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultServerPort        = 8080
	DefaultLogLevel          = "info"
	DefaultShutdownTimeout   = 30 * time.Second
	DefaultMetricsEnabled    = true
	DefaultEventsEnabled     = true
	DefaultPopularTagsLimit  = 10
	DefaultAuthMode          = "none"
	DefaultCORSAllowedOrigin = "*"
)

// Environment variable names.
const (
	EnvServerPort       = "APP_SERVER_PORT"
	EnvLogLevel         = "APP_LOG_LEVEL"
	EnvShutdownTimeout  = "APP_SHUTDOWN_TIMEOUT"
	EnvMetricsEnabled   = "APP_METRICS_ENABLED"
	EnvEventsEnabled    = "APP_EVENTS_ENABLED"
	EnvPopularTagsLimit = "APP_POPULAR_TAGS_LIMIT"
	EnvCORSOrigins      = "APP_CORS_ALLOWED_ORIGINS"
	EnvAuthMode         = "APP_AUTH_MODE"
	EnvBasicAuthUsers   = "APP_BASIC_AUTH_USERS"
	EnvAPIKeys          = "APP_API_KEYS" //nolint:gosec // env var name, not a credential
)

// Config holds the application configuration.
type Config struct {
	ServerPort      int
	LogLevel        string
	ShutdownTimeout time.Duration
	MetricsEnabled  bool

	// EventsEnabled mounts the /ws/events change feed.
	EventsEnabled bool

	// PopularTagsLimit is used by /tags/popular when no limit is given.
	PopularTagsLimit int

	CORSAllowedOrigins []string

	// Authentication mode for mutating requests: none, basic, apikey, multi.
	AuthMode string

	// Basic auth settings (format: "user1:bcrypt_hash,user2:bcrypt_hash").
	BasicAuthUsers string

	// API key settings (format: "key1:name1,key2:name2").
	APIKeys string
}

// Validation errors.
var (
	ErrInvalidServerPort       = errors.New("server port must be between 1 and 65535")
	ErrInvalidLogLevel         = errors.New("log level must be one of: debug, info, warn, error")
	ErrInvalidShutdownTimeout  = errors.New("shutdown timeout must be positive")
	ErrInvalidPopularTagsLimit = errors.New("popular tags limit must be positive")
	ErrInvalidAuthMode         = errors.New("auth mode must be one of: none, basic, apikey, multi")
	ErrInvalidBasicAuthConfig  = errors.New(
		"basic auth users must be set when auth mode is basic",
	)
	ErrInvalidAPIKeyConfig = errors.New(
		"API keys must be set when auth mode is apikey",
	)
	ErrInvalidMultiAuthConfig = errors.New(
		"at least one of basic auth users or API keys must be set when auth mode is multi",
	)
)

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validAuthModes = map[string]bool{
	"none":   true,
	"basic":  true,
	"apikey": true,
	"multi":  true,
}

// Load reads configuration from environment variables with defaults.
// Environment variables have priority over default values.
func Load() (*Config, error) {
	cfg := Default()

	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("loading config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config populated with default values.
func Default() *Config {
	return &Config{
		ServerPort:         DefaultServerPort,
		LogLevel:           DefaultLogLevel,
		ShutdownTimeout:    DefaultShutdownTimeout,
		MetricsEnabled:     DefaultMetricsEnabled,
		EventsEnabled:      DefaultEventsEnabled,
		PopularTagsLimit:   DefaultPopularTagsLimit,
		CORSAllowedOrigins: []string{DefaultCORSAllowedOrigin},
		AuthMode:           DefaultAuthMode,
	}
}

func (c *Config) loadFromEnv() error {
	if err := c.loadServerEnv(); err != nil {
		return err
	}
	if err := c.loadFeatureEnv(); err != nil {
		return err
	}
	c.loadAuthEnv()
	return nil
}

// loadServerEnv loads server-related environment variables.
func (c *Config) loadServerEnv() error {
	if val := os.Getenv(EnvServerPort); val != "" {
		port, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvServerPort, err)
		}
		c.ServerPort = port
	}

	if val := os.Getenv(EnvLogLevel); val != "" {
		c.LogLevel = strings.ToLower(val)
	}

	if val := os.Getenv(EnvShutdownTimeout); val != "" {
		timeout, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvShutdownTimeout, err)
		}
		c.ShutdownTimeout = timeout
	}

	if val := os.Getenv(EnvCORSOrigins); val != "" {
		c.CORSAllowedOrigins = splitCSV(val)
	}

	return nil
}

// loadFeatureEnv loads toggles for optional surfaces.
func (c *Config) loadFeatureEnv() error {
	var err error

	if c.MetricsEnabled, err = boolEnv(EnvMetricsEnabled, c.MetricsEnabled); err != nil {
		return err
	}
	if c.EventsEnabled, err = boolEnv(EnvEventsEnabled, c.EventsEnabled); err != nil {
		return err
	}

	if val := os.Getenv(EnvPopularTagsLimit); val != "" {
		limit, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvPopularTagsLimit, err)
		}
		c.PopularTagsLimit = limit
	}

	return nil
}

// loadAuthEnv loads authentication environment variables.
func (c *Config) loadAuthEnv() {
	if val := os.Getenv(EnvAuthMode); val != "" {
		c.AuthMode = strings.ToLower(val)
	}
	if val := os.Getenv(EnvBasicAuthUsers); val != "" {
		c.BasicAuthUsers = val
	}
	if val := os.Getenv(EnvAPIKeys); val != "" {
		c.APIKeys = val
	}
}

func boolEnv(name string, fallback bool) (bool, error) {
	val := os.Getenv(name)
	if val == "" {
		return fallback, nil
	}
	enabled, err := strconv.ParseBool(val)
	if err != nil {
		return fallback, fmt.Errorf("parsing %s: %w", name, err)
	}
	return enabled, nil
}

func splitCSV(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks if the configuration values are valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	return c.validateAuth()
}

func (c *Config) validateServer() error {
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return ErrInvalidServerPort
	}
	if !validLogLevels[c.LogLevel] {
		return ErrInvalidLogLevel
	}
	if c.ShutdownTimeout <= 0 {
		return ErrInvalidShutdownTimeout
	}
	if c.PopularTagsLimit <= 0 {
		return ErrInvalidPopularTagsLimit
	}
	return nil
}

func (c *Config) validateAuth() error {
	mode := c.AuthMode
	if mode == "" {
		mode = DefaultAuthMode
	}
	if !validAuthModes[mode] {
		return ErrInvalidAuthMode
	}

	switch mode {
	case "basic":
		if c.BasicAuthUsers == "" {
			return ErrInvalidBasicAuthConfig
		}
	case "apikey":
		if c.APIKeys == "" {
			return ErrInvalidAPIKeyConfig
		}
	case "multi":
		if c.BasicAuthUsers == "" && c.APIKeys == "" {
			return ErrInvalidMultiAuthConfig
		}
	}

	return nil
}

// Address returns the server address in host:port format.
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}
