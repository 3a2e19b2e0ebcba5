// Package config loads daemon configuration from defaults, an optional
// YAML file, and REMINDD_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the full daemon configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Log       LogConfig       `koanf:"log"`
	Scheduler SchedulerConfig `koanf:"scheduler"`
	Notify    NotifyConfig    `koanf:"notify"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              string        `koanf:"port"`
	MetricsPort       string        `koanf:"metrics_port"`
	ReadTimeout       time.Duration `koanf:"read_timeout"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	WriteTimeout      time.Duration `koanf:"write_timeout"`
	IdleTimeout       time.Duration `koanf:"idle_timeout"`
	RateLimit         float64       `koanf:"rate_limit"`
	RateBurst         int           `koanf:"rate_burst"`
}

// DatabaseConfig contains PostgreSQL configuration.
type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnectTimeout  time.Duration `koanf:"connect_timeout"`
	ConnectAttempts int           `koanf:"connect_attempts"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // json or text
}

// SchedulerConfig contains scheduling configuration.
type SchedulerConfig struct {
	// ExactWake is the initial exact-wake grant for the timer service.
	ExactWake       bool          `koanf:"exact_wake"`
	SummaryDebounce time.Duration `koanf:"summary_debounce"`
}

// NotifyConfig configures the webhook rendering surface.
type NotifyConfig struct {
	WebhookEnabled bool          `koanf:"webhook_enabled"`
	WebhookURL     string        `koanf:"webhook_url"`
	Timeout        time.Duration `koanf:"timeout"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:              "127.0.0.1",
			Port:              "8480",
			MetricsPort:       "8481",
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
			RateLimit:         50,
			RateBurst:         100,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 30 * time.Minute,
			ConnectTimeout:  30 * time.Second,
			ConnectAttempts: 5,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Scheduler: SchedulerConfig{
			ExactWake:       true,
			SummaryDebounce: 350 * time.Millisecond,
		},
		Notify: NotifyConfig{
			Timeout: 10 * time.Second,
		},
	}
}

// Load reads configuration from an optional YAML file and the environment.
// Environment variables use the REMINDD_ prefix with __ as the section
// separator, e.g. REMINDD_DATABASE__URL.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("REMINDD_", ".", func(key string) string {
		key = strings.ToLower(strings.TrimPrefix(key, "REMINDD_"))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for fatal mistakes.
func (c *Config) Validate() error {
	var errs []error

	if c.Database.URL == "" {
		errs = append(errs, errors.New("database.url is required"))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not one of json, text", c.Log.Format))
	}
	if c.Notify.WebhookEnabled && c.Notify.WebhookURL == "" {
		errs = append(errs, errors.New("notify.webhook_url is required when notify.webhook_enabled"))
	}

	return errors.Join(errs...)
}
