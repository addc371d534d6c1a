// Package config loads serpkit settings from a config file, SERPKIT_*
// environment variables and command-line flags, in increasing precedence.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/FranksOps/serpkit/internal/fingerprint"
	"github.com/FranksOps/serpkit/internal/storage"
	"github.com/FranksOps/serpkit/internal/storage/csvbackend"
	"github.com/FranksOps/serpkit/internal/storage/jsonbackend"
	"github.com/FranksOps/serpkit/internal/storage/postgres"
	"github.com/FranksOps/serpkit/internal/storage/sqlite"
	"github.com/FranksOps/serpkit/internal/transport"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "SERPKIT"

type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Search    SearchConfig    `mapstructure:"search"`
	Transport TransportConfig `mapstructure:"transport"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Batch     BatchConfig     `mapstructure:"batch"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type SearchConfig struct {
	Host             string `mapstructure:"host"`
	AcceptLanguage   string `mapstructure:"accept_language"`
	HonorURLLanguage bool   `mapstructure:"honor_url_language"`
	UserAgent        string `mapstructure:"user_agent"`
}

type TransportConfig struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxRedirects int           `mapstructure:"max_redirects"`
	Fingerprint  string        `mapstructure:"fingerprint"`
	Proxy        string        `mapstructure:"proxy"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
}

type StorageConfig struct {
	// Backend is one of none, sqlite, postgres, json, csv.
	Backend string `mapstructure:"backend"`
	DSN     string `mapstructure:"dsn"`
}

type MetricsConfig struct {
	// Addr enables the /metrics endpoint when non-empty, e.g. ":9090".
	Addr string `mapstructure:"addr"`
}

type BatchConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"log-level":          "log.level",
	"log-format":         "log.format",
	"host":               "search.host",
	"accept-language":    "search.accept_language",
	"honor-url-language": "search.honor_url_language",
	"user-agent":         "search.user_agent",
	"timeout":            "transport.timeout",
	"max-redirects":      "transport.max_redirects",
	"fingerprint":        "transport.fingerprint",
	"proxy":              "transport.proxy",
	"max-body-bytes":     "transport.max_body_bytes",
	"storage":            "storage.backend",
	"dsn":                "storage.dsn",
	"metrics-addr":       "metrics.addr",
	"concurrency":        "batch.concurrency",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("search.host", "www.google.com")
	v.SetDefault("search.accept_language", "en")
	v.SetDefault("search.honor_url_language", true)
	v.SetDefault("search.user_agent", "")
	v.SetDefault("transport.timeout", 30*time.Second)
	v.SetDefault("transport.max_redirects", 10)
	v.SetDefault("transport.fingerprint", string(fingerprint.ProfileChrome))
	v.SetDefault("transport.proxy", "")
	v.SetDefault("transport.max_body_bytes", transport.DefaultMaxBodyBytes)
	v.SetDefault("storage.backend", "none")
	v.SetDefault("storage.dsn", "")
	v.SetDefault("metrics.addr", "")
	v.SetDefault("batch.concurrency", 4)
}

// Load reads configuration. path may be empty, in which case only defaults,
// environment and flags apply. flags may be nil. Only flags the user set
// override lower layers.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that cannot be caught by type decoding.
func (c *Config) Validate() error {
	var errs []error

	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("config: unknown log format %q", c.Log.Format))
	}
	if _, err := fingerprint.ParseProfile(c.Transport.Fingerprint); err != nil {
		errs = append(errs, fmt.Errorf("config: %w", err))
	}
	switch c.Storage.Backend {
	case "", "none":
	case "sqlite", "postgres", "json", "csv":
		if c.Storage.DSN == "" {
			errs = append(errs, fmt.Errorf("config: storage backend %s needs a dsn", c.Storage.Backend))
		}
	default:
		errs = append(errs, fmt.Errorf("config: unknown storage backend %q", c.Storage.Backend))
	}
	if c.Batch.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("config: batch concurrency must be at least 1, got %d", c.Batch.Concurrency))
	}

	return errors.Join(errs...)
}

// NewLogger builds the slog logger described by c, writing to w.
func (c LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("config: unknown log level %q", s)
	}
	return level, nil
}

// NewTransport builds the HTTP transport described by c.
func (c TransportConfig) NewTransport(logger *slog.Logger) (*transport.HTTP, error) {
	profile, err := fingerprint.ParseProfile(c.Fingerprint)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return transport.New(transport.Config{
		Timeout:      c.Timeout,
		MaxRedirects: c.MaxRedirects,
		Fingerprint:  profile,
		ProxyURL:     c.Proxy,
		MaxBodyBytes: c.MaxBodyBytes,
		Logger:       logger,
	})
}

// OpenBackend opens the configured storage backend. It returns nil, nil when
// storage is disabled.
func (c StorageConfig) OpenBackend(ctx context.Context) (storage.Backend, error) {
	switch c.Backend {
	case "", "none":
		return nil, nil
	case "sqlite":
		return sqlite.New(c.DSN)
	case "postgres":
		return postgres.New(ctx, c.DSN)
	case "json":
		return jsonbackend.New(c.DSN)
	case "csv":
		return csvbackend.New(c.DSN)
	default:
		return nil, fmt.Errorf("config: unknown storage backend %q", c.Backend)
	}
}
