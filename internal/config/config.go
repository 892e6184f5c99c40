// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Compass Contributors

// Package config loads Compass configuration once at process start from
// an optional YAML file, COMPASS_* environment variables, and command
// line flags, in that order of increasing precedence.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/compasshq/compass/internal/xdg"
)

// Defaults.
const (
	DefaultListenAddr  = ":8000"
	DefaultMetricsAddr = "127.0.0.1:9100"
	DefaultLogFormat   = "json"
	DefaultSessionTTL  = 30 * time.Minute
	DefaultMaxSessions = 5
)

// envPrefix namespaces Compass environment variables. A double
// underscore separates key segments: COMPASS_SERVER__LISTEN maps to
// server.listen.
const envPrefix = "COMPASS_"

// Config is the process configuration. It is loaded once; there is no
// hot reload.
type Config struct {
	DevMode     bool
	LogFormat   string
	ListenAddr  string
	MetricsAddr string
	DatabaseURL string
	SessionTTL  time.Duration
	MaxSessions int
}

// Load reads configuration from path (skipped when empty), the
// environment, and flags (skipped when nil).
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_FILE_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envToKey), nil); err != nil {
		return nil, oops.Code("CONFIG_ENV_FAILED").Wrap(err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	cfg := &Config{
		DevMode:     k.Bool("dev_mode"),
		LogFormat:   stringOr(k, "log_format", DefaultLogFormat),
		ListenAddr:  stringOr(k, "server.listen", DefaultListenAddr),
		MetricsAddr: stringOr(k, "server.metrics", DefaultMetricsAddr),
		DatabaseURL: k.String("database.url"),
		SessionTTL:  durationOr(k, "session.ttl", DefaultSessionTTL),
		MaxSessions: intOr(k, "session.max_sessions", DefaultMaxSessions),
	}

	// Bare DATABASE_URL is honored as a fallback for tooling that sets
	// only the conventional variable.
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field-level constraints. The database URL is checked
// by the commands that need it, not here, so read-only commands work
// without one.
func (c *Config) Validate() error {
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").
			With("log_format", c.LogFormat).
			Errorf("log_format must be \"json\" or \"text\"")
	}
	if c.SessionTTL <= 0 {
		return oops.Code("CONFIG_INVALID").
			With("session_ttl", c.SessionTTL.String()).
			Errorf("session.ttl must be positive")
	}
	if c.MaxSessions < 1 {
		return oops.Code("CONFIG_INVALID").
			With("max_sessions", c.MaxSessions).
			Errorf("session.max_sessions must be at least 1")
	}
	return nil
}

// DefaultPath returns the conventional config file location under the
// XDG config directory when the file exists, or "" when it does not.
func DefaultPath() string {
	path := filepath.Join(xdg.ConfigDir(), "compass.yaml")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// envToKey maps COMPASS_SERVER__LISTEN to server.listen.
func envToKey(name string) string {
	name = strings.TrimPrefix(name, envPrefix)
	return strings.ReplaceAll(strings.ToLower(name), "__", ".")
}

func stringOr(k *koanf.Koanf, key, fallback string) string {
	if !k.Exists(key) {
		return fallback
	}
	return k.String(key)
}

func durationOr(k *koanf.Koanf, key string, fallback time.Duration) time.Duration {
	if !k.Exists(key) {
		return fallback
	}
	return k.Duration(key)
}

func intOr(k *koanf.Koanf, key string, fallback int) int {
	if !k.Exists(key) {
		return fallback
	}
	return k.Int(key)
}
