// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

// Package config loads runtime configuration for the TaskHive identity
// service: defaults, then an optional YAML file, then command-line
// flags. Secrets (database URL, token signing key) come from the
// environment and are never written to config files.
package config

import (
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Environment variable names for secrets.
const (
	EnvDatabaseURL = "DATABASE_URL"
	EnvSigningKey  = "TASKHIVE_SIGNING_KEY"
)

// Config holds runtime settings for the identity service.
type Config struct {
	// HTTPAddr is the bind address for the public JSON API.
	HTTPAddr string `koanf:"http_addr"`

	// MetricsAddr is the bind address for the metrics/health server.
	// Empty disables it.
	MetricsAddr string `koanf:"metrics_addr"`

	// FrontendURL is the origin reset links point at.
	FrontendURL string `koanf:"frontend_url"`

	// LogFormat selects "json" or "text" log output.
	LogFormat string `koanf:"log_format"`

	// HashCost is the bcrypt work factor for new password digests.
	HashCost int `koanf:"hash_cost"`

	// DatabaseURL is the PostgreSQL DSN. Environment only.
	DatabaseURL string `koanf:"-"`

	// SigningKey is the HMAC key for session tokens. Environment only;
	// the token service refuses to start without it.
	SigningKey string `koanf:"-"`
}

// Default returns the development defaults. Secrets are intentionally
// absent.
func Default() *Config {
	return &Config{
		HTTPAddr:    ":8080",
		MetricsAddr: "127.0.0.1:9100",
		FrontendURL: "http://localhost:5173",
		LogFormat:   "json",
		HashCost:    10,
	}
}

// Load builds a Config by layering defaults, an optional YAML file, and
// flag values, then reading secrets from the environment.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	cfg := Default()
	k := koanf.New(".")

	// Seed defaults into the koanf tree. The posflag provider falls back
	// to a flag's default value for keys absent from k, so without this
	// layer an unset flag registered with an empty default would shadow
	// the real default.
	for key, val := range map[string]any{
		"http_addr":    cfg.HTTPAddr,
		"metrics_addr": cfg.MetricsAddr,
		"frontend_url": cfg.FrontendURL,
		"log_format":   cfg.LogFormat,
		"hash_cost":    cfg.HashCost,
	} {
		if err := k.Set(key, val); err != nil {
			return nil, oops.Code("CONFIG_INVALID").
				With("operation", "load defaults").
				Wrap(err)
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_INVALID").
				With("path", path).
				Wrap(err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_INVALID").
				With("operation", "load flags").
				Wrap(err)
		}
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").
			With("operation", "unmarshal config").
			Wrap(err)
	}

	cfg.DatabaseURL = os.Getenv(EnvDatabaseURL)
	cfg.SigningKey = os.Getenv(EnvSigningKey)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the non-secret settings. Secret presence is checked
// where the secret is needed, so commands that do not touch the
// database or tokens still run.
func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return oops.Code("CONFIG_INVALID").Errorf("http_addr is required")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").
			With("log_format", c.LogFormat).
			Errorf("log_format must be 'json' or 'text'")
	}
	if c.HashCost < 4 || c.HashCost > 31 {
		return oops.Code("CONFIG_INVALID").
			With("hash_cost", c.HashCost).
			Errorf("hash_cost must be between 4 and 31")
	}
	return nil
}
