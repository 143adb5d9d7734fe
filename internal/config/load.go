// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tenantry Contributors

package config

import (
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment override, e.g. TENANTRY_HTTP_ADDR.
const EnvPrefix = "TENANTRY_"

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"database-url":    "database.url",
	"http-addr":       "http.addr",
	"metrics-addr":    "metrics.addr",
	"log-format":      "log.format",
	"log-level":       "log.level",
	"session-ttl":     "session.ttl",
	"sweep-interval":  "session.sweep_interval",
	"tls-cert":        "http.tls.cert_file",
	"tls-key":         "http.tls.key_file",
	"tls-self-signed": "http.tls.self_signed",
}

// RegisterFlags adds the configuration flags to fs. Their defaults are
// informational: only flags set on the command line override other sources.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("database-url", "", "PostgreSQL connection URL")
	fs.String("http-addr", d.HTTP.Addr, "HTTP API listen address")
	fs.String("metrics-addr", d.Metrics.Addr, "metrics/health HTTP address (empty = disabled)")
	fs.String("log-format", d.Log.Format, "log format (json or text)")
	fs.String("log-level", d.Log.Level, "log level (debug, info, warn, error)")
	fs.Duration("session-ttl", d.Session.TTL, "lifetime of issued sessions")
	fs.Duration("sweep-interval", d.Session.SweepInterval, "expired session cleanup period (0 disables)")
	fs.String("tls-cert", "", "TLS certificate file for the HTTP API")
	fs.String("tls-key", "", "TLS private key file for the HTTP API")
	fs.Bool("tls-self-signed", false, "serve the HTTP API with a generated development certificate")
}

// legacyEnv holds unprefixed variables kept for deployment convenience.
type legacyEnv struct {
	DatabaseURL string `env:"DATABASE_URL"`
}

// Load builds the configuration. Sources are applied in order, each
// overriding the previous: defaults, the YAML file at path (if non-empty),
// environment variables, then flags explicitly set in fs (if non-nil).
// The result is validated.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	if fs != nil {
		if err := applyFlags(fs, &cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return oops.Code("CONFIG_READ_FAILED").With("path", path).Wrap(err)
	}
	if err := ValidateSchema(data); err != nil {
		return oops.Code("CONFIG_SCHEMA_INVALID").With("path", path).Wrap(err)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return oops.Code("CONFIG_PARSE_FAILED").With("path", path).Wrap(err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return oops.Code("CONFIG_PARSE_FAILED").With("path", path).Wrap(err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	var legacy legacyEnv
	if err := env.Parse(&legacy); err != nil {
		return oops.Code("CONFIG_ENV_INVALID").Wrap(err)
	}
	if legacy.DatabaseURL != "" {
		cfg.Database.URL = legacy.DatabaseURL
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return oops.Code("CONFIG_ENV_INVALID").Wrap(err)
	}
	return nil
}

func applyFlags(fs *pflag.FlagSet, cfg *Config) error {
	k := koanf.New(".")
	provider := posflag.ProviderWithFlag(fs, ".", nil, func(f *pflag.Flag) (string, any) {
		key, ok := flagKeys[f.Name]
		if !ok || !f.Changed {
			return "", nil
		}
		return key, posflag.FlagVal(fs, f)
	})
	if err := k.Load(provider, nil); err != nil {
		return oops.Code("CONFIG_FLAGS_INVALID").Wrap(err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return oops.Code("CONFIG_FLAGS_INVALID").Wrap(err)
	}
	return nil
}
