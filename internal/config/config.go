// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tenantry Contributors

// Package config loads tenantry's configuration from a YAML file, the
// environment and command-line flags.
package config

import (
	"net/url"
	"time"

	"github.com/samber/oops"

	"github.com/tenantry/tenantry/internal/auth"
)

// Config is the complete process configuration.
type Config struct {
	Database DatabaseConfig `koanf:"database" yaml:"database" json:"database,omitempty" envPrefix:"DATABASE_"`
	HTTP     HTTPConfig     `koanf:"http" yaml:"http" json:"http,omitempty" envPrefix:"HTTP_"`
	Session  SessionConfig  `koanf:"session" yaml:"session" json:"session,omitempty" envPrefix:"SESSION_"`
	Hashing  HashingConfig  `koanf:"hashing" yaml:"hashing" json:"hashing,omitempty" envPrefix:"HASHING_"`
	Tenant   TenantConfig   `koanf:"tenant" yaml:"tenant" json:"tenant,omitempty" envPrefix:"TENANT_"`
	Log      LogConfig      `koanf:"log" yaml:"log" json:"log,omitempty" envPrefix:"LOG_"`
	Metrics  MetricsConfig  `koanf:"metrics" yaml:"metrics" json:"metrics,omitempty" envPrefix:"METRICS_"`
}

// DatabaseConfig configures the PostgreSQL pool.
type DatabaseConfig struct {
	URL              string        `koanf:"url" yaml:"url" json:"url,omitempty" env:"URL" jsonschema:"description=PostgreSQL connection URL"`
	MaxConns         int32         `koanf:"max_conns" yaml:"max_conns" json:"max_conns,omitempty" env:"MAX_CONNS" jsonschema:"minimum=1"`
	MinConns         int32         `koanf:"min_conns" yaml:"min_conns" json:"min_conns,omitempty" env:"MIN_CONNS" jsonschema:"minimum=0"`
	OperationTimeout time.Duration `koanf:"operation_timeout" yaml:"operation_timeout" json:"operation_timeout,omitempty" env:"OPERATION_TIMEOUT"`
	ConnectAttempts  uint64        `koanf:"connect_attempts" yaml:"connect_attempts" json:"connect_attempts,omitempty" env:"CONNECT_ATTEMPTS" jsonschema:"minimum=1"`
}

// HTTPConfig configures the API listener.
type HTTPConfig struct {
	Addr           string    `koanf:"addr" yaml:"addr" json:"addr,omitempty" env:"ADDR"`
	AllowedOrigins []string  `koanf:"allowed_origins" yaml:"allowed_origins" json:"allowed_origins,omitempty" env:"ALLOWED_ORIGINS" jsonschema:"description=Origin glob patterns allowed by CORS"`
	MaxBodyBytes   int64     `koanf:"max_body_bytes" yaml:"max_body_bytes" json:"max_body_bytes,omitempty" env:"MAX_BODY_BYTES" jsonschema:"minimum=1"`
	TLS            TLSConfig `koanf:"tls" yaml:"tls" json:"tls,omitempty" envPrefix:"TLS_"`
}

// TLSConfig enables HTTPS on the API listener. Without a key pair or
// self_signed the listener speaks plain HTTP and TLS is expected to end at a
// proxy.
type TLSConfig struct {
	CertFile   string `koanf:"cert_file" yaml:"cert_file" json:"cert_file,omitempty" env:"CERT_FILE"`
	KeyFile    string `koanf:"key_file" yaml:"key_file" json:"key_file,omitempty" env:"KEY_FILE"`
	SelfSigned bool   `koanf:"self_signed" yaml:"self_signed" json:"self_signed,omitempty" env:"SELF_SIGNED" jsonschema:"description=Generate a development certificate under the XDG data directory"`
}

// Enabled reports whether the API listener serves HTTPS.
func (t TLSConfig) Enabled() bool {
	return t.SelfSigned || t.CertFile != ""
}

// SessionConfig configures session issuance and cleanup.
type SessionConfig struct {
	TTL           time.Duration `koanf:"ttl" yaml:"ttl" json:"ttl,omitempty" env:"TTL"`
	CookieName    string        `koanf:"cookie_name" yaml:"cookie_name" json:"cookie_name,omitempty" env:"COOKIE_NAME"`
	CookieSecure  bool          `koanf:"cookie_secure" yaml:"cookie_secure" json:"cookie_secure,omitempty" env:"COOKIE_SECURE"`
	SweepInterval time.Duration `koanf:"sweep_interval" yaml:"sweep_interval" json:"sweep_interval,omitempty" env:"SWEEP_INTERVAL" jsonschema:"description=Expired session cleanup period; 0 disables"`
}

// HashingConfig holds argon2id cost parameters.
type HashingConfig struct {
	MemoryKiB   uint32 `koanf:"memory_kib" yaml:"memory_kib" json:"memory_kib,omitempty" env:"MEMORY_KIB" jsonschema:"minimum=8"`
	Iterations  uint32 `koanf:"iterations" yaml:"iterations" json:"iterations,omitempty" env:"ITERATIONS" jsonschema:"minimum=1"`
	Parallelism uint8  `koanf:"parallelism" yaml:"parallelism" json:"parallelism,omitempty" env:"PARALLELISM" jsonschema:"minimum=1"`
}

// TenantConfig configures tenant provisioning.
type TenantConfig struct {
	AvatarBaseURL string `koanf:"avatar_base_url" yaml:"avatar_base_url" json:"avatar_base_url,omitempty" env:"AVATAR_BASE_URL"`
}

// LogConfig configures process logging.
type LogConfig struct {
	Format string `koanf:"format" yaml:"format" json:"format,omitempty" env:"FORMAT" jsonschema:"enum=json,enum=text"`
	Level  string `koanf:"level" yaml:"level" json:"level,omitempty" env:"LEVEL" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
}

// MetricsConfig configures the observability listener. An empty address
// disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr" yaml:"addr" json:"addr,omitempty" env:"ADDR"`
}

// Default values.
const (
	DefaultHTTPAddr         = "127.0.0.1:8080"
	DefaultMetricsAddr      = "127.0.0.1:9100"
	DefaultCookieName       = "session_token"
	DefaultSweepInterval    = time.Hour
	DefaultOperationTimeout = 10 * time.Second
	DefaultMaxBodyBytes     = 64 << 10
	DefaultLogFormat        = "json"
	DefaultLogLevel         = "info"
)

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	hash := auth.DefaultArgon2Params
	return Config{
		Database: DatabaseConfig{
			MaxConns:         10,
			OperationTimeout: DefaultOperationTimeout,
			ConnectAttempts:  5,
		},
		HTTP: HTTPConfig{
			Addr:         DefaultHTTPAddr,
			MaxBodyBytes: DefaultMaxBodyBytes,
		},
		Session: SessionConfig{
			TTL:           auth.DefaultSessionTTL,
			CookieName:    DefaultCookieName,
			CookieSecure:  true,
			SweepInterval: DefaultSweepInterval,
		},
		Hashing: HashingConfig{
			MemoryKiB:   hash.MemoryKiB,
			Iterations:  hash.Iterations,
			Parallelism: hash.Parallelism,
		},
		Tenant:  TenantConfig{AvatarBaseURL: auth.DefaultAvatarBaseURL},
		Log:     LogConfig{Format: DefaultLogFormat, Level: DefaultLogLevel},
		Metrics: MetricsConfig{Addr: DefaultMetricsAddr},
	}
}

// Validate checks semantic rules the schema cannot express.
func (c *Config) Validate() error {
	invalid := func(key string, format string, args ...any) error {
		return oops.Code("CONFIG_INVALID").With("key", key).Errorf(format, args...)
	}

	if c.Database.MaxConns < 1 {
		return invalid("database.max_conns", "must be at least 1")
	}
	if c.Database.MinConns < 0 || c.Database.MinConns > c.Database.MaxConns {
		return invalid("database.min_conns", "must be between 0 and max_conns")
	}
	if c.Database.OperationTimeout <= 0 {
		return invalid("database.operation_timeout", "must be positive")
	}
	if c.Database.ConnectAttempts < 1 {
		return invalid("database.connect_attempts", "must be at least 1")
	}
	if c.HTTP.Addr == "" {
		return invalid("http.addr", "is required")
	}
	if c.HTTP.MaxBodyBytes < 1 {
		return invalid("http.max_body_bytes", "must be positive")
	}
	if (c.HTTP.TLS.CertFile == "") != (c.HTTP.TLS.KeyFile == "") {
		return invalid("http.tls", "cert_file and key_file must be set together")
	}
	if c.HTTP.TLS.SelfSigned && c.HTTP.TLS.CertFile != "" {
		return invalid("http.tls", "self_signed cannot be combined with cert_file")
	}
	if c.Session.TTL <= 0 {
		return invalid("session.ttl", "must be positive")
	}
	if c.Session.CookieName == "" {
		return invalid("session.cookie_name", "is required")
	}
	if c.Session.SweepInterval < 0 {
		return invalid("session.sweep_interval", "must not be negative")
	}
	if err := c.Argon2Params().Validate(); err != nil {
		return invalid("hashing", "%v", err)
	}
	if u, err := url.Parse(c.Tenant.AvatarBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return invalid("tenant.avatar_base_url", "must be an absolute URL")
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return invalid("log.format", "must be 'json' or 'text', got %q", c.Log.Format)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalid("log.level", "unknown level %q", c.Log.Level)
	}
	return nil
}

// RequireDatabase reports an error when no database URL is configured.
func (c *Config) RequireDatabase() error {
	if c.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").
			With("key", "database.url").
			Errorf("database url is required (set DATABASE_URL or database.url)")
	}
	return nil
}

// Argon2Params returns the hashing parameters with default salt and key sizes.
func (c *Config) Argon2Params() auth.Argon2Params {
	p := auth.DefaultArgon2Params
	p.MemoryKiB = c.Hashing.MemoryKiB
	p.Iterations = c.Hashing.Iterations
	p.Parallelism = c.Hashing.Parallelism
	return p
}

// AuthOptions maps the configuration onto auth.Options.
func (c *Config) AuthOptions() auth.Options {
	return auth.Options{
		SessionTTL:    c.Session.TTL,
		AvatarBaseURL: c.Tenant.AvatarBaseURL,
	}
}

// Redacted returns a copy safe to print: the database password is masked.
func (c Config) Redacted() Config {
	if c.Database.URL == "" {
		return c
	}
	u, err := url.Parse(c.Database.URL)
	if err != nil {
		c.Database.URL = "<redacted>"
		return c
	}
	c.Database.URL = u.Redacted()
	return c
}
