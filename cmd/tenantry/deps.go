// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tenantry Contributors

package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tenantry/tenantry/internal/auth"
	"github.com/tenantry/tenantry/internal/auth/postgres"
	"github.com/tenantry/tenantry/internal/config"
	"github.com/tenantry/tenantry/internal/observability"
	"github.com/tenantry/tenantry/internal/store"
)

// Deps contains injectable dependencies for the commands.
// All fields with nil values will use their default implementations.
type Deps struct {
	// PoolOpener connects to the database.
	// Default: store.OpenPool
	PoolOpener func(ctx context.Context, cfg store.PoolConfig) (Pool, error)

	// MigratorFactory creates a schema migrator.
	// Default: store.NewMigrator
	MigratorFactory func(databaseURL string) (MigrationRunner, error)

	// ObservabilityServerFactory creates an observability server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer

	// HTTPClient queries a running server for the status command.
	// Default: a client with a 2s timeout
	HTTPClient *http.Client

	// OnReady is called with the API address once serve is accepting
	// requests.
	OnReady func(apiAddr string)
}

func (d *Deps) withDefaults() *Deps {
	out := Deps{}
	if d != nil {
		out = *d
	}
	if out.PoolOpener == nil {
		out.PoolOpener = func(ctx context.Context, cfg store.PoolConfig) (Pool, error) {
			pool, err := store.OpenPool(ctx, cfg)
			if err != nil {
				return nil, err
			}
			return pool, nil
		}
	}
	if out.MigratorFactory == nil {
		out.MigratorFactory = func(databaseURL string) (MigrationRunner, error) {
			m, err := store.NewMigrator(databaseURL)
			if err != nil {
				return nil, err
			}
			return m, nil
		}
	}
	if out.ObservabilityServerFactory == nil {
		out.ObservabilityServerFactory = func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer {
			return observability.NewServer(addr, readinessChecker)
		}
	}
	if out.HTTPClient == nil {
		out.HTTPClient = &http.Client{Timeout: 2 * time.Second}
	}
	return &out
}

// Pool is the subset of *pgxpool.Pool the commands use.
type Pool interface {
	postgres.DB
	Ping(ctx context.Context) error
	Close()
}

// MigrationRunner wraps the methods used from store.Migrator.
type MigrationRunner interface {
	Up() error
	Down() error
	Steps(n int) error
	Force(version int) error
	Status() (*store.Status, error)
	Close() error
}

// ObservabilityServer wraps the methods used from observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
	Registry() prometheus.Registerer
	Metrics() *observability.Metrics
}

func poolConfig(cfg *config.Config) store.PoolConfig {
	return store.PoolConfig{
		URL:             cfg.Database.URL,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		ConnectAttempts: cfg.Database.ConnectAttempts,
	}
}

// openPool validates the database settings and connects.
func openPool(ctx context.Context, deps *Deps, cfg *config.Config) (Pool, error) {
	if err := cfg.RequireDatabase(); err != nil {
		//nolint:wrapcheck // already coded
		return nil, err
	}
	//nolint:wrapcheck // store errors already carry codes
	return deps.PoolOpener(ctx, poolConfig(cfg))
}

// authStore builds the PostgreSQL-backed auth store over pool.
func authStore(pool postgres.DB, cfg *config.Config) auth.Store {
	timeout := postgres.WithOperationTimeout(cfg.Database.OperationTimeout)
	return auth.Store{
		Tx:         postgres.NewTransactor(pool, cfg.Database.OperationTimeout),
		Tenants:    postgres.NewTenantRepository(pool, timeout),
		Principals: postgres.NewPrincipalRepository(pool, timeout),
		Sessions:   postgres.NewSessionRepository(pool, timeout),
	}
}

// newAuthService wires the auth service with the configured hashing cost.
func newAuthService(pool postgres.DB, cfg *config.Config, logger *slog.Logger) (*auth.Service, error) {
	hasher, err := auth.NewArgon2idHasherWithParams(cfg.Argon2Params())
	if err != nil {
		//nolint:wrapcheck // already coded
		return nil, err
	}
	//nolint:wrapcheck // already coded
	return auth.NewAuthServiceWithLogger(authStore(pool, cfg), hasher, cfg.AuthOptions(), logger)
}
