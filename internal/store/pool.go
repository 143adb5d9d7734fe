// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tenantry Contributors

// Package store opens the PostgreSQL connection pool and owns the schema
// migrations.
package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// Pool defaults.
const (
	DefaultMaxConns        = 10
	DefaultConnectAttempts = 5
	defaultConnectBackoff  = 500 * time.Millisecond
	maxConnectBackoff      = 10 * time.Second
)

// PoolConfig configures OpenPool.
type PoolConfig struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	ConnectAttempts uint64
	// ConnectBackoff is the first retry delay. It doubles up to 10s.
	ConnectBackoff time.Duration
}

func (c PoolConfig) withDefaults() PoolConfig {
	if c.MaxConns <= 0 {
		c.MaxConns = DefaultMaxConns
	}
	if c.ConnectAttempts == 0 {
		c.ConnectAttempts = DefaultConnectAttempts
	}
	if c.ConnectBackoff <= 0 {
		c.ConnectBackoff = defaultConnectBackoff
	}
	return c
}

// pinger is satisfied by *pgxpool.Pool.
type pinger interface {
	Ping(ctx context.Context) error
}

// OpenPool creates a pgx pool and waits until the database answers a ping,
// retrying with exponential backoff.
func OpenPool(ctx context.Context, cfg PoolConfig) (*pgxpool.Pool, error) {
	if cfg.URL == "" {
		return nil, oops.Code("DB_CONFIG_INVALID").Errorf("database url is required")
	}
	cfg = cfg.withDefaults()
	if cfg.MinConns > cfg.MaxConns {
		return nil, oops.Code("DB_CONFIG_INVALID").
			With("min_conns", cfg.MinConns).
			With("max_conns", cfg.MaxConns).
			Errorf("min_conns exceeds max_conns")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		// The parse error can echo the password back.
		return nil, oops.Code("DB_CONFIG_INVALID").Errorf("invalid database url")
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").Wrap(err)
	}

	if err := waitForDatabase(ctx, pool, cfg); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func waitForDatabase(ctx context.Context, db pinger, cfg PoolConfig) error {
	backoff := retry.NewExponential(cfg.ConnectBackoff)
	backoff = retry.WithCappedDuration(maxConnectBackoff, backoff)
	backoff = retry.WithMaxRetries(cfg.ConnectAttempts-1, backoff)

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := db.Ping(ctx); err != nil {
			slog.WarnContext(ctx, "database not ready", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").
			With("attempts", attempt).
			Wrap(err)
	}
	return nil
}
