// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tenantry Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/tenantry/tenantry/internal/auth"
)

// DB is the subset of *pgxpool.Pool the repositories need.
type DB interface {
	querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

// querier abstracts query execution for both the pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txKey struct{}

// DefaultOperationTimeout bounds a single repository call or unit of work
// when no timeout is configured.
const DefaultOperationTimeout = 10 * time.Second

// Option configures a repository.
type Option func(*repo)

// WithOperationTimeout bounds every repository call by d. Non-positive
// values keep DefaultOperationTimeout.
func WithOperationTimeout(d time.Duration) Option {
	return func(r *repo) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// repo holds what the repositories share.
type repo struct {
	db      DB
	timeout time.Duration
}

func newRepo(db DB, opts []Option) repo {
	r := repo{db: db, timeout: DefaultOperationTimeout}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// bound derives the context for one repository call. Inside a transaction
// the earlier of the two deadlines applies.
func (r repo) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// conn returns the transaction carried by ctx, or db when there is none.
func conn(ctx context.Context, db DB) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return db
}

// Constraint names from the schema migrations.
const (
	constraintTenantHandle   = "tenants_handle_key"
	constraintPrincipalEmail = "principals_email_key"
)

// classify maps unique violations to auth sentinels. Other errors are
// returned unchanged and treated as transient persistence failures.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return err
	}
	var sentinel error
	switch pgErr.ConstraintName {
	case constraintTenantHandle:
		sentinel = auth.ErrHandleTaken
	case constraintPrincipalEmail:
		sentinel = auth.ErrEmailTaken
	default:
		sentinel = auth.ErrConflict
	}
	return oops.With("constraint", pgErr.ConstraintName).Wrap(sentinel)
}

func parseULID(s, field string) (ulid.ULID, error) {
	id, err := ulid.Parse(s)
	if err != nil {
		return ulid.ULID{}, oops.With("operation", "parse "+field).With(field, s).Wrap(err)
	}
	return id, nil
}
