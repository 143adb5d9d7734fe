// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tenantry Contributors

//go:build integration

package store_test

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/oklog/ulid/v2"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func pgConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

// insertAccount writes a tenant and its owner in one transaction.
func insertAccount(ctx context.Context, handle, email string) error {
	tenantID, ownerID := ulid.Make().String(), ulid.Make().String()
	return pgx.BeginFunc(ctx, suitePool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO tenants (id, owner_id, handle, name, avatar_url) VALUES ($1, $2, $3, 'Acme', 'a')`,
			tenantID, ownerID, handle); err != nil {
			return err
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO principals (id, tenant_id, email, password_hash, display_name, role)
			 VALUES ($1, $2, $3, 'h', 'Ada', 'tenant_admin')`,
			ownerID, tenantID, email)
		return err
	})
}

var _ = Describe("Schema", func() {
	ctx := context.Background()

	Describe("tenant ownership", func() {
		It("accepts a tenant inserted before its owner in one transaction", func() {
			Expect(insertAccount(ctx, "deferred-owner", "owner@deferred.test")).To(Succeed())
		})

		It("rejects a tenant whose owner never appears", func() {
			err := pgx.BeginFunc(ctx, suitePool, func(tx pgx.Tx) error {
				_, err := tx.Exec(ctx,
					`INSERT INTO tenants (id, owner_id, handle, name, avatar_url) VALUES ($1, $2, 'orphan', 'Orphan', 'a')`,
					ulid.Make().String(), ulid.Make().String())
				return err
			})
			Expect(pgCode(err)).To(Equal(pgerrcode.ForeignKeyViolation))
		})
	})

	Describe("uniqueness", func() {
		It("reports the handle constraint by name", func() {
			Expect(insertAccount(ctx, "taken-handle", "first@handle.test")).To(Succeed())
			err := insertAccount(ctx, "taken-handle", "second@handle.test")
			Expect(pgCode(err)).To(Equal(pgerrcode.UniqueViolation))
			Expect(pgConstraint(err)).To(Equal("tenants_handle_key"))
		})

		It("treats emails case-insensitively", func() {
			Expect(insertAccount(ctx, "email-one", "Casey@Example.test")).To(Succeed())
			err := insertAccount(ctx, "email-two", "casey@example.TEST")
			Expect(pgCode(err)).To(Equal(pgerrcode.UniqueViolation))
			Expect(pgConstraint(err)).To(Equal("principals_email_key"))
		})
	})

	Describe("handle format", func() {
		It("rejects uppercase handles", func() {
			err := insertAccount(ctx, "Bad-Handle", "fmt@handle.test")
			Expect(pgCode(err)).To(Equal(pgerrcode.CheckViolation))
		})
	})
})
