// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tenantry Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/tenantry/tenantry/internal/auth"
)

// TenantRepository implements auth.TenantRepository using PostgreSQL.
type TenantRepository struct {
	repo
}

// NewTenantRepository creates a new TenantRepository.
func NewTenantRepository(db DB, opts ...Option) *TenantRepository {
	return &TenantRepository{repo: newRepo(db, opts)}
}

// Create stores a new tenant.
func (r *TenantRepository) Create(ctx context.Context, t *auth.Tenant) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	_, err := conn(ctx, r.db).Exec(ctx, `
		INSERT INTO tenants (id, owner_id, handle, name, avatar_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		t.ID.String(),
		t.OwnerID.String(),
		t.Handle,
		t.Name,
		t.AvatarURL,
		t.CreatedAt,
	)
	if err != nil {
		return oops.Code("TENANT_CREATE_FAILED").
			With("operation", "insert tenant").
			With("handle", t.Handle).
			Wrap(classify(err))
	}
	return nil
}

// GetByID retrieves a tenant by ID.
func (r *TenantRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.Tenant, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var (
		t              auth.Tenant
		idStr, ownerID string
	)
	err := conn(ctx, r.db).QueryRow(ctx, `
		SELECT id, owner_id, handle, name, avatar_url, created_at
		FROM tenants
		WHERE id = $1
	`, id.String()).Scan(&idStr, &ownerID, &t.Handle, &t.Name, &t.AvatarURL, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("TENANT_NOT_FOUND").With("id", id.String()).Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("TENANT_GET_FAILED").
			With("operation", "get tenant by id").
			With("id", id.String()).
			Wrap(err)
	}
	if t.ID, err = parseULID(idStr, "tenant_id"); err != nil {
		return nil, oops.Code("TENANT_GET_FAILED").Wrap(err)
	}
	if t.OwnerID, err = parseULID(ownerID, "owner_id"); err != nil {
		return nil, oops.Code("TENANT_GET_FAILED").Wrap(err)
	}
	return &t, nil
}

// HandleExists reports whether a tenant has claimed handle.
func (r *TenantRepository) HandleExists(ctx context.Context, handle string) (bool, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var exists bool
	err := conn(ctx, r.db).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM tenants WHERE handle = $1)`, handle).Scan(&exists)
	if err != nil {
		return false, oops.Code("TENANT_EXISTS_FAILED").
			With("operation", "check handle").
			With("handle", handle).
			Wrap(err)
	}
	return exists, nil
}
