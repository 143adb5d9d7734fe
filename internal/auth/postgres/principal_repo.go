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

// PrincipalRepository implements auth.PrincipalRepository using PostgreSQL.
type PrincipalRepository struct {
	repo
}

// NewPrincipalRepository creates a new PrincipalRepository.
func NewPrincipalRepository(db DB, opts ...Option) *PrincipalRepository {
	return &PrincipalRepository{repo: newRepo(db, opts)}
}

// Create stores a new principal.
func (r *PrincipalRepository) Create(ctx context.Context, p *auth.Principal) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	_, err := conn(ctx, r.db).Exec(ctx, `
		INSERT INTO principals (id, tenant_id, email, password_hash, display_name, role, bio, theme, avatar_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		p.ID.String(),
		p.TenantID.String(),
		p.Email,
		p.PasswordHash,
		p.DisplayName,
		string(p.Role),
		p.Bio,
		p.Theme,
		p.AvatarURL,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return oops.Code("PRINCIPAL_CREATE_FAILED").
			With("operation", "insert principal").
			With("tenant_id", p.TenantID.String()).
			Wrap(classify(err))
	}
	return nil
}

const principalColumns = `p.id, p.tenant_id, p.email, p.password_hash, p.display_name, p.role, p.bio, p.theme, p.avatar_url, p.created_at, p.updated_at`

type principalRow struct {
	id, tenantID, role string
	p                  auth.Principal
}

func (row *principalRow) dest() []any {
	return []any{
		&row.id, &row.tenantID, &row.p.Email, &row.p.PasswordHash, &row.p.DisplayName,
		&row.role, &row.p.Bio, &row.p.Theme, &row.p.AvatarURL, &row.p.CreatedAt, &row.p.UpdatedAt,
	}
}

func (row *principalRow) principal() (*auth.Principal, error) {
	var err error
	if row.p.ID, err = parseULID(row.id, "principal_id"); err != nil {
		return nil, err
	}
	if row.p.TenantID, err = parseULID(row.tenantID, "tenant_id"); err != nil {
		return nil, err
	}
	row.p.Role = auth.Role(row.role)
	return &row.p, nil
}

// GetByID retrieves a principal by ID.
func (r *PrincipalRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.Principal, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var row principalRow
	err := conn(ctx, r.db).QueryRow(ctx,
		`SELECT `+principalColumns+` FROM principals p WHERE p.id = $1`, id.String()).Scan(row.dest()...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("PRINCIPAL_NOT_FOUND").With("id", id.String()).Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("PRINCIPAL_GET_FAILED").
			With("operation", "get principal by id").
			With("id", id.String()).
			Wrap(err)
	}
	p, err := row.principal()
	if err != nil {
		return nil, oops.Code("PRINCIPAL_GET_FAILED").Wrap(err)
	}
	return p, nil
}

// GetAccountByEmail retrieves a principal joined with its tenant by
// case-insensitive email.
func (r *PrincipalRepository) GetAccountByEmail(ctx context.Context, email string) (*auth.Account, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var (
		row             principalRow
		t               auth.Tenant
		tenantID, owner string
	)
	dest := append(row.dest(), &tenantID, &owner, &t.Handle, &t.Name, &t.AvatarURL, &t.CreatedAt)
	err := conn(ctx, r.db).QueryRow(ctx, `
		SELECT `+principalColumns+`, t.id, t.owner_id, t.handle, t.name, t.avatar_url, t.created_at
		FROM principals p
		JOIN tenants t ON t.id = p.tenant_id
		WHERE LOWER(p.email) = LOWER($1)
	`, email).Scan(dest...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("PRINCIPAL_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("PRINCIPAL_GET_FAILED").
			With("operation", "get account by email").
			Wrap(err)
	}

	p, err := row.principal()
	if err != nil {
		return nil, oops.Code("PRINCIPAL_GET_FAILED").Wrap(err)
	}
	if t.ID, err = parseULID(tenantID, "tenant_id"); err != nil {
		return nil, oops.Code("PRINCIPAL_GET_FAILED").Wrap(err)
	}
	if t.OwnerID, err = parseULID(owner, "owner_id"); err != nil {
		return nil, oops.Code("PRINCIPAL_GET_FAILED").Wrap(err)
	}
	return &auth.Account{Principal: p, Tenant: &t}, nil
}

// EmailExists reports whether a principal has registered email.
func (r *PrincipalRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var exists bool
	err := conn(ctx, r.db).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM principals WHERE LOWER(email) = LOWER($1))`, email).Scan(&exists)
	if err != nil {
		return false, oops.Code("PRINCIPAL_EXISTS_FAILED").
			With("operation", "check email").
			Wrap(err)
	}
	return exists, nil
}
