// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tenantry Contributors

package auth

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Role is a principal's role tag. Roles are stored, not enforced.
type Role string

// Roles.
const (
	RoleTenantAdmin Role = "tenant_admin"
	RoleManager     Role = "manager"
	RoleSalesperson Role = "salesperson"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleTenantAdmin, RoleManager, RoleSalesperson:
		return true
	}
	return false
}

// DefaultTheme is the theme assigned to new principals.
const DefaultTheme = "light"

// Principal is a human actor belonging to exactly one tenant.
type Principal struct {
	ID           ulid.ULID
	TenantID     ulid.ULID
	Email        string
	PasswordHash string
	DisplayName  string
	Role         Role
	Bio          *string
	Theme        string
	AvatarURL    *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewPrincipal creates a validated Principal.
func NewPrincipal(tenantID ulid.ULID, email, passwordHash, displayName string, role Role) (*Principal, error) {
	if tenantID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("PRINCIPAL_INVALID_TENANT").Errorf("tenant ID cannot be zero")
	}
	if passwordHash == "" {
		return nil, oops.Code("PRINCIPAL_INVALID_HASH").Errorf("password hash cannot be empty")
	}
	if !role.Valid() {
		return nil, oops.Code("PRINCIPAL_INVALID_ROLE").With("role", role).Errorf("unknown role")
	}
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidateDisplayName(displayName); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Principal{
		ID:           ulid.Make(),
		TenantID:     tenantID,
		Email:        email,
		PasswordHash: passwordHash,
		DisplayName:  displayName,
		Role:         role,
		Theme:        DefaultTheme,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Account is a principal joined with its tenant.
type Account struct {
	Principal *Principal
	Tenant    *Tenant
}

// Profile is the public view of an authenticated principal.
type Profile struct {
	PrincipalID     ulid.ULID `json:"principal_id"`
	TenantID        ulid.ULID `json:"tenant_id"`
	Role            Role      `json:"role"`
	DisplayName     string    `json:"display_name"`
	Email           string    `json:"email"`
	WorkspaceHandle string    `json:"workspace_handle"`
	TenantName      string    `json:"tenant_name"`
	AvatarURL       string    `json:"avatar_url"`
	Bio             *string   `json:"bio"`
	Theme           string    `json:"theme"`
}

// Profile builds the public profile. A principal without its own avatar
// shows the tenant's.
func (a *Account) Profile() Profile {
	p, t := a.Principal, a.Tenant
	avatar := t.AvatarURL
	if p.AvatarURL != nil && *p.AvatarURL != "" {
		avatar = *p.AvatarURL
	}
	theme := p.Theme
	if theme == "" {
		theme = DefaultTheme
	}
	return Profile{
		PrincipalID:     p.ID,
		TenantID:        t.ID,
		Role:            p.Role,
		DisplayName:     p.DisplayName,
		Email:           p.Email,
		WorkspaceHandle: t.Handle,
		TenantName:      t.Name,
		AvatarURL:       avatar,
		Bio:             p.Bio,
		Theme:           theme,
	}
}

// PrincipalRepository manages principal persistence.
type PrincipalRepository interface {
	// Create stores a new principal. Returns ErrEmailTaken if the email is registered.
	Create(ctx context.Context, principal *Principal) error

	// GetByID retrieves a principal by ID. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id ulid.ULID) (*Principal, error)

	// GetAccountByEmail retrieves a principal and its tenant by
	// case-insensitive email. Returns ErrNotFound if absent.
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)

	// EmailExists reports whether any principal has registered email.
	EmailExists(ctx context.Context, email string) (bool, error)
}
