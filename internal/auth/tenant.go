// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tenantry Contributors

package auth

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// DefaultAvatarBaseURL is the avatar service used when none is configured.
const DefaultAvatarBaseURL = "https://api.dicebear.com/7.x"

// Tenant is one isolated workspace. The handle is immutable once created.
type Tenant struct {
	ID        ulid.ULID
	OwnerID   ulid.ULID
	Handle    string
	Name      string
	AvatarURL string
	CreatedAt time.Time
}

// NewTenant creates a validated Tenant owned by ownerID.
// Handle and name are expected to be normalized already.
func NewTenant(ownerID ulid.ULID, handle, name, avatarURL string) (*Tenant, error) {
	if ownerID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("TENANT_INVALID_OWNER").Errorf("owner ID cannot be zero")
	}
	if err := ValidateWorkspaceHandle(handle); err != nil {
		return nil, err
	}
	if err := ValidateTenantName(name); err != nil {
		return nil, err
	}
	return &Tenant{
		ID:        ulid.Make(),
		OwnerID:   ownerID,
		Handle:    handle,
		Name:      name,
		AvatarURL: avatarURL,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// AvatarURL derives the initials avatar for seed from the avatar service at base.
func AvatarURL(base, seed string) string {
	return strings.TrimRight(base, "/") + "/initials/svg?seed=" + url.QueryEscape(seed)
}

// TenantRepository manages tenant persistence.
type TenantRepository interface {
	// Create stores a new tenant. Returns ErrHandleTaken if the handle is claimed.
	Create(ctx context.Context, tenant *Tenant) error

	// GetByID retrieves a tenant by ID. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id ulid.ULID) (*Tenant, error)

	// HandleExists reports whether any tenant has claimed handle.
	HandleExists(ctx context.Context, handle string) (bool, error)
}
