// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tenantry Contributors

package auth

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Provisioner creates a tenant together with its first administrator.
type Provisioner struct {
	store      Store
	hasher     PasswordHasher
	avatarBase string
}

// NewProvisioner creates a Provisioner.
func NewProvisioner(store Store, hasher PasswordHasher, opts Options) (*Provisioner, error) {
	if err := store.validate(); err != nil {
		return nil, err
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_INVALID_HASHER").Errorf("password hasher is required")
	}
	opts = opts.withDefaults()
	return &Provisioner{store: store, hasher: hasher, avatarBase: opts.AvatarBaseURL}, nil
}

// Provision validates payload and stores the new tenant and its admin
// principal in one transaction.
func (p *Provisioner) Provision(ctx context.Context, payload SignupPayload) (*Account, error) {
	return p.ProvisionThen(ctx, payload, nil)
}

// ProvisionThen is Provision with then, if non-nil, running inside the same
// transaction after the inserts. An error from then rolls everything back.
func (p *Provisioner) ProvisionThen(ctx context.Context, payload SignupPayload, then func(ctx context.Context, account *Account) error) (*Account, error) {
	account, err := p.prepare(payload)
	if err != nil {
		return nil, err
	}
	err = p.store.Tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := p.insert(ctx, account); err != nil {
			return err
		}
		if then == nil {
			return nil
		}
		return then(ctx, account)
	})
	if err != nil {
		return nil, storeError(err)
	}
	return account, nil
}

// prepare validates the payload, hashes the password and builds the rows to
// insert. It performs no I/O so hashing never holds a connection.
func (p *Provisioner) prepare(payload SignupPayload) (*Account, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	payload = payload.Normalize()

	hash, err := p.hasher.Hash(payload.Password)
	if err != nil {
		return nil, internalError(oops.Code("TENANT_PROVISION_FAILED").
			With("operation", "hash password").
			Wrap(err))
	}

	principalID := ulid.Make()
	tenant, err := NewTenant(principalID, payload.WorkspaceHandle, payload.TenantName,
		AvatarURL(p.avatarBase, payload.TenantName))
	if err != nil {
		return nil, storeError(err)
	}
	principal, err := NewPrincipal(tenant.ID, payload.Email, hash, payload.DisplayName, RoleTenantAdmin)
	if err != nil {
		return nil, storeError(err)
	}
	principal.ID = principalID

	return &Account{Principal: principal, Tenant: tenant}, nil
}

// insert writes the tenant then its owner. The owner reference is checked at
// commit, so the order inside the transaction is free.
func (p *Provisioner) insert(ctx context.Context, account *Account) error {
	if err := p.store.Tenants.Create(ctx, account.Tenant); err != nil {
		return oops.Code("TENANT_CREATE_FAILED").
			With("handle", account.Tenant.Handle).
			Wrap(err)
	}
	if err := p.store.Principals.Create(ctx, account.Principal); err != nil {
		return oops.Code("PRINCIPAL_CREATE_FAILED").
			With("tenant_id", account.Tenant.ID.String()).
			Wrap(err)
	}
	return nil
}
