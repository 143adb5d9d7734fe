// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tenantry Contributors

package auth_test

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"

	"github.com/tenantry/tenantry/internal/auth"
)

// fixedNow is the clock used by tests that need deterministic time.
var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testAccount(t *testing.T) *auth.Account {
	t.Helper()
	principalID := ulid.Make()
	tenant, err := auth.NewTenant(principalID, "acme", "Acme", auth.AvatarURL(auth.DefaultAvatarBaseURL, "Acme"))
	require.NoError(t, err)
	principal, err := auth.NewPrincipal(tenant.ID, "a@b.com", "$argon2id$stored", "Ada", auth.RoleTenantAdmin)
	require.NoError(t, err)
	principal.ID = principalID
	return &auth.Account{Principal: principal, Tenant: tenant}
}

func validSignup() auth.SignupPayload {
	return auth.SignupPayload{
		DisplayName:     "Ada",
		TenantName:      "Acme",
		WorkspaceHandle: "acme",
		Email:           "a@b.com",
		Password:        "longenough1",
		ConfirmPassword: "longenough1",
	}
}
