// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tenantry Contributors

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenantry/tenantry/internal/auth"
	"github.com/tenantry/tenantry/pkg/errutil"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testAccount(t *testing.T) *auth.Account {
	t.Helper()
	ownerID := ulid.Make()
	tenant, err := auth.NewTenant(ownerID, "acme", "Acme", "https://avatars.test/acme.svg")
	require.NoError(t, err)
	principal, err := auth.NewPrincipal(tenant.ID, "ada@acme.test", "$argon2id$hash", "Ada", auth.RoleTenantAdmin)
	require.NoError(t, err)
	principal.ID = ownerID
	return &auth.Account{Principal: principal, Tenant: tenant}
}

func TestTenantRepository_Create(t *testing.T) {
	account := testAccount(t)

	t.Run("inserts", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(`INSERT INTO tenants`).
			WithArgs(account.Tenant.ID.String(), account.Tenant.OwnerID.String(), "acme", "Acme",
				account.Tenant.AvatarURL, account.Tenant.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		require.NoError(t, NewTenantRepository(mock).Create(context.Background(), account.Tenant))
	})

	t.Run("maps duplicate handle", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(`INSERT INTO tenants`).WillReturnError(uniqueViolation(constraintTenantHandle))
		err := NewTenantRepository(mock).Create(context.Background(), account.Tenant)
		assert.ErrorIs(t, err, auth.ErrHandleTaken)
		errutil.AssertErrorCode(t, err, "TENANT_CREATE_FAILED")
	})
}

func TestTenantRepository_GetByID(t *testing.T) {
	cols := []string{"id", "owner_id", "handle", "name", "avatar_url", "created_at"}
	id, owner := ulid.Make(), ulid.Make()

	t.Run("found", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`SELECT id, owner_id, handle, name, avatar_url, created_at`).
			WithArgs(id.String()).
			WillReturnRows(pgxmock.NewRows(cols).AddRow(id.String(), owner.String(), "acme", "Acme", "a.svg", testNow))

		got, err := NewTenantRepository(mock).GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, owner, got.OwnerID)
		assert.Equal(t, "acme", got.Handle)
	})

	t.Run("not found", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`FROM tenants`).WillReturnRows(pgxmock.NewRows(cols))
		_, err := NewTenantRepository(mock).GetByID(context.Background(), id)
		assert.ErrorIs(t, err, auth.ErrNotFound)
		errutil.AssertErrorCode(t, err, "TENANT_NOT_FOUND")
	})

	t.Run("corrupt id", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`FROM tenants`).
			WillReturnRows(pgxmock.NewRows(cols).AddRow("garbage", owner.String(), "acme", "Acme", "a.svg", testNow))
		_, err := NewTenantRepository(mock).GetByID(context.Background(), id)
		errutil.AssertErrorCode(t, err, "TENANT_GET_FAILED")
	})
}

func TestTenantRepository_HandleExists(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`SELECT EXISTS`).WithArgs("acme").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT EXISTS`).WithArgs("down").WillReturnError(errors.New("connection reset"))

	repo := NewTenantRepository(mock)
	exists, err := repo.HandleExists(context.Background(), "acme")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.HandleExists(context.Background(), "down")
	errutil.AssertErrorCode(t, err, "TENANT_EXISTS_FAILED")
}

func TestPrincipalRepository_Create(t *testing.T) {
	account := testAccount(t)

	t.Run("inserts", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(`INSERT INTO principals`).WillReturnResult(pgxmock.NewResult("INSERT", 1))
		require.NoError(t, NewPrincipalRepository(mock).Create(context.Background(), account.Principal))
	})

	t.Run("maps duplicate email", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(`INSERT INTO principals`).WillReturnError(uniqueViolation(constraintPrincipalEmail))
		err := NewPrincipalRepository(mock).Create(context.Background(), account.Principal)
		assert.ErrorIs(t, err, auth.ErrEmailTaken)
		errutil.AssertErrorCode(t, err, "PRINCIPAL_CREATE_FAILED")
	})
}

var accountCols = []string{
	"id", "tenant_id", "email", "password_hash", "display_name", "role", "bio", "theme", "avatar_url",
	"created_at", "updated_at", "t_id", "t_owner_id", "handle", "name", "t_avatar_url", "t_created_at",
}

func TestPrincipalRepository_GetAccountByEmail(t *testing.T) {
	principalID, tenantID := ulid.Make(), ulid.Make()
	bio := "hello"
	avatar := "https://avatars.test/ada.png"

	t.Run("joins principal and tenant", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`LOWER\(p.email\) = LOWER\(\$1\)`).
			WithArgs("ADA@acme.test").
			WillReturnRows(pgxmock.NewRows(accountCols).AddRow(
				principalID.String(), tenantID.String(), "ada@acme.test", "$argon2id$hash", "Ada",
				"tenant_admin", &bio, "light", &avatar, testNow, testNow,
				tenantID.String(), principalID.String(), "acme", "Acme", "t.svg", testNow))

		got, err := NewPrincipalRepository(mock).GetAccountByEmail(context.Background(), "ADA@acme.test")
		require.NoError(t, err)
		assert.Equal(t, principalID, got.Principal.ID)
		assert.Equal(t, auth.RoleTenantAdmin, got.Principal.Role)
		assert.Equal(t, tenantID, got.Tenant.ID)
		assert.Equal(t, principalID, got.Tenant.OwnerID)
		assert.Equal(t, "hello", *got.Principal.Bio)
		assert.Equal(t, avatar, got.Profile().AvatarURL)
	})

	t.Run("unknown email", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`FROM principals p`).WillReturnRows(pgxmock.NewRows(accountCols))
		_, err := NewPrincipalRepository(mock).GetAccountByEmail(context.Background(), "nobody@acme.test")
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})

	t.Run("database failure is not a miss", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`FROM principals p`).WillReturnError(errors.New("connection reset"))
		_, err := NewPrincipalRepository(mock).GetAccountByEmail(context.Background(), "ada@acme.test")
		require.Error(t, err)
		assert.NotErrorIs(t, err, auth.ErrNotFound)
		errutil.AssertErrorCode(t, err, "PRINCIPAL_GET_FAILED")
	})
}

func TestPrincipalRepository_EmailExists(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM principals`).WithArgs("ada@acme.test").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := NewPrincipalRepository(mock).EmailExists(context.Background(), "ada@acme.test")
	require.NoError(t, err)
	assert.False(t, exists)
}

var sessionCols = []string{
	"token_hash", "principal_id", "tenant_id", "role", "display_name", "email",
	"avatar_url", "bio", "theme", "handle", "tenant_name", "issued_at", "expires_at",
}

func TestSessionRepository_Create(t *testing.T) {
	account := testAccount(t)
	session, err := auth.NewSession(account, "hash", testNow, testNow.Add(time.Hour))
	require.NoError(t, err)

	mock := newMock(t)
	mock.ExpectExec(`INSERT INTO sessions`).
		WithArgs("hash", account.Principal.ID.String(), account.Tenant.ID.String(), "tenant_admin",
			"Ada", "ada@acme.test", "https://avatars.test/acme.svg", pgxmock.AnyArg(), "light", "acme", "Acme",
			testNow, testNow.Add(time.Hour)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, NewSessionRepository(mock).Create(context.Background(), session))
}

func TestSessionRepository_GetActive(t *testing.T) {
	principalID, tenantID := ulid.Make(), ulid.Make()
	bio := "bio"

	t.Run("returns the snapshot", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`WHERE token_hash = \$1 AND expires_at > \$2`).
			WithArgs("hash", testNow).
			WillReturnRows(pgxmock.NewRows(sessionCols).AddRow(
				"hash", principalID.String(), tenantID.String(), "manager", "Ada", "ada@acme.test",
				"a.svg", &bio, "dark", "acme", "Acme", testNow.Add(-time.Hour), testNow.Add(time.Hour)))

		got, err := NewSessionRepository(mock).GetActive(context.Background(), "hash", testNow)
		require.NoError(t, err)
		assert.Equal(t, principalID, got.PrincipalID)
		assert.Equal(t, principalID, got.Profile.PrincipalID)
		assert.Equal(t, tenantID, got.Profile.TenantID)
		assert.Equal(t, auth.RoleManager, got.Profile.Role)
		assert.Equal(t, "acme", got.Profile.WorkspaceHandle)
		assert.Equal(t, "dark", got.Profile.Theme)
	})

	t.Run("absent or expired", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`FROM sessions`).WillReturnRows(pgxmock.NewRows(sessionCols))
		_, err := NewSessionRepository(mock).GetActive(context.Background(), "hash", testNow)
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})

	t.Run("query failure", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`FROM sessions`).WillReturnError(context.DeadlineExceeded)
		_, err := NewSessionRepository(mock).GetActive(context.Background(), "hash", testNow)
		errutil.AssertErrorCode(t, err, "SESSION_GET_FAILED")
		assert.NotErrorIs(t, err, auth.ErrNotFound)
	})
}

func TestSessionRepository_Deletes(t *testing.T) {
	principalID := ulid.Make()

	mock := newMock(t)
	mock.ExpectExec(`DELETE FROM sessions WHERE token_hash = \$1`).WithArgs("hash").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`DELETE FROM sessions WHERE expires_at <= \$1`).WithArgs(testNow).
		WillReturnResult(pgxmock.NewResult("DELETE", 4))
	mock.ExpectExec(`DELETE FROM sessions WHERE principal_id = \$1`).WithArgs(principalID.String()).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	repo := NewSessionRepository(mock)
	require.NoError(t, repo.Delete(context.Background(), "hash"))

	n, err := repo.DeleteExpired(context.Background(), testNow)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	n, err = repo.DeleteByPrincipal(context.Background(), principalID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestSessionRepository_CountActiveByPrincipal(t *testing.T) {
	principalID := ulid.Make()
	mock := newMock(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM sessions`).WithArgs(principalID.String(), testNow).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))

	n, err := NewSessionRepository(mock).CountActiveByPrincipal(context.Background(), principalID, testNow)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
