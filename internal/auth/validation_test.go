// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tenantry Contributors

package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenantry/tenantry/internal/auth"
)

func assertValidation(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var pub *auth.Error
	require.ErrorAs(t, err, &pub)
	assert.Equal(t, auth.KindValidation, pub.Kind)
	assert.Equal(t, code, pub.Code)
	assert.NotEmpty(t, pub.Message)
}

func TestValidateWorkspaceHandle(t *testing.T) {
	tests := []struct {
		name   string
		handle string
		code   string
	}{
		{"valid", "valid-handle-1", ""},
		{"valid after trim", "  acme  ", ""},
		{"minimum length", "abc", ""},
		{"too short", "ab", auth.CodeInvalidHandle},
		{"too short after trim", "  ab ", auth.CodeInvalidHandle},
		{"reserved", "admin", auth.CodeReservedHandle},
		{"reserved root", "root", auth.CodeReservedHandle},
		{"uppercase", "Has_Upper", auth.CodeInvalidHandle},
		{"underscore", "has_under", auth.CodeInvalidHandle},
		{"inner space", "two words", auth.CodeInvalidHandle},
		{"non-ascii letter", "café", auth.CodeInvalidHandle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := auth.ValidateWorkspaceHandle(tt.handle)
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			assertValidation(t, err, tt.code)
		})
	}
}

func TestIsReservedHandle(t *testing.T) {
	for _, h := range []string{"admin", "api", "login", "register", "dashboard", "static", "pkg", "internal", "system", "support", "root"} {
		assert.True(t, auth.IsReservedHandle(h), h)
	}
	assert.False(t, auth.IsReservedHandle("acme"))
	assert.False(t, auth.IsReservedHandle("Admin"))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, auth.ValidateEmail("a@b.com"))
	// Only '@' is required.
	assert.NoError(t, auth.ValidateEmail("@"))
	assertValidation(t, auth.ValidateEmail("not-an-email"), auth.CodeInvalidEmail)
	assertValidation(t, auth.ValidateEmail(""), auth.CodeInvalidEmail)
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, auth.ValidatePassword("12345678"))
	assertValidation(t, auth.ValidatePassword("1234567"), auth.CodeWeakPassword)

	// Length counts code points, not bytes.
	assert.NoError(t, auth.ValidatePassword("ééééééééé"[:16]))
	assertValidation(t, auth.ValidatePassword("ééééééé"), auth.CodeWeakPassword)
}

func TestValidateNames(t *testing.T) {
	assert.NoError(t, auth.ValidateDisplayName("Ada"))
	assertValidation(t, auth.ValidateDisplayName("   "), auth.CodeInvalidDisplayName)
	assert.NoError(t, auth.ValidateTenantName("Acme"))
	assertValidation(t, auth.ValidateTenantName("\t"), auth.CodeInvalidTenantName)
}

func TestValidatePasswordConfirmation(t *testing.T) {
	assert.NoError(t, auth.ValidatePasswordConfirmation("longenough1", "longenough1"))
	assertValidation(t, auth.ValidatePasswordConfirmation("longenough1", "longenough2"), auth.CodePasswordMismatch)
	assertValidation(t, auth.ValidatePasswordConfirmation("longenough1", "longenough1 "), auth.CodePasswordMismatch)
}

func TestSignupPayload_Validate(t *testing.T) {
	require.NoError(t, validSignup().Validate())

	t.Run("reports the first failure in fixed order", func(t *testing.T) {
		p := validSignup()
		p.WorkspaceHandle = "ab"
		p.Email = "bad"
		p.ConfirmPassword = "other"
		assertValidation(t, p.Validate(), auth.CodeInvalidHandle)

		p.DisplayName = ""
		assertValidation(t, p.Validate(), auth.CodeInvalidDisplayName)
	})

	tests := []struct {
		name   string
		mutate func(p *auth.SignupPayload)
		code   string
	}{
		{"display name", func(p *auth.SignupPayload) { p.DisplayName = " " }, auth.CodeInvalidDisplayName},
		{"tenant name", func(p *auth.SignupPayload) { p.TenantName = "" }, auth.CodeInvalidTenantName},
		{"handle", func(p *auth.SignupPayload) { p.WorkspaceHandle = "api" }, auth.CodeReservedHandle},
		{"email", func(p *auth.SignupPayload) { p.Email = "nope" }, auth.CodeInvalidEmail},
		{"password", func(p *auth.SignupPayload) { p.Password, p.ConfirmPassword = "short", "short" }, auth.CodeWeakPassword},
		{"confirmation", func(p *auth.SignupPayload) { p.ConfirmPassword = "longenough2" }, auth.CodePasswordMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validSignup()
			tt.mutate(&p)
			assertValidation(t, p.Validate(), tt.code)
		})
	}
}

func TestSignupPayload_Normalize(t *testing.T) {
	p := auth.SignupPayload{
		DisplayName:     " Ada ",
		TenantName:      " Acme ",
		WorkspaceHandle: " acme ",
		Email:           " a@b.com ",
		Password:        " secret pw ",
		ConfirmPassword: " secret pw ",
	}
	n := p.Normalize()
	assert.Equal(t, "Ada", n.DisplayName)
	assert.Equal(t, "Acme", n.TenantName)
	assert.Equal(t, "acme", n.WorkspaceHandle)
	assert.Equal(t, "a@b.com", n.Email)
	assert.Equal(t, " secret pw ", n.Password)
	assert.Equal(t, " Ada ", p.DisplayName, "original is not modified")
}

func TestLoginPayload_Validate(t *testing.T) {
	assert.NoError(t, auth.LoginPayload{Email: "a@b.com", Password: "x"}.Validate())
	assertValidation(t, auth.LoginPayload{Email: "ab.com", Password: "x"}.Validate(), auth.CodeInvalidEmail)
	assertValidation(t, auth.LoginPayload{Email: "a@b.com"}.Validate(), auth.CodeWeakPassword)
}
