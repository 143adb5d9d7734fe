// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tenantry Contributors

package auth

import (
	"strings"
	"unicode/utf8"
)

// Identifier constraints.
const (
	MinPasswordLength = 8
	MinHandleLength   = 3
)

// reservedHandles are route segments and system names a tenant may not claim.
var reservedHandles = map[string]struct{}{
	"admin":     {},
	"api":       {},
	"login":     {},
	"register":  {},
	"dashboard": {},
	"static":    {},
	"pkg":       {},
	"internal":  {},
	"system":    {},
	"support":   {},
	"root":      {},
}

// IsReservedHandle reports whether handle is on the reserved list.
func IsReservedHandle(handle string) bool {
	_, ok := reservedHandles[handle]
	return ok
}

// ValidateEmail checks that s looks like an email address.
// Only the presence of '@' is required; deliverability is not checked.
func ValidateEmail(s string) error {
	if !strings.Contains(s, "@") {
		return validationError(CodeInvalidEmail, "please provide a valid email address")
	}
	return nil
}

// ValidatePassword checks the minimum password length in code points.
func ValidatePassword(s string) error {
	if utf8.RuneCountInString(s) < MinPasswordLength {
		return validationError(CodeWeakPassword, "password must be at least 8 characters long")
	}
	return nil
}

// ValidateDisplayName checks that the principal's display name is not blank.
func ValidateDisplayName(s string) error {
	if strings.TrimSpace(s) == "" {
		return validationError(CodeInvalidDisplayName, "name is required")
	}
	return nil
}

// ValidateTenantName checks that the workspace display name is not blank.
func ValidateTenantName(s string) error {
	if strings.TrimSpace(s) == "" {
		return validationError(CodeInvalidTenantName, "workspace name is required")
	}
	return nil
}

// ValidateWorkspaceHandle checks handle format and the reserved list.
// A valid handle may still be claimed by another tenant; uniqueness is
// enforced by the store.
func ValidateWorkspaceHandle(s string) error {
	h := strings.TrimSpace(s)
	if len(h) < MinHandleLength {
		return validationError(CodeInvalidHandle, "workspace handle must be at least 3 characters")
	}
	if IsReservedHandle(h) {
		return validationError(CodeReservedHandle, "this workspace handle is reserved")
	}
	for i := 0; i < len(h); i++ {
		c := h[i]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') && c != '-' {
			return validationError(CodeInvalidHandle,
				"workspace handle may only contain lowercase letters, digits, and hyphens")
		}
	}
	return nil
}

// ValidatePasswordConfirmation checks that both entries are byte-equal.
func ValidatePasswordConfirmation(password, confirmation string) error {
	if password != confirmation {
		return validationError(CodePasswordMismatch, "passwords do not match")
	}
	return nil
}

// SignupPayload is the input of a signup request.
type SignupPayload struct {
	DisplayName     string `json:"display_name"`
	TenantName      string `json:"tenant_name"`
	WorkspaceHandle string `json:"workspace_handle"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Validate runs every signup check in a fixed order and returns the first failure.
func (p SignupPayload) Validate() error {
	checks := []func() error{
		func() error { return ValidateDisplayName(p.DisplayName) },
		func() error { return ValidateTenantName(p.TenantName) },
		func() error { return ValidateWorkspaceHandle(p.WorkspaceHandle) },
		func() error { return ValidateEmail(p.Email) },
		func() error { return ValidatePassword(p.Password) },
		func() error { return ValidatePasswordConfirmation(p.Password, p.ConfirmPassword) },
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

// Normalize returns a copy with surrounding whitespace removed from the
// identifier fields. Passwords are left untouched.
func (p SignupPayload) Normalize() SignupPayload {
	p.DisplayName = strings.TrimSpace(p.DisplayName)
	p.TenantName = strings.TrimSpace(p.TenantName)
	p.WorkspaceHandle = strings.TrimSpace(p.WorkspaceHandle)
	p.Email = strings.TrimSpace(p.Email)
	return p
}

// LoginPayload is the input of a login request.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the email shape and that a password was supplied.
func (p LoginPayload) Validate() error {
	if err := ValidateEmail(p.Email); err != nil {
		return err
	}
	if p.Password == "" {
		return validationError(CodeWeakPassword, "password is required")
	}
	return nil
}
