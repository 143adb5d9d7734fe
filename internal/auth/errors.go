// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tenantry Contributors

package auth

import (
	"errors"

	"github.com/google/uuid"
)

// Persistence sentinels. Repository implementations wrap these so that the
// service layer can classify store failures with errors.Is.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("conflict")

	// ErrHandleTaken is returned when a tenant handle is already claimed.
	ErrHandleTaken = errors.New("workspace handle already taken")

	// ErrEmailTaken is returned when a principal email is already registered.
	ErrEmailTaken = errors.New("email already registered")
)

// Kind classifies an error surfaced to callers of the auth services.
// The set is closed; callers switch on it to pick a presentation.
type Kind uint8

// Error kinds.
const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindConflict
	KindPersistence
	KindNotFound
)

// Severity is the presentation level of a notification.
type Severity string

// Severities.
const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

var kindTable = map[Kind]struct {
	name     string
	title    string
	severity Severity
}{
	KindInternal:     {"internal", "System Fault", SeverityError},
	KindValidation:   {"validation", "Data Invalid", SeverityWarning},
	KindUnauthorized: {"unauthorized", "Auth Failure", SeverityWarning},
	KindConflict:     {"conflict", "Conflict Detected", SeverityWarning},
	KindPersistence:  {"persistence", "Service Unavailable", SeverityError},
	KindNotFound:     {"not_found", "Not Found", SeverityWarning},
}

// String returns the stable machine name of the kind.
func (k Kind) String() string {
	if e, ok := kindTable[k]; ok {
		return e.name
	}
	return kindTable[KindInternal].name
}

// Title returns a short human-readable heading for the kind.
func (k Kind) Title() string {
	if e, ok := kindTable[k]; ok {
		return e.title
	}
	return kindTable[KindInternal].title
}

// Severity returns the notification level for the kind.
func (k Kind) Severity() Severity {
	if e, ok := kindTable[k]; ok {
		return e.severity
	}
	return SeverityError
}

// Retryable reports whether the caller may retry the same request unchanged.
func (k Kind) Retryable() bool {
	return k == KindPersistence
}

// Error is the public error returned by the auth services.
// Message is safe to show to an untrusted caller; the wrapped cause is for logs only.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	ID      string
	cause   error
}

// NewError creates a public error with a fresh correlation id. message must
// be safe to show to an untrusted caller.
func NewError(kind Kind, code, message string, cause error) *Error {
	return &Error{
		Kind:    kind,
		Code:    code,
		Message: message,
		ID:      "err-" + uuid.NewString(),
		cause:   cause,
	}
}

// Error returns the display message.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the internal cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Title returns the notification title for the error's kind.
func (e *Error) Title() string {
	return e.Kind.Title()
}

// Severity returns the notification level for the error's kind.
func (e *Error) Severity() Severity {
	return e.Kind.Severity()
}

// CorrelationID returns the per-instance identifier used to track the error.
func (e *Error) CorrelationID() string {
	return e.ID
}

// KindOf classifies err. Errors that are not *Error are Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// AsError returns err as a public error. Errors that are not *Error become
// Internal with a generic message.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return internalError(err)
}

// Public error codes.
const (
	CodeInvalidEmail       = "AUTH_INVALID_EMAIL"
	CodeWeakPassword       = "AUTH_WEAK_PASSWORD"
	CodeInvalidDisplayName = "AUTH_INVALID_DISPLAY_NAME"
	CodeInvalidTenantName  = "AUTH_INVALID_TENANT_NAME"
	CodeInvalidHandle      = "AUTH_INVALID_HANDLE"
	CodeReservedHandle     = "AUTH_RESERVED_HANDLE"
	CodePasswordMismatch   = "AUTH_PASSWORD_MISMATCH"
	CodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	CodeHandleTaken        = "AUTH_HANDLE_TAKEN"
	CodeEmailTaken         = "AUTH_EMAIL_TAKEN"
	CodeConflict           = "AUTH_CONFLICT"
	CodeUnavailable        = "AUTH_UNAVAILABLE"
	CodeNotFound           = "AUTH_NOT_FOUND"
	CodeInternal           = "AUTH_INTERNAL"
)

const (
	msgInvalidCredentials = "invalid email or password"
	msgUnavailable        = "the service is temporarily unavailable, please try again"
	msgInternal           = "an unexpected error occurred"
)

func validationError(code, message string) *Error {
	return NewError(KindValidation, code, message, nil)
}

func invalidCredentials() *Error {
	return NewError(KindUnauthorized, CodeInvalidCredentials, msgInvalidCredentials, nil)
}

func internalError(cause error) *Error {
	return NewError(KindInternal, CodeInternal, msgInternal, cause)
}

// storeError maps a repository or transaction failure to a public error.
// Validation and other public errors pass through unchanged.
func storeError(err error) *Error {
	var pub *Error
	if errors.As(err, &pub) {
		return pub
	}
	switch {
	case errors.Is(err, ErrHandleTaken):
		return NewError(KindConflict, CodeHandleTaken, "this workspace handle is already taken", err)
	case errors.Is(err, ErrEmailTaken):
		return NewError(KindConflict, CodeEmailTaken, "this email is already registered", err)
	case errors.Is(err, ErrConflict):
		return NewError(KindConflict, CodeConflict, "the request conflicts with existing data", err)
	case errors.Is(err, ErrNotFound):
		return NewError(KindNotFound, CodeNotFound, "the requested record was not found", err)
	default:
		return NewError(KindPersistence, CodeUnavailable, msgUnavailable, err)
	}
}
