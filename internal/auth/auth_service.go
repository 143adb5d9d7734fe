// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tenantry Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/oops"

	"github.com/tenantry/tenantry/pkg/errutil"
)

// Result is the outcome of a successful signup or login. Token must only be
// handed to the client after the call has returned.
type Result struct {
	Token     string
	Profile   Profile
	ExpiresAt time.Time
}

// Service orchestrates signup, login, session resolution and logout.
// Every error it returns is an *Error.
type Service struct {
	store       Store
	hasher      PasswordHasher
	provisioner *Provisioner
	sessions    *SessionManager
	logger      *slog.Logger
}

// NewAuthService creates a new Service using slog.Default.
func NewAuthService(store Store, hasher PasswordHasher, opts Options) (*Service, error) {
	return NewAuthServiceWithLogger(store, hasher, opts, slog.Default())
}

// NewAuthServiceWithLogger creates a new Service with a custom logger.
func NewAuthServiceWithLogger(store Store, hasher PasswordHasher, opts Options, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		return nil, oops.Code("AUTH_INVALID_LOGGER").Errorf("logger is required")
	}
	provisioner, err := NewProvisioner(store, hasher, opts)
	if err != nil {
		return nil, err
	}
	sessions, err := NewSessionManagerWithLogger(store.Sessions, opts, logger)
	if err != nil {
		return nil, err
	}
	return &Service{
		store:       store,
		hasher:      hasher,
		provisioner: provisioner,
		sessions:    sessions,
		logger:      logger,
	}, nil
}

// Sessions returns the session manager used by the service.
func (s *Service) Sessions() *SessionManager {
	return s.sessions
}

// dummyPasswordHash is verified against when the email is unknown so that
// both login failures take the same time.
//
//nolint:gosec // G101: intentionally fake hash, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Signup provisions a tenant and its admin principal and issues the first
// session, all in one transaction.
func (s *Service) Signup(ctx context.Context, payload SignupPayload) (res *Result, err error) {
	defer func() { Signups.WithLabelValues(resultLabel(err)).Inc() }()

	var (
		token   string
		session *Session
	)
	account, err := s.provisioner.ProvisionThen(ctx, payload, func(ctx context.Context, account *Account) error {
		var err error
		token, session, err = s.sessions.Issue(ctx, account)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, "signup failed", err)
	}

	s.logger.InfoContext(ctx, "tenant provisioned",
		"tenant_id", account.Tenant.ID.String(),
		"principal_id", account.Principal.ID.String(),
		"handle", account.Tenant.Handle)

	return &Result{Token: token, Profile: session.Profile, ExpiresAt: session.ExpiresAt}, nil
}

// Login verifies credentials and issues a session. Unknown emails and wrong
// passwords fail with the same error.
func (s *Service) Login(ctx context.Context, payload LoginPayload) (res *Result, err error) {
	defer func() { Logins.WithLabelValues(resultLabel(err)).Inc() }()

	if err := payload.Validate(); err != nil {
		return nil, s.fail(ctx, "login failed", err)
	}
	email := strings.TrimSpace(payload.Email)

	var (
		token   string
		session *Session
	)
	err = s.store.Tx.InTransaction(ctx, func(ctx context.Context) error {
		account, err := s.authenticate(ctx, email, payload.Password)
		if err != nil {
			return err
		}
		token, session, err = s.sessions.Issue(ctx, account)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, "login failed", err)
	}

	s.logger.InfoContext(ctx, "principal logged in",
		"principal_id", session.PrincipalID.String(),
		"tenant_id", session.TenantID.String())

	return &Result{Token: token, Profile: session.Profile, ExpiresAt: session.ExpiresAt}, nil
}

// authenticate looks up the account for email and verifies password,
// always running a hash verification.
func (s *Service) authenticate(ctx context.Context, email, password string) (*Account, error) {
	account, lookupErr := s.store.Principals.GetAccountByEmail(ctx, email)

	targetHash := dummyPasswordHash
	switch {
	case lookupErr == nil:
		targetHash = account.Principal.PasswordHash
	case !errors.Is(lookupErr, ErrNotFound):
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "get account by email").
			Wrap(lookupErr)
	}

	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if lookupErr != nil {
		return nil, invalidCredentials()
	}
	if verifyErr != nil {
		return nil, internalError(oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			With("principal_id", account.Principal.ID.String()).
			Wrap(verifyErr))
	}
	if !valid {
		return nil, invalidCredentials()
	}
	return account, nil
}

// CurrentUser resolves token to a profile. An empty, unknown or expired
// token yields nil without error.
func (s *Service) CurrentUser(ctx context.Context, token string) (*Profile, error) {
	return s.sessions.Resolve(ctx, token)
}

// Logout revokes the session identified by token. It is idempotent.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Revoke(ctx, token)
}

// IsHandleAvailable reports whether handle could be claimed right now.
// Invalid and reserved handles are never available. The answer is advisory.
func (s *Service) IsHandleAvailable(ctx context.Context, handle string) (bool, error) {
	handle = strings.TrimSpace(handle)
	if ValidateWorkspaceHandle(handle) != nil {
		return false, nil
	}
	exists, err := s.store.Tenants.HandleExists(ctx, handle)
	if err != nil {
		return false, s.fail(ctx, "handle availability check failed",
			oops.Code("AUTH_AVAILABILITY_FAILED").With("handle", handle).Wrap(err))
	}
	return !exists, nil
}

// IsEmailAvailable reports whether email is not yet registered.
// Malformed emails are never available. The answer is advisory.
func (s *Service) IsEmailAvailable(ctx context.Context, email string) (bool, error) {
	email = strings.TrimSpace(email)
	if ValidateEmail(email) != nil {
		return false, nil
	}
	exists, err := s.store.Principals.EmailExists(ctx, email)
	if err != nil {
		return false, s.fail(ctx, "email availability check failed",
			oops.Code("AUTH_AVAILABILITY_FAILED").Wrap(err))
	}
	return !exists, nil
}

// fail converts err to a public error and logs it. Caller mistakes are
// logged at debug level, everything else at error level.
func (s *Service) fail(ctx context.Context, msg string, err error) *Error {
	pub := storeError(err)
	switch pub.Kind {
	case KindValidation, KindUnauthorized, KindConflict:
		s.logger.DebugContext(ctx, msg, "kind", pub.Kind.String(), "code", pub.Code, "error_id", pub.ID)
	default:
		errutil.LogErrorContext(ctx, s.logger, msg, pub)
	}
	return pub
}
