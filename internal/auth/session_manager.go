// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tenantry Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/tenantry/tenantry/pkg/errutil"
)

// SessionManager issues, resolves and revokes session tokens.
// Expiry is enforced at read time; Sweep only reclaims storage.
type SessionManager struct {
	sessions SessionRepository
	ttl      time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// NewSessionManager creates a SessionManager using slog.Default.
func NewSessionManager(sessions SessionRepository, opts Options) (*SessionManager, error) {
	return NewSessionManagerWithLogger(sessions, opts, slog.Default())
}

// NewSessionManagerWithLogger creates a SessionManager with a custom logger.
func NewSessionManagerWithLogger(sessions SessionRepository, opts Options, logger *slog.Logger) (*SessionManager, error) {
	if sessions == nil {
		return nil, oops.Code("AUTH_INVALID_STORE").Errorf("sessions repository is required")
	}
	if logger == nil {
		return nil, oops.Code("AUTH_INVALID_LOGGER").Errorf("logger is required")
	}
	opts = opts.withDefaults()
	return &SessionManager{
		sessions: sessions,
		ttl:      opts.SessionTTL,
		now:      opts.Clock,
		logger:   logger,
	}, nil
}

// TTL returns the lifetime of newly issued sessions.
func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// Issue creates a session for account and returns the plaintext token.
// The token is only meaningful to the caller once the surrounding
// transaction, if any, has committed.
func (m *SessionManager) Issue(ctx context.Context, account *Account) (string, *Session, error) {
	token, tokenHash, err := GenerateSessionToken()
	if err != nil {
		return "", nil, internalError(err)
	}

	issuedAt := m.now().UTC()
	session, err := NewSession(account, tokenHash, issuedAt, issuedAt.Add(m.ttl))
	if err != nil {
		return "", nil, internalError(err)
	}

	if err := m.sessions.Create(ctx, session); err != nil {
		return "", nil, storeError(oops.Code("SESSION_CREATE_FAILED").
			With("principal_id", session.PrincipalID.String()).
			Wrap(err))
	}
	return token, session, nil
}

// Resolve returns the profile of the session identified by token, or nil if
// the token is empty, unknown or expired.
func (m *SessionManager) Resolve(ctx context.Context, token string) (*Profile, error) {
	if token == "" {
		SessionLookups.WithLabelValues(ResultMiss).Inc()
		return nil, nil
	}

	session, err := m.sessions.GetActive(ctx, HashSessionToken(token), m.now().UTC())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			SessionLookups.WithLabelValues(ResultMiss).Inc()
			return nil, nil
		}
		pub := storeError(oops.Code("SESSION_LOOKUP_FAILED").Wrap(err))
		SessionLookups.WithLabelValues(pub.Kind.String()).Inc()
		errutil.LogErrorContext(ctx, m.logger, "session lookup failed", pub)
		return nil, pub
	}
	SessionLookups.WithLabelValues(ResultHit).Inc()

	profile := session.Profile
	return &profile, nil
}

// Revoke deletes the session identified by token. Unknown, expired and empty
// tokens are not an error.
func (m *SessionManager) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := m.sessions.Delete(ctx, HashSessionToken(token)); err != nil {
		pub := storeError(oops.Code("SESSION_DELETE_FAILED").Wrap(err))
		errutil.LogErrorContext(ctx, m.logger, "session revoke failed", pub)
		return pub
	}
	return nil
}

// RevokeAll deletes every session of a principal and returns the count.
func (m *SessionManager) RevokeAll(ctx context.Context, principalID ulid.ULID) (int64, error) {
	n, err := m.sessions.DeleteByPrincipal(ctx, principalID)
	if err != nil {
		return 0, storeError(oops.Code("SESSION_DELETE_FAILED").
			With("principal_id", principalID.String()).
			Wrap(err))
	}
	m.logger.InfoContext(ctx, "sessions revoked", "principal_id", principalID.String(), "count", n)
	return n, nil
}

// ActiveCount returns how many unexpired sessions a principal holds.
func (m *SessionManager) ActiveCount(ctx context.Context, principalID ulid.ULID) (int64, error) {
	n, err := m.sessions.CountActiveByPrincipal(ctx, principalID, m.now().UTC())
	if err != nil {
		return 0, storeError(oops.Code("SESSION_COUNT_FAILED").
			With("principal_id", principalID.String()).
			Wrap(err))
	}
	return n, nil
}

// Sweep deletes expired sessions and returns the count.
func (m *SessionManager) Sweep(ctx context.Context) (int64, error) {
	n, err := m.sessions.DeleteExpired(ctx, m.now().UTC())
	if err != nil {
		return 0, storeError(oops.Code("SESSION_SWEEP_FAILED").Wrap(err))
	}
	SessionsSwept.Add(float64(n))
	return n, nil
}
