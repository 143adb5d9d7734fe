// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tenantry Contributors

package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Session token configuration.
const (
	SessionTokenBytes = 32                 // 32 bytes = 64 hex chars
	DefaultSessionTTL = 7 * 24 * time.Hour // 7 day expiry
)

// Session is one authenticated client context. Profile is a snapshot taken
// at issuance and is not refreshed by later profile edits.
type Session struct {
	TokenHash   string
	PrincipalID ulid.ULID
	TenantID    ulid.ULID
	Profile     Profile
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// NewSession creates a validated Session for account.
func NewSession(account *Account, tokenHash string, issuedAt, expiresAt time.Time) (*Session, error) {
	if account == nil || account.Principal == nil || account.Tenant == nil {
		return nil, oops.Code("SESSION_INVALID_ACCOUNT").Errorf("account cannot be nil")
	}
	if tokenHash == "" {
		return nil, oops.Code("SESSION_INVALID_HASH").Errorf("token hash cannot be empty")
	}
	if !expiresAt.After(issuedAt) {
		return nil, oops.Code("SESSION_INVALID_EXPIRY").
			With("issued_at", issuedAt).
			With("expires_at", expiresAt).
			Errorf("expiry must be after issuance")
	}
	return &Session{
		TokenHash:   tokenHash,
		PrincipalID: account.Principal.ID,
		TenantID:    account.Tenant.ID,
		Profile:     account.Profile(),
		IssuedAt:    issuedAt,
		ExpiresAt:   expiresAt,
	}, nil
}

// IsExpiredAt returns true if the session is no longer valid at t.
func (s *Session) IsExpiredAt(t time.Time) bool {
	return !t.Before(s.ExpiresAt)
}

// GenerateSessionToken creates a secure random token and its hash.
// Returns (plaintext_token, sha256_hash, error).
// The plaintext token is sent to the client; the hash is stored in the database.
func GenerateSessionToken() (token, hash string, err error) {
	tokenBytes := make([]byte, SessionTokenBytes)
	if _, err = rand.Read(tokenBytes); err != nil {
		return "", "", oops.Code("SESSION_TOKEN_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			With("requested_bytes", SessionTokenBytes).
			Wrap(err)
	}

	token = hex.EncodeToString(tokenBytes)
	hash = HashSessionToken(token)

	return token, hash, nil
}

// HashSessionToken computes the SHA256 hash of a session token.
func HashSessionToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// SessionRepository manages session persistence.
type SessionRepository interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// GetActive retrieves the session with tokenHash that has not expired at now.
	// Returns ErrNotFound if absent or expired.
	GetActive(ctx context.Context, tokenHash string, now time.Time) (*Session, error)

	// Delete removes a session. Deleting an absent session is not an error.
	Delete(ctx context.Context, tokenHash string) error

	// DeleteExpired removes all sessions expired at now and returns the count.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)

	// DeleteByPrincipal removes all sessions of a principal and returns the count.
	DeleteByPrincipal(ctx context.Context, principalID ulid.ULID) (int64, error)

	// CountActiveByPrincipal counts a principal's sessions valid at now.
	CountActiveByPrincipal(ctx context.Context, principalID ulid.ULID, now time.Time) (int64, error)
}
