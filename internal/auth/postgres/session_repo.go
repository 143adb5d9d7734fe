// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tenantry Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/tenantry/tenantry/internal/auth"
)

// SessionRepository implements auth.SessionRepository using PostgreSQL.
// Sessions are keyed by the SHA256 of their token.
type SessionRepository struct {
	repo
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db DB, opts ...Option) *SessionRepository {
	return &SessionRepository{repo: newRepo(db, opts)}
}

// Create stores a new session with its profile snapshot.
func (r *SessionRepository) Create(ctx context.Context, s *auth.Session) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	p := s.Profile
	_, err := conn(ctx, r.db).Exec(ctx, `
		INSERT INTO sessions (token_hash, principal_id, tenant_id, role, display_name, email,
			avatar_url, bio, theme, handle, tenant_name, issued_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		s.TokenHash,
		s.PrincipalID.String(),
		s.TenantID.String(),
		string(p.Role),
		p.DisplayName,
		p.Email,
		p.AvatarURL,
		p.Bio,
		p.Theme,
		p.WorkspaceHandle,
		p.TenantName,
		s.IssuedAt,
		s.ExpiresAt,
	)
	if err != nil {
		return oops.Code("SESSION_CREATE_FAILED").
			With("operation", "insert session").
			With("principal_id", s.PrincipalID.String()).
			Wrap(classify(err))
	}
	return nil
}

// GetActive retrieves the session with tokenHash that has not expired at now.
func (r *SessionRepository) GetActive(ctx context.Context, tokenHash string, now time.Time) (*auth.Session, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var (
		s                     auth.Session
		principalID, tenantID string
		role                  string
	)
	err := conn(ctx, r.db).QueryRow(ctx, `
		SELECT token_hash, principal_id, tenant_id, role, display_name, email,
			avatar_url, bio, theme, handle, tenant_name, issued_at, expires_at
		FROM sessions
		WHERE token_hash = $1 AND expires_at > $2
	`, tokenHash, now).Scan(
		&s.TokenHash, &principalID, &tenantID, &role, &s.Profile.DisplayName, &s.Profile.Email,
		&s.Profile.AvatarURL, &s.Profile.Bio, &s.Profile.Theme, &s.Profile.WorkspaceHandle,
		&s.Profile.TenantName, &s.IssuedAt, &s.ExpiresAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SESSION_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SESSION_GET_FAILED").
			With("operation", "get active session").
			Wrap(err)
	}

	if s.PrincipalID, err = parseULID(principalID, "principal_id"); err != nil {
		return nil, oops.Code("SESSION_GET_FAILED").Wrap(err)
	}
	if s.TenantID, err = parseULID(tenantID, "tenant_id"); err != nil {
		return nil, oops.Code("SESSION_GET_FAILED").Wrap(err)
	}
	s.Profile.PrincipalID = s.PrincipalID
	s.Profile.TenantID = s.TenantID
	s.Profile.Role = auth.Role(role)
	return &s, nil
}

// Delete removes a session. Deleting an absent session is not an error.
func (r *SessionRepository) Delete(ctx context.Context, tokenHash string) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	_, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM sessions WHERE token_hash = $1`, tokenHash)
	if err != nil {
		return oops.Code("SESSION_DELETE_FAILED").
			With("operation", "delete session").
			Wrap(err)
	}
	return nil
}

// DeleteExpired removes all sessions expired at now.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	result, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, oops.Code("SESSION_DELETE_EXPIRED_FAILED").
			With("operation", "delete expired sessions").
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

// DeleteByPrincipal removes all sessions of a principal.
func (r *SessionRepository) DeleteByPrincipal(ctx context.Context, principalID ulid.ULID) (int64, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	result, err := conn(ctx, r.db).Exec(ctx,
		`DELETE FROM sessions WHERE principal_id = $1`, principalID.String())
	if err != nil {
		return 0, oops.Code("SESSION_DELETE_BY_PRINCIPAL_FAILED").
			With("operation", "delete sessions by principal").
			With("principal_id", principalID.String()).
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

// CountActiveByPrincipal counts a principal's sessions valid at now.
func (r *SessionRepository) CountActiveByPrincipal(ctx context.Context, principalID ulid.ULID, now time.Time) (int64, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var n int64
	err := conn(ctx, r.db).QueryRow(ctx,
		`SELECT COUNT(*) FROM sessions WHERE principal_id = $1 AND expires_at > $2`,
		principalID.String(), now).Scan(&n)
	if err != nil {
		return 0, oops.Code("SESSION_COUNT_FAILED").
			With("operation", "count active sessions").
			With("principal_id", principalID.String()).
			Wrap(err)
	}
	return n, nil
}
