// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tenantry Contributors

package auth_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/tenantry/tenantry/internal/auth"
)

// memStore is an in-memory Account Store. Units of work are serialized and
// rolled back by restoring a snapshot.
type memStore struct {
	mu         sync.Mutex
	tenants    map[ulid.ULID]auth.Tenant
	principals map[ulid.ULID]auth.Principal
	sessions   map[string]auth.Session

	// failSessionCreate, when set, is returned by session inserts.
	failSessionCreate error
}

type memTxKey struct{}

func newMemStore() *memStore {
	return &memStore{
		tenants:    make(map[ulid.ULID]auth.Tenant),
		principals: make(map[ulid.ULID]auth.Principal),
		sessions:   make(map[string]auth.Session),
	}
}

func (m *memStore) store() auth.Store {
	return auth.Store{
		Tx:         m,
		Tenants:    memTenants{m},
		Principals: memPrincipals{m},
		Sessions:   memSessions{m},
	}
}

func (m *memStore) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memTxKey{}) != nil {
		return fn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	tenants := cloneMap(m.tenants)
	principals := cloneMap(m.principals)
	sessions := cloneMap(m.sessions)

	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		m.tenants, m.principals, m.sessions = tenants, principals, sessions
		return err
	}
	return nil
}

func (m *memStore) lock(ctx context.Context) func() {
	if ctx.Value(memTxKey{}) != nil {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

func (m *memStore) counts() (tenants, principals, sessions int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tenants), len(m.principals), len(m.sessions)
}

func cloneMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

type memTenants struct{ m *memStore }

func (r memTenants) Create(ctx context.Context, t *auth.Tenant) error {
	defer r.m.lock(ctx)()
	for _, existing := range r.m.tenants {
		if existing.Handle == t.Handle {
			return auth.ErrHandleTaken
		}
	}
	r.m.tenants[t.ID] = *t
	return nil
}

func (r memTenants) GetByID(ctx context.Context, id ulid.ULID) (*auth.Tenant, error) {
	defer r.m.lock(ctx)()
	t, ok := r.m.tenants[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	return &t, nil
}

func (r memTenants) HandleExists(ctx context.Context, handle string) (bool, error) {
	defer r.m.lock(ctx)()
	for _, t := range r.m.tenants {
		if t.Handle == handle {
			return true, nil
		}
	}
	return false, nil
}

type memPrincipals struct{ m *memStore }

func (r memPrincipals) Create(ctx context.Context, p *auth.Principal) error {
	defer r.m.lock(ctx)()
	for _, existing := range r.m.principals {
		if strings.EqualFold(existing.Email, p.Email) {
			return auth.ErrEmailTaken
		}
	}
	r.m.principals[p.ID] = *p
	return nil
}

func (r memPrincipals) GetByID(ctx context.Context, id ulid.ULID) (*auth.Principal, error) {
	defer r.m.lock(ctx)()
	p, ok := r.m.principals[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	return &p, nil
}

func (r memPrincipals) GetAccountByEmail(ctx context.Context, email string) (*auth.Account, error) {
	defer r.m.lock(ctx)()
	for _, p := range r.m.principals {
		if strings.EqualFold(p.Email, email) {
			t := r.m.tenants[p.TenantID]
			return &auth.Account{Principal: &p, Tenant: &t}, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (r memPrincipals) EmailExists(ctx context.Context, email string) (bool, error) {
	defer r.m.lock(ctx)()
	for _, p := range r.m.principals {
		if strings.EqualFold(p.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

type memSessions struct{ m *memStore }

func (r memSessions) Create(ctx context.Context, s *auth.Session) error {
	defer r.m.lock(ctx)()
	if r.m.failSessionCreate != nil {
		return r.m.failSessionCreate
	}
	if _, ok := r.m.sessions[s.TokenHash]; ok {
		return auth.ErrConflict
	}
	r.m.sessions[s.TokenHash] = *s
	return nil
}

func (r memSessions) GetActive(ctx context.Context, tokenHash string, now time.Time) (*auth.Session, error) {
	defer r.m.lock(ctx)()
	s, ok := r.m.sessions[tokenHash]
	if !ok || s.IsExpiredAt(now) {
		return nil, auth.ErrNotFound
	}
	return &s, nil
}

func (r memSessions) Delete(ctx context.Context, tokenHash string) error {
	defer r.m.lock(ctx)()
	delete(r.m.sessions, tokenHash)
	return nil
}

func (r memSessions) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	defer r.m.lock(ctx)()
	var n int64
	for k, s := range r.m.sessions {
		if s.IsExpiredAt(now) {
			delete(r.m.sessions, k)
			n++
		}
	}
	return n, nil
}

func (r memSessions) DeleteByPrincipal(ctx context.Context, principalID ulid.ULID) (int64, error) {
	defer r.m.lock(ctx)()
	var n int64
	for k, s := range r.m.sessions {
		if s.PrincipalID == principalID {
			delete(r.m.sessions, k)
			n++
		}
	}
	return n, nil
}

func (r memSessions) CountActiveByPrincipal(ctx context.Context, principalID ulid.ULID, now time.Time) (int64, error) {
	defer r.m.lock(ctx)()
	var n int64
	for _, s := range r.m.sessions {
		if s.PrincipalID == principalID && !s.IsExpiredAt(now) {
			n++
		}
	}
	return n, nil
}

// testClock is a settable clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock { return &testClock{now: fixedNow} }

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
