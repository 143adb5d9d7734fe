// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tenantry Contributors

package auth

import (
	"context"
	"time"

	"github.com/samber/oops"
)

// Transactor runs fn inside one atomic unit of work. Repositories called with
// the context passed to fn participate in the same transaction. If fn returns
// an error nothing is committed.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Store groups the persistence dependencies of the auth services.
type Store struct {
	Tx         Transactor
	Tenants    TenantRepository
	Principals PrincipalRepository
	Sessions   SessionRepository
}

func (s Store) validate() error {
	switch {
	case s.Tx == nil:
		return oops.Code("AUTH_INVALID_STORE").Errorf("transactor is required")
	case s.Tenants == nil:
		return oops.Code("AUTH_INVALID_STORE").Errorf("tenants repository is required")
	case s.Principals == nil:
		return oops.Code("AUTH_INVALID_STORE").Errorf("principals repository is required")
	case s.Sessions == nil:
		return oops.Code("AUTH_INVALID_STORE").Errorf("sessions repository is required")
	}
	return nil
}

// Options tunes the auth services. Zero values select the defaults.
type Options struct {
	SessionTTL    time.Duration
	AvatarBaseURL string

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
}

func (o Options) withDefaults() Options {
	if o.SessionTTL <= 0 {
		o.SessionTTL = DefaultSessionTTL
	}
	if o.AvatarBaseURL == "" {
		o.AvatarBaseURL = DefaultAvatarBaseURL
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	return o
}
