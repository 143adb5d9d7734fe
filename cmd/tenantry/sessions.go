// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tenantry Contributors

package main

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/tenantry/tenantry/internal/auth"
)

func newSessionsCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Administer sessions",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "sweep",
		Short: "Delete expired sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSessions(cmd, deps, func(ctx context.Context, m *auth.SessionManager) error {
				n, err := m.Sweep(ctx)
				if err != nil {
					//nolint:wrapcheck // public auth error
					return err
				}
				cmd.Printf("Deleted %d expired session(s)\n", n)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "revoke PRINCIPAL_ID",
		Short: "Sign a principal out everywhere",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePrincipalID(args[0])
			if err != nil {
				return err
			}
			return withSessions(cmd, deps, func(ctx context.Context, m *auth.SessionManager) error {
				n, err := m.RevokeAll(ctx, id)
				if err != nil {
					//nolint:wrapcheck // public auth error
					return err
				}
				cmd.Printf("Revoked %d session(s) for %s\n", n, id)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "count PRINCIPAL_ID",
		Short: "Count a principal's active sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePrincipalID(args[0])
			if err != nil {
				return err
			}
			return withSessions(cmd, deps, func(ctx context.Context, m *auth.SessionManager) error {
				n, err := m.ActiveCount(ctx, id)
				if err != nil {
					//nolint:wrapcheck // public auth error
					return err
				}
				cmd.Printf("%d\n", n)
				return nil
			})
		},
	})

	return cmd
}

func parsePrincipalID(s string) (ulid.ULID, error) {
	id, err := ulid.Parse(s)
	if err != nil {
		return ulid.ULID{}, oops.Code("INVALID_PRINCIPAL_ID").With("principal_id", s).Wrap(err)
	}
	return id, nil
}

// withSessions connects to the database and runs fn with a session manager.
func withSessions(cmd *cobra.Command, deps *Deps, fn func(context.Context, *auth.SessionManager) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := setupLogging(cfg)
	if err != nil {
		return err
	}

	pool, err := openPool(ctx, deps, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	m, err := auth.NewSessionManagerWithLogger(authStore(pool, cfg).Sessions, cfg.AuthOptions(), logger)
	if err != nil {
		//nolint:wrapcheck // already coded
		return err
	}
	return fn(ctx, m)
}
