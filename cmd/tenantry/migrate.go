// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tenantry Contributors

package main

import (
	"strconv"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

func newMigrateCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
		Long:  `Apply, roll back or inspect the schema migrations. Without a subcommand all pending migrations are applied.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrateUp(cmd, deps)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrateUp(cmd, deps)
		},
	})
	cmd.AddCommand(newMigrateDownCmd(deps))
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrateStatus(cmd, deps)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "force VERSION",
		Short: "Set the schema version without running migrations (clears the dirty flag)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrateForce(cmd, deps, args[0])
		},
	})

	return cmd
}

func newMigrateDownCmd(deps *Deps) *cobra.Command {
	var (
		steps int
		all   bool
	)
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations (one step by default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, deps, func(m MigrationRunner) error {
				if all {
					cmd.Println("Rolling back all migrations...")
					return m.Down()
				}
				if steps < 1 {
					return oops.Code("INVALID_STEPS").With("steps", steps).Errorf("--steps must be at least 1")
				}
				cmd.Printf("Rolling back %d migration(s)...\n", steps)
				return m.Steps(-steps)
			})
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	cmd.Flags().BoolVar(&all, "all", false, "roll back every migration")
	return cmd
}

func runMigrateUp(cmd *cobra.Command, deps *Deps) error {
	return withMigrator(cmd, deps, func(m MigrationRunner) error {
		cmd.Println("Running migrations...")
		if err := m.Up(); err != nil {
			//nolint:wrapcheck // already coded
			return err
		}
		cmd.Println("Migrations completed successfully")
		return nil
	})
}

func runMigrateStatus(cmd *cobra.Command, deps *Deps) error {
	return withMigrator(cmd, deps, func(m MigrationRunner) error {
		st, err := m.Status()
		if err != nil {
			//nolint:wrapcheck // already coded
			return err
		}
		state := "clean"
		if st.Dirty {
			state = "dirty"
		}
		cmd.Printf("Current version: %d (%s)\n", st.Current, state)
		for _, mig := range st.Applied {
			cmd.Printf("  [applied] %06d_%s\n", mig.Version, mig.Name)
		}
		for _, mig := range st.Pending {
			cmd.Printf("  [pending] %06d_%s\n", mig.Version, mig.Name)
		}
		return nil
	})
}

func runMigrateForce(cmd *cobra.Command, deps *Deps, arg string) error {
	version, err := strconv.Atoi(arg)
	if err != nil {
		return oops.Code("INVALID_VERSION").With("version", arg).Wrap(err)
	}
	return withMigrator(cmd, deps, func(m MigrationRunner) error {
		if err := m.Force(version); err != nil {
			//nolint:wrapcheck // already coded
			return err
		}
		cmd.Printf("Schema version forced to %d\n", version)
		return nil
	})
}

// withMigrator loads the configuration, opens a migrator and closes it after fn.
func withMigrator(cmd *cobra.Command, deps *Deps, fn func(MigrationRunner) error) (err error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.RequireDatabase(); err != nil {
		//nolint:wrapcheck // already coded
		return err
	}

	m, err := deps.MigratorFactory(cfg.Database.URL)
	if err != nil {
		//nolint:wrapcheck // already coded
		return err
	}
	defer func() {
		if closeErr := m.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return fn(m)
}

// applyMigrations runs every pending migration, for serve --auto-migrate.
func applyMigrations(cmd *cobra.Command, deps *Deps, databaseURL string) (err error) {
	m, err := deps.MigratorFactory(databaseURL)
	if err != nil {
		return oops.Code("AUTO_MIGRATE_FAILED").Wrap(err)
	}
	defer func() {
		if closeErr := m.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	st, err := m.Status()
	if err != nil {
		return oops.Code("AUTO_MIGRATE_FAILED").Wrap(err)
	}
	if len(st.Pending) == 0 {
		return nil
	}
	cmd.Printf("Applying %d pending migration(s)...\n", len(st.Pending))
	if err := m.Up(); err != nil {
		return oops.Code("AUTO_MIGRATE_FAILED").Wrap(err)
	}
	return nil
}
