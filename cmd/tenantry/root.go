// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tenantry Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/tenantry/tenantry/internal/config"
	"github.com/tenantry/tenantry/internal/xdg"
)

// serviceName labels every log record.
const serviceName = "tenantry"

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the tenantry CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(nil)
}

func newRootCmd(deps *Deps) *cobra.Command {
	deps = deps.withDefaults()

	cmd := &cobra.Command{
		Use:   "tenantry",
		Short: "Tenantry - multi-tenant identity and sessions",
		Long: `Tenantry provisions tenants with their first administrator, signs
principals in and out, and tracks their sessions.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file path (default: $XDG_CONFIG_HOME/tenantry/config.yaml when present)")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(newServeCmd(deps))
	cmd.AddCommand(newMigrateCmd(deps))
	cmd.AddCommand(newSessionsCmd(deps))
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newStatusCmd(deps))

	return cmd
}

// loadConfig resolves the config file and merges it with the environment and
// the flags set on cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := configFile
	if path == "" {
		found, err := xdg.DefaultConfigFile()
		if err != nil {
			return nil, err
		}
		path = found
	}
	//nolint:wrapcheck // config errors already carry codes
	return config.Load(path, cmd.Flags())
}
