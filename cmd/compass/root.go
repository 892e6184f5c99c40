package main

import (
	"github.com/spf13/cobra"

	"github.com/compasshq/compass/internal/config"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the Compass CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compass",
		Short: "Compass - user authentication and session service",
		Long: `Compass issues bearer tokens for verified credentials, tracks
session lifecycles, and resolves tokens back to user identities.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if configFile == "" {
				configFile = config.DefaultPath()
			}
		},
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newSeedCmd())

	return cmd
}
