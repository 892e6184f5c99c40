// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Compass Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/compasshq/compass/internal/config"
	"github.com/compasshq/compass/internal/store"
)

// newMigrateCmd creates the migrate subcommand.
func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Run all pending database migrations against the PostgreSQL database.`,
		RunE:  runMigrate,
	}

	cmd.Flags().String("database.url", "", "PostgreSQL connection URL")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database.url is required")
	}

	cmd.Println("Running migrations...")
	migrator, err := store.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		//nolint:errcheck // close error is not actionable after migration result
		migrator.Close()
	}()

	if err := migrator.Up(); err != nil {
		return err
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		return err
	}

	cmd.Printf("Migrations completed successfully (version %d, dirty=%t)\n", version, dirty)
	return nil
}
