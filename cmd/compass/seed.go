// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Compass Contributors

package main

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/compasshq/compass/internal/auth"
	authpg "github.com/compasshq/compass/internal/auth/postgres"
	"github.com/compasshq/compass/internal/config"
	"github.com/compasshq/compass/internal/store"
)

// Default timeout for seed command.
const defaultSeedTimeout = 30 * time.Second

// seedConfig holds configuration for the seed command.
type seedConfig struct {
	timeout  time.Duration
	username string
	password string
	email    string
}

// newSeedCmd creates the seed subcommand.
func newSeedCmd() *cobra.Command {
	cfg := &seedConfig{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed reference data and an administrator account",
		Long: `Applies migrations, inserts the role and status reference rows, and
creates an administrator account.
This command is idempotent - it will not create duplicates if run multiple times.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, args, cfg)
		},
	}

	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultSeedTimeout, "timeout for database operations (e.g., 30s, 1m)")
	cmd.Flags().StringVar(&cfg.username, "username", "admin", "administrator username")
	cmd.Flags().StringVar(&cfg.password, "password", "", "administrator password (required)")
	cmd.Flags().StringVar(&cfg.email, "email", "admin@localhost", "administrator email address")
	cmd.Flags().String("database.url", "", "PostgreSQL connection URL")

	return cmd
}

func runSeed(cmd *cobra.Command, _ []string, seedCfg *seedConfig) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database.url is required")
	}
	if seedCfg.password == "" {
		return oops.Code("CONFIG_INVALID").Errorf("--password is required")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), seedCfg.timeout)
	defer cancel()

	cmd.Println("Running migrations...")
	migrator, err := store.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if err := migrator.Up(); err != nil {
		//nolint:errcheck // migration error takes precedence
		migrator.Close()
		return err
	}
	//nolint:errcheck // close error is not actionable after a successful run
	migrator.Close()

	cmd.Println("Connecting to database...")
	db, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	pool := db.Pool()

	cmd.Println("Seeding reference rows...")
	if err := seedReferenceRows(ctx, pool); err != nil {
		return err
	}

	cmd.Println("Creating administrator account...")
	users := authpg.NewUserRepository(pool)

	now := auth.Now()
	userID := auth.NewIdentifier().String()
	rec := auth.UserRecord{
		ID:             userID,
		Role:           string(auth.RoleAdministrator),
		Status:         string(auth.StatusEnabled),
		IsActive:       true,
		HashedPassword: auth.RotateHash([]byte(seedCfg.password), auth.DefaultHashChain...),
		Contact: auth.ContactRecord{
			OwnerID:  userID,
			Username: seedCfg.username,
			Emails: []auth.EmailRecord{{
				ID:        auth.NewIdentifier().String(),
				OwnerID:   userID,
				ContactID: userID,
				Value:     seedCfg.email,
				CreatedAt: now,
				UpdatedOn: now,
			}},
			CreatedAt: now,
			UpdatedOn: now,
		},
		CreatedAt: now,
		UpdatedOn: now,
	}

	if err := users.Create(ctx, rec); err != nil {
		if errors.Is(err, auth.ErrConflict) {
			cmd.Println("Administrator account already exists, skipping seed")
			return nil
		}
		return err
	}

	cmd.Printf("Administrator account %q created\n", seedCfg.username)
	return nil
}

// seedReferenceRows inserts the role and status enumeration rows. Reruns
// are no-ops via ON CONFLICT DO NOTHING.
func seedReferenceRows(ctx context.Context, pool *pgxpool.Pool) error {
	for _, role := range []auth.Role{auth.RoleAuthorized, auth.RoleAdministrator, auth.RoleService} {
		if _, err := pool.Exec(ctx,
			`INSERT INTO user_role (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`,
			string(role)); err != nil {
			return oops.Code("SEED_FAILED").With("role", string(role)).Wrap(err)
		}
	}
	for _, status := range []auth.Status{auth.StatusDisabled, auth.StatusUnverified, auth.StatusBlocked, auth.StatusEnabled} {
		if _, err := pool.Exec(ctx,
			`INSERT INTO user_status (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`,
			string(status)); err != nil {
			return oops.Code("SEED_FAILED").With("status", string(status)).Wrap(err)
		}
	}
	return nil
}
