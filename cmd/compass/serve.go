// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Compass Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/compasshq/compass/internal/audit"
	"github.com/compasshq/compass/internal/auth"
	authpg "github.com/compasshq/compass/internal/auth/postgres"
	"github.com/compasshq/compass/internal/config"
	"github.com/compasshq/compass/internal/httpapi"
	"github.com/compasshq/compass/internal/logging"
	"github.com/compasshq/compass/internal/observability"
	"github.com/compasshq/compass/internal/store"
)

const shutdownTimeout = 5 * time.Second

// newServeCmd creates the serve subcommand. Flag names mirror config
// keys so the flag layer and the file/env layers address the same
// settings.
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the authentication API server",
		Long: `Start the HTTP API that exchanges credentials for bearer tokens
and resolves tokens back to users, plus the metrics/health endpoint.`,
		RunE: runServe,
	}

	cmd.Flags().String("server.listen", config.DefaultListenAddr, "API listen address")
	cmd.Flags().String("server.metrics", config.DefaultMetricsAddr, "metrics/health HTTP address")
	cmd.Flags().String("log_format", config.DefaultLogFormat, "log format (json or text)")
	cmd.Flags().String("database.url", "", "PostgreSQL connection URL")
	cmd.Flags().Duration("session.ttl", config.DefaultSessionTTL, "session validity window")
	cmd.Flags().Int("session.max_sessions", config.DefaultMaxSessions, "maximum concurrent sessions per user")
	cmd.Flags().Bool("dev_mode", false, "enable development mode")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database.url is required")
	}

	logging.SetDefault("compass", version, cfg.LogFormat)
	logger := slog.Default()

	logger.Info("starting compass",
		"listen", cfg.ListenAddr,
		"metrics", cfg.MetricsAddr,
		"session_ttl", cfg.SessionTTL.String(),
		"max_sessions", cfg.MaxSessions,
	)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	db, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	pool := db.Pool()

	users := authpg.NewUserRepository(pool)
	sessions := authpg.NewSessionRepository(pool)
	tx := authpg.NewTransactor(pool)
	recorder := audit.NewRecorder(audit.NewPostgresEventRepository(pool), logger)

	service, err := auth.NewService(users, sessions, tx, logger,
		auth.WithSessionTTL(cfg.SessionTTL),
		auth.WithMaxSessions(cfg.MaxSessions),
		auth.WithAuditSink(recorder),
	)
	if err != nil {
		return err
	}

	resolver, err := auth.NewResolver(users, logger)
	if err != nil {
		return err
	}

	api, err := httpapi.NewServer(cfg.ListenAddr, service, resolver, logger)
	if err != nil {
		return err
	}

	apiErrCh, err := api.Start()
	if err != nil {
		return err
	}

	obs := observability.NewServer(cfg.MetricsAddr, func() bool {
		pingCtx, pingCancel := context.WithTimeout(ctx, time.Second)
		defer pingCancel()
		return pool.Ping(pingCtx) == nil
	})
	obsErrCh, err := obs.Start()
	if err != nil {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer stopCancel()
		_ = api.Stop(stopCtx)
		return err
	}

	cmd.Println("Compass started")
	logger.Info("compass ready",
		"api_addr", api.Addr(),
		"metrics_addr", obs.Addr(),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-apiErrCh:
		if err != nil {
			logger.Error("api server failed", "error", err)
		}
	case err := <-obsErrCh:
		if err != nil {
			logger.Error("observability server failed", "error", err)
		}
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	}

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := api.Stop(shutdownCtx); err != nil {
		logger.Warn("error stopping api server", "error", err)
	}
	if err := obs.Stop(shutdownCtx); err != nil {
		logger.Warn("error stopping observability server", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}
