// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Compass Contributors

// Package store provides the PostgreSQL connection pool and schema
// management for Compass.
package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
)

// Store owns the database connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// Connect opens a connection pool against the given DSN and verifies it
// with a ping.
func Connect(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").
			With("operation", "create connection pool").
			Wrap(err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, oops.Code("DB_PING_FAILED").
			With("operation", "ping database").
			Wrap(err)
	}
	return &Store{pool: pool}, nil
}

// Pool exposes the underlying pool for repository construction.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Close closes the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}
