// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Compass Contributors

package postgres

import (
	"context"

	"github.com/samber/oops"

	"github.com/compasshq/compass/internal/auth"
)

// Transactor implements auth.Transactor on a pgx connection pool. It
// stores the active pgx.Tx in context so repository calls made inside
// the callback participate in the same transaction.
type Transactor struct {
	db DB
}

// NewTransactor creates a Transactor backed by the given pool.
func NewTransactor(db DB) *Transactor {
	return &Transactor{db: db}
}

// InTransaction begins a transaction, stores it in context, and calls
// fn. A nil return commits; anything else rolls back.
func (t *Transactor) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := t.db.Begin(ctx)
	if err != nil {
		return oops.Code("TX_BEGIN_FAILED").Wrap(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err := fn(txCtx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return oops.Code("TX_COMMIT_FAILED").Wrap(err)
	}
	return nil
}

// Compile-time interface check.
var _ auth.Transactor = (*Transactor)(nil)
