// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Compass Contributors

package audit

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"
)

// execer is the single pool method the repository needs; pgxmock
// satisfies it.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresEventRepository implements EventRepository using PostgreSQL.
type PostgresEventRepository struct {
	db execer
}

// NewPostgresEventRepository creates a new PostgresEventRepository.
func NewPostgresEventRepository(db execer) *PostgresEventRepository {
	return &PostgresEventRepository{db: db}
}

// Append inserts one audit event.
func (r *PostgresEventRepository) Append(ctx context.Context, event Event) error {
	detail := event.Detail
	if detail == nil {
		detail = map[string]any{}
	}
	payload, err := json.Marshal(detail)
	if err != nil {
		return oops.Code("AUDIT_ENCODE_FAILED").
			With("kind", event.Kind).
			Wrap(err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO audit_events (id, kind, actor_id, detail, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`,
		event.ID.String(),
		event.Kind,
		event.ActorID,
		payload,
		event.CreatedAt,
	)
	if err != nil {
		return oops.Code("AUDIT_APPEND_FAILED").
			With("operation", "insert audit_event").
			With("kind", event.Kind).
			Wrap(err)
	}
	return nil
}

// Compile-time interface check.
var _ EventRepository = (*PostgresEventRepository)(nil)
