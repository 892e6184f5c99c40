// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Compass Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/compasshq/compass/internal/auth"
)

// SessionRepository implements auth.SessionRepository using PostgreSQL.
type SessionRepository struct {
	db DB
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Insert stores a new session. A primary-key collision on the token is
// reported as auth.ErrConflict so the service can regenerate.
func (r *SessionRepository) Insert(ctx context.Context, rec auth.SessionRecord) error {
	_, err := engine(ctx, r.db).Exec(ctx, `
		INSERT INTO user_sessions (id, owner_id, ipaddress, invalid_on, created_at, updated_on)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		rec.ID,
		rec.OwnerID,
		rec.IPAddress,
		rec.InvalidOn,
		rec.CreatedAt,
		rec.UpdatedOn,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("SESSION_ID_COLLISION").
				With("owner_id", rec.OwnerID).
				Wrap(auth.ErrConflict)
		}
		return oops.Code("SESSION_INSERT_FAILED").
			With("operation", "insert user_session").
			With("owner_id", rec.OwnerID).
			Wrap(err)
	}
	return nil
}

// ListByOwner returns the owner's sessions. When sessionID is non-nil
// the scan is narrowed to that id and clientIP.
func (r *SessionRepository) ListByOwner(ctx context.Context, ownerID string, sessionID []byte, clientIP string) ([]auth.SessionRecord, error) {
	query := `
		SELECT id, owner_id, ipaddress, invalid_on, created_at, updated_on
		FROM user_sessions
		WHERE owner_id = $1`
	args := []any{ownerID}

	if sessionID != nil {
		query += ` AND id = $2 AND ipaddress = $3`
		args = append(args, sessionID, clientIP)
	}
	query += ` ORDER BY created_at`

	rows, err := engine(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, oops.Code("SESSION_LIST_FAILED").
			With("operation", "list sessions by owner").
			With("owner_id", ownerID).
			Wrap(err)
	}
	defer rows.Close()

	var sessions []auth.SessionRecord
	for rows.Next() {
		var rec auth.SessionRecord
		if err := rows.Scan(&rec.ID, &rec.OwnerID, &rec.IPAddress, &rec.InvalidOn, &rec.CreatedAt, &rec.UpdatedOn); err != nil {
			return nil, oops.Code("SESSION_SCAN_FAILED").
				With("operation", "scan user_session row").
				Wrap(err)
		}
		sessions = append(sessions, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("SESSION_ROWS_ERROR").
			With("operation", "iterate user_session rows").
			Wrap(err)
	}
	return sessions, nil
}

// Delete removes a session by id. Deleting a session that is already
// gone succeeds: the expiry sweep is idempotent by design.
func (r *SessionRepository) Delete(ctx context.Context, id []byte) error {
	_, err := engine(ctx, r.db).Exec(ctx, `DELETE FROM user_sessions WHERE id = $1`, id)
	if err != nil {
		return oops.Code("SESSION_DELETE_FAILED").
			With("operation", "delete user_session").
			Wrap(err)
	}
	return nil
}

// Compile-time interface check.
var _ auth.SessionRepository = (*SessionRepository)(nil)
