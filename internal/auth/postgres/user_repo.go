// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Compass Contributors

package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/compasshq/compass/internal/auth"
)

// UserRepository implements auth.UserRepository using PostgreSQL.
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

// Lookup returns every user matching the filter with its owned-entity
// graph fully loaded. Filters are ANDed; the contact row is always
// joined so username filtering and graph loading share one query.
func (r *UserRepository) Lookup(ctx context.Context, filter auth.LookupFilter) ([]auth.UserRecord, error) {
	query := strings.Builder{}
	query.WriteString(`
		SELECT u.id, u.role, u.status, u.is_active, u.hashed_password, u.created_at, u.updated_on,
		       c.owner_id, c.username, c.first_name, c.last_name, c.phone_number, c.created_at, c.updated_on
		FROM users u
		JOIN user_contacts c ON c.owner_id = u.id`)

	var args []any
	var conds []string
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Username != "" {
		conds = append(conds, "c.username = "+arg(filter.Username))
	}
	if filter.HashedPassword != nil {
		conds = append(conds, "u.hashed_password = "+arg(filter.HashedPassword))
	}
	if filter.UserID != "" {
		conds = append(conds, "u.id = "+arg(filter.UserID))
	}
	if filter.SessionID != nil {
		conds = append(conds, "EXISTS (SELECT 1 FROM user_sessions s WHERE s.owner_id = u.id AND s.id = "+arg(filter.SessionID)+")")
	}
	if len(conds) > 0 {
		query.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	query.WriteString(" ORDER BY u.id")

	q := engine(ctx, r.db)
	rows, err := q.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, oops.Code("USER_LOOKUP_FAILED").
			With("operation", "lookup users").
			Wrap(err)
	}
	defer rows.Close()

	var users []auth.UserRecord
	for rows.Next() {
		var rec auth.UserRecord
		if err := rows.Scan(
			&rec.ID, &rec.Role, &rec.Status, &rec.IsActive, &rec.HashedPassword, &rec.CreatedAt, &rec.UpdatedOn,
			&rec.Contact.OwnerID, &rec.Contact.Username, &rec.Contact.FirstName, &rec.Contact.LastName,
			&rec.Contact.PhoneNumber, &rec.Contact.CreatedAt, &rec.Contact.UpdatedOn,
		); err != nil {
			return nil, oops.Code("USER_SCAN_FAILED").
				With("operation", "scan user row").
				Wrap(err)
		}
		users = append(users, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("USER_ROWS_ERROR").
			With("operation", "iterate user rows").
			Wrap(err)
	}

	for i := range users {
		if err := r.loadOwned(ctx, &users[i]); err != nil {
			return nil, err
		}
	}
	return users, nil
}

// loadOwned fills in the user's sessions, contact emails, and tickets.
func (r *UserRepository) loadOwned(ctx context.Context, rec *auth.UserRecord) error {
	q := engine(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, owner_id, ipaddress, invalid_on, created_at, updated_on
		FROM user_sessions WHERE owner_id = $1 ORDER BY created_at
	`, rec.ID)
	if err != nil {
		return oops.Code("USER_LOAD_SESSIONS_FAILED").With("user_id", rec.ID).Wrap(err)
	}
	for rows.Next() {
		var s auth.SessionRecord
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.IPAddress, &s.InvalidOn, &s.CreatedAt, &s.UpdatedOn); err != nil {
			rows.Close()
			return oops.Code("USER_SCAN_FAILED").With("operation", "scan user_session row").Wrap(err)
		}
		rec.Sessions = append(rec.Sessions, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return oops.Code("USER_ROWS_ERROR").With("operation", "iterate user_session rows").Wrap(err)
	}

	rows, err = q.Query(ctx, `
		SELECT id, owner_id, contact_id, value, created_at, updated_on
		FROM user_email_addresses WHERE owner_id = $1 ORDER BY created_at
	`, rec.ID)
	if err != nil {
		return oops.Code("USER_LOAD_EMAILS_FAILED").With("user_id", rec.ID).Wrap(err)
	}
	for rows.Next() {
		var e auth.EmailRecord
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.ContactID, &e.Value, &e.CreatedAt, &e.UpdatedOn); err != nil {
			rows.Close()
			return oops.Code("USER_SCAN_FAILED").With("operation", "scan user_email row").Wrap(err)
		}
		rec.Contact.Emails = append(rec.Contact.Emails, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return oops.Code("USER_ROWS_ERROR").With("operation", "iterate user_email rows").Wrap(err)
	}

	rows, err = q.Query(ctx, `
		SELECT id, owner_id, short_description, long_description, created_at, updated_on
		FROM service_tickets WHERE owner_id = $1 ORDER BY created_at
	`, rec.ID)
	if err != nil {
		return oops.Code("USER_LOAD_TICKETS_FAILED").With("user_id", rec.ID).Wrap(err)
	}
	for rows.Next() {
		var t auth.TicketRecord
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.ShortDescription, &t.LongDescription, &t.CreatedAt, &t.UpdatedOn); err != nil {
			rows.Close()
			return oops.Code("USER_SCAN_FAILED").With("operation", "scan service_ticket row").Wrap(err)
		}
		rec.Tickets = append(rec.Tickets, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return oops.Code("USER_ROWS_ERROR").With("operation", "iterate service_ticket rows").Wrap(err)
	}

	return nil
}

// Create stores a new user graph: the user row, its contact, and any
// contact emails. A duplicate id or username is reported as
// auth.ErrConflict.
func (r *UserRepository) Create(ctx context.Context, rec auth.UserRecord) error {
	q := engine(ctx, r.db)

	_, err := q.Exec(ctx, `
		INSERT INTO users (id, role, status, is_active, hashed_password, created_at, updated_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, rec.ID, rec.Role, rec.Status, rec.IsActive, rec.HashedPassword, rec.CreatedAt, rec.UpdatedOn)
	if err != nil {
		return wrapUserWrite(err, "insert user", rec.ID)
	}

	_, err = q.Exec(ctx, `
		INSERT INTO user_contacts (owner_id, username, first_name, last_name, phone_number, created_at, updated_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, rec.Contact.OwnerID, rec.Contact.Username, rec.Contact.FirstName, rec.Contact.LastName,
		rec.Contact.PhoneNumber, rec.Contact.CreatedAt, rec.Contact.UpdatedOn)
	if err != nil {
		return wrapUserWrite(err, "insert user_contact", rec.ID)
	}

	for _, e := range rec.Contact.Emails {
		_, err = q.Exec(ctx, `
			INSERT INTO user_email_addresses (id, owner_id, contact_id, value, created_at, updated_on)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, e.ID, e.OwnerID, e.ContactID, e.Value, e.CreatedAt, e.UpdatedOn)
		if err != nil {
			return wrapUserWrite(err, "insert user_email_address", rec.ID)
		}
	}
	return nil
}

// Touch bumps the user's updated_on timestamp.
func (r *UserRepository) Touch(ctx context.Context, id string, at time.Time) error {
	result, err := engine(ctx, r.db).Exec(ctx, `
		UPDATE users SET updated_on = $2 WHERE id = $1
	`, id, at)
	if err != nil {
		return oops.Code("USER_TOUCH_FAILED").
			With("operation", "update users.updated_on").
			With("user_id", id).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("user_id", id).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

func wrapUserWrite(err error, operation, userID string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return oops.Code("USER_ALREADY_EXISTS").
			With("operation", operation).
			With("user_id", userID).
			Wrap(auth.ErrConflict)
	}
	return oops.Code("USER_WRITE_FAILED").
		With("operation", operation).
		With("user_id", userID).
		Wrap(err)
}

// Compile-time interface check.
var _ auth.UserRepository = (*UserRepository)(nil)
