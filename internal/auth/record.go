// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Compass Contributors

package auth

import (
	"context"
	"time"
)

// Storage-shaped records mirror the persistence rows: identifiers are the
// string form the store keeps, enums are plain strings, and the session id
// is the raw token bytes. The translator in translate.go converts between
// these and the wire types.

// UserRecord is the persistence representation of a User and its owned
// entity graph.
type UserRecord struct {
	ID             string
	Role           string
	Status         string
	IsActive       bool
	HashedPassword []byte
	Contact        ContactRecord
	Sessions       []SessionRecord
	Tickets        []TicketRecord
	CreatedAt      time.Time
	UpdatedOn      time.Time
}

// ContactRecord is the persistence representation of a Contact.
type ContactRecord struct {
	OwnerID     string
	Username    string
	FirstName   string
	LastName    string
	PhoneNumber string
	Emails      []EmailRecord
	CreatedAt   time.Time
	UpdatedOn   time.Time
}

// EmailRecord is the persistence representation of an Email.
type EmailRecord struct {
	ID        string
	OwnerID   string
	ContactID string
	Value     string
	CreatedAt time.Time
	UpdatedOn time.Time
}

// SessionRecord is the persistence representation of a Session.
type SessionRecord struct {
	ID        []byte
	OwnerID   string
	IPAddress string
	InvalidOn time.Time
	CreatedAt time.Time
	UpdatedOn time.Time
}

// TicketRecord is the persistence representation of a Ticket.
type TicketRecord struct {
	ID               string
	OwnerID          string
	ShortDescription string
	LongDescription  string
	CreatedAt        time.Time
	UpdatedOn        time.Time
}

// LookupFilter narrows a user lookup. Zero-valued fields are ignored;
// set fields are ANDed together.
type LookupFilter struct {
	Username       string
	HashedPassword []byte
	UserID         string
	SessionID      []byte
}

// UserRepository is the persistence gateway for users and their owned
// entity graphs.
type UserRepository interface {
	// Lookup returns every user matching the filter, each with its full
	// owned-entity graph loaded.
	Lookup(ctx context.Context, filter LookupFilter) ([]UserRecord, error)

	// Create stores a new user graph (user row, contact, emails).
	Create(ctx context.Context, rec UserRecord) error

	// Touch bumps the user's updated_on timestamp.
	Touch(ctx context.Context, id string, at time.Time) error
}

// SessionRepository is the persistence gateway for sessions.
type SessionRepository interface {
	// Insert stores a new session. Returns an error wrapping ErrConflict
	// when the session id collides with an existing one.
	Insert(ctx context.Context, rec SessionRecord) error

	// ListByOwner returns all sessions belonging to ownerID. When
	// sessionID is non-nil the scan is scoped to that id and clientIP.
	ListByOwner(ctx context.Context, ownerID string, sessionID []byte, clientIP string) ([]SessionRecord, error)

	// Delete removes a session by id. Deleting an already-deleted
	// session is a no-op, not an error.
	Delete(ctx context.Context, id []byte) error
}

// Transactor runs a function inside a single storage transaction.
// Repository calls made with the context it passes to fn participate in
// that transaction.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// AuditSink receives best-effort audit events from the engine. Sinks
// must not fail the calling operation.
type AuditSink interface {
	Record(ctx context.Context, kind, actorID string, detail map[string]any)
}
