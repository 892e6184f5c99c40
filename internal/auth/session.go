// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Compass Contributors

package auth

import (
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTTL is how long a session stays valid unless configured
// otherwise.
const DefaultSessionTTL = 30 * time.Minute

// DefaultMaxSessions is the default per-user cap on simultaneously
// active sessions.
const DefaultMaxSessions = 5

// Session is an ephemeral bearer credential. The id is the token itself.
// Sessions are never mutated after creation; expiry is detected lazily
// and expired rows are deleted, not updated.
type Session struct {
	ID        []byte    `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	IPAddress string    `json:"ipaddress"`
	InvalidOn time.Time `json:"invalid_on"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedOn time.Time `json:"updated_on"`
}

// IsExpiredAt reports whether the session is no longer valid at t.
// A session is ACTIVE while created_at <= t < invalid_on.
func (s *Session) IsExpiredAt(t time.Time) bool {
	return !t.Before(s.InvalidOn)
}
