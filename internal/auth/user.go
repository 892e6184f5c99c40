// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Compass Contributors

package auth

import (
	"time"

	"github.com/google/uuid"
)

// Role classifies what a user is allowed to do.
type Role string

// User roles.
const (
	RoleAuthorized    Role = "authorized"
	RoleAdministrator Role = "administrator"
	RoleService       Role = "service"
)

// Status is the lifecycle state of a user account.
type Status string

// User statuses.
const (
	StatusDisabled   Status = "disabled"
	StatusUnverified Status = "unverified"
	StatusBlocked    Status = "blocked"
	StatusEnabled    Status = "enabled"
)

// User is the wire-shaped identity record, the root of the owned-entity
// graph. The id is immutable after creation.
type User struct {
	ID             uuid.UUID `json:"id"`
	Role           Role      `json:"role"`
	Status         Status    `json:"status"`
	IsActive       bool      `json:"is_active"`
	HashedPassword []byte    `json:"hashed_password"`
	Contact        Contact   `json:"user_contacts"`
	Sessions       []Session `json:"user_sessions"`
	Tickets        []Ticket  `json:"service_tickets"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedOn      time.Time `json:"updated_on"`
}

// Contact is the profile owned 1:1 by a user.
type Contact struct {
	OwnerID     uuid.UUID `json:"owner_id"`
	Username    string    `json:"username"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	PhoneNumber string    `json:"phone_number"`
	Emails      []Email   `json:"user_email_addresses"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedOn   time.Time `json:"updated_on"`
}

// Email is one address on a contact.
type Email struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	ContactID uuid.UUID `json:"contact_id"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedOn time.Time `json:"updated_on"`
}

// Ticket is a service ticket owned by a user. Compass carries tickets
// only as owned rows so that translation and cascade deletion stay
// faithful; there are no ticket operations.
type Ticket struct {
	ID               uuid.UUID `json:"id"`
	OwnerID          uuid.UUID `json:"owner_id"`
	ShortDescription string    `json:"short_description"`
	LongDescription  string    `json:"long_description"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedOn        time.Time `json:"updated_on"`
}
