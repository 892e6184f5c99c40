// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Compass Contributors

package auth_test

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/compasshq/compass/internal/auth"
)

// passthroughTx runs the unit of work directly, with no transaction
// semantics. Repository mocks see the same context the caller passed.
type passthroughTx struct{}

func (passthroughTx) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var fixtureInstant = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

// userFixture builds a fully populated storage record: contact with one
// email, one session, one ticket.
func userFixture(userID uuid.UUID) auth.UserRecord {
	emailID := uuid.MustParse("7d44a2e1-0a77-4d3e-9361-03dbcae10001")
	ticketID := uuid.MustParse("7d44a2e1-0a77-4d3e-9361-03dbcae10002")

	return auth.UserRecord{
		ID:             userID.String(),
		Role:           string(auth.RoleAuthorized),
		Status:         string(auth.StatusEnabled),
		IsActive:       true,
		HashedPassword: []byte{0xde, 0xad, 0xbe, 0xef},
		Contact: auth.ContactRecord{
			OwnerID:     userID.String(),
			Username:    "mallory",
			FirstName:   "Mallory",
			LastName:    "Mapmaker",
			PhoneNumber: "5550100",
			Emails: []auth.EmailRecord{{
				ID:        emailID.String(),
				OwnerID:   userID.String(),
				ContactID: userID.String(),
				Value:     "mallory@example.com",
				CreatedAt: fixtureInstant,
				UpdatedOn: fixtureInstant,
			}},
			CreatedAt: fixtureInstant,
			UpdatedOn: fixtureInstant,
		},
		Sessions: []auth.SessionRecord{{
			ID:        []byte("fixture-session-token"),
			OwnerID:   userID.String(),
			IPAddress: "10.1.2.3",
			InvalidOn: fixtureInstant.Add(30 * time.Minute),
			CreatedAt: fixtureInstant,
			UpdatedOn: fixtureInstant,
		}},
		Tickets: []auth.TicketRecord{{
			ID:               ticketID.String(),
			OwnerID:          userID.String(),
			ShortDescription: "lost compass",
			LongDescription:  "the needle spins and never settles",
			CreatedAt:        fixtureInstant,
			UpdatedOn:        fixtureInstant,
		}},
		CreatedAt: fixtureInstant,
		UpdatedOn: fixtureInstant,
	}
}

// bareUserFixture builds a minimal storage record with no sessions or
// tickets.
func bareUserFixture(userID uuid.UUID, username string, hashed []byte) auth.UserRecord {
	return auth.UserRecord{
		ID:             userID.String(),
		Role:           string(auth.RoleAuthorized),
		Status:         string(auth.StatusEnabled),
		IsActive:       true,
		HashedPassword: hashed,
		Contact: auth.ContactRecord{
			OwnerID:   userID.String(),
			Username:  username,
			CreatedAt: fixtureInstant,
			UpdatedOn: fixtureInstant,
		},
		CreatedAt: fixtureInstant,
		UpdatedOn: fixtureInstant,
	}
}
