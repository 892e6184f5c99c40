// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Compass Contributors

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compasshq/compass/internal/auth"
)

func userColumns() []string {
	return []string{
		"id", "role", "status", "is_active", "hashed_password", "created_at", "updated_on",
		"owner_id", "username", "first_name", "last_name", "phone_number", "c_created_at", "c_updated_on",
	}
}

func expectEmptyOwnedRows(mock pgxmock.PgxPoolIface, userID string) {
	mock.ExpectQuery(`FROM user_sessions WHERE owner_id`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "owner_id", "ipaddress", "invalid_on", "created_at", "updated_on"}))
	mock.ExpectQuery(`FROM user_email_addresses WHERE owner_id`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "owner_id", "contact_id", "value", "created_at", "updated_on"}))
	mock.ExpectQuery(`FROM service_tickets WHERE owner_id`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "owner_id", "short_description", "long_description", "created_at", "updated_on"}))
}

func TestUserRepository_Lookup_ByCredentials(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	hashed := []byte{0x01, 0x02}
	rows := pgxmock.NewRows(userColumns()).
		AddRow("user-1", "authorized", "enabled", true, hashed, testInstant, testInstant,
			"user-1", "ali", "Ali", "Archer", "5550100", testInstant, testInstant)
	mock.ExpectQuery(`FROM users u`).
		WithArgs("ali", hashed).
		WillReturnRows(rows)
	expectEmptyOwnedRows(mock, "user-1")

	repo := NewUserRepository(mock)
	users, err := repo.Lookup(context.Background(), auth.LookupFilter{Username: "ali", HashedPassword: hashed})
	require.NoError(t, err)

	require.Len(t, users, 1)
	assert.Equal(t, "user-1", users[0].ID)
	assert.Equal(t, "ali", users[0].Contact.Username)
	assert.Equal(t, hashed, users[0].HashedPassword)
	assert.Empty(t, users[0].Sessions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Lookup_BySessionLoadsOwnedGraph(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	sessionID := []byte("session-token")
	rows := pgxmock.NewRows(userColumns()).
		AddRow("user-1", "authorized", "enabled", true, []byte{0x01}, testInstant, testInstant,
			"user-1", "ali", "", "", "", testInstant, testInstant)
	mock.ExpectQuery(`FROM users u`).
		WithArgs(sessionID).
		WillReturnRows(rows)

	mock.ExpectQuery(`FROM user_sessions WHERE owner_id`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "owner_id", "ipaddress", "invalid_on", "created_at", "updated_on"}).
			AddRow(sessionID, "user-1", "10.0.0.1", testInstant.Add(time.Minute), testInstant, testInstant))
	mock.ExpectQuery(`FROM user_email_addresses WHERE owner_id`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "owner_id", "contact_id", "value", "created_at", "updated_on"}).
			AddRow("email-1", "user-1", "user-1", "ali@example.com", testInstant, testInstant))
	mock.ExpectQuery(`FROM service_tickets WHERE owner_id`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "owner_id", "short_description", "long_description", "created_at", "updated_on"}))

	repo := NewUserRepository(mock)
	users, err := repo.Lookup(context.Background(), auth.LookupFilter{SessionID: sessionID})
	require.NoError(t, err)

	require.Len(t, users, 1)
	require.Len(t, users[0].Sessions, 1)
	assert.Equal(t, sessionID, users[0].Sessions[0].ID)
	require.Len(t, users[0].Contact.Emails, 1)
	assert.Equal(t, "ali@example.com", users[0].Contact.Emails[0].Value)
	assert.Empty(t, users[0].Tickets)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Lookup_NoMatches(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM users u`).
		WithArgs("nobody").
		WillReturnRows(pgxmock.NewRows(userColumns()))

	repo := NewUserRepository(mock)
	users, err := repo.Lookup(context.Background(), auth.LookupFilter{Username: "nobody"})
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Lookup_QueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM users u`).
		WithArgs("ali").
		WillReturnError(errors.New("connection refused"))

	repo := NewUserRepository(mock)
	_, err = repo.Lookup(context.Background(), auth.LookupFilter{Username: "ali"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create(t *testing.T) {
	rec := auth.UserRecord{
		ID:             "user-1",
		Role:           "authorized",
		Status:         "enabled",
		IsActive:       true,
		HashedPassword: []byte{0x01},
		Contact: auth.ContactRecord{
			OwnerID:   "user-1",
			Username:  "ali",
			CreatedAt: testInstant,
			UpdatedOn: testInstant,
			Emails: []auth.EmailRecord{{
				ID:        "email-1",
				OwnerID:   "user-1",
				ContactID: "user-1",
				Value:     "ali@example.com",
				CreatedAt: testInstant,
				UpdatedOn: testInstant,
			}},
		},
		CreatedAt: testInstant,
		UpdatedOn: testInstant,
	}

	t.Run("successful create inserts the whole graph", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`INSERT INTO users`).
			WithArgs(rec.ID, rec.Role, rec.Status, rec.IsActive, rec.HashedPassword, rec.CreatedAt, rec.UpdatedOn).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec(`INSERT INTO user_contacts`).
			WithArgs(rec.Contact.OwnerID, rec.Contact.Username, rec.Contact.FirstName, rec.Contact.LastName,
				rec.Contact.PhoneNumber, rec.Contact.CreatedAt, rec.Contact.UpdatedOn).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec(`INSERT INTO user_email_addresses`).
			WithArgs("email-1", "user-1", "user-1", "ali@example.com", testInstant, testInstant).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		repo := NewUserRepository(mock)
		require.NoError(t, repo.Create(context.Background(), rec))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate username is a conflict", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`INSERT INTO users`).
			WithArgs(rec.ID, rec.Role, rec.Status, rec.IsActive, rec.HashedPassword, rec.CreatedAt, rec.UpdatedOn).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec(`INSERT INTO user_contacts`).
			WithArgs(rec.Contact.OwnerID, rec.Contact.Username, rec.Contact.FirstName, rec.Contact.LastName,
				rec.Contact.PhoneNumber, rec.Contact.CreatedAt, rec.Contact.UpdatedOn).
			WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

		repo := NewUserRepository(mock)
		err = repo.Create(context.Background(), rec)
		require.Error(t, err)
		assert.True(t, errors.Is(err, auth.ErrConflict))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_Touch(t *testing.T) {
	tests := []struct {
		name         string
		setupMock    func(mock pgxmock.PgxPoolIface)
		wantErr      bool
		wantNotFound bool
	}{
		{
			name: "successful touch",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`UPDATE users SET updated_on`).
					WithArgs("user-1", testInstant).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
		},
		{
			name: "unknown user",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`UPDATE users SET updated_on`).
					WithArgs("user-1", testInstant).
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
			},
			wantErr:      true,
			wantNotFound: true,
		},
		{
			name: "database error",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`UPDATE users SET updated_on`).
					WithArgs("user-1", testInstant).
					WillReturnError(errors.New("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.setupMock(mock)

			repo := NewUserRepository(mock)
			err = repo.Touch(context.Background(), "user-1", testInstant)

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantNotFound, errors.Is(err, auth.ErrNotFound))
			} else {
				require.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
