// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Compass Contributors

package auth

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
)

// currentUserRedactions lists the field paths stripped from a user
// before it crosses the identity boundary. Redaction here is mandatory,
// never optional.
var currentUserRedactions = []string{
	"user_contacts",
	"hashed_password",
	"user_sessions",
	"service_tickets",
}

// Resolver resolves the acting user from a bearer token.
type Resolver struct {
	users  UserRepository
	logger *slog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(users UserRepository, logger *slog.Logger) (*Resolver, error) {
	if users == nil {
		return nil, oops.Errorf("users repository is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{users: users, logger: logger}, nil
}

// CurrentUser decodes the bearer token, looks up the owning user, and
// enforces the account gates: exactly one match, status ENABLED, and an
// active account. Callers expose the result only through
// CurrentUserView.
func (r *Resolver) CurrentUser(ctx context.Context, bearer string) (*User, error) {
	token, err := DecodeToken(bearer)
	if err != nil {
		return nil, err
	}

	recs, err := r.users.Lookup(ctx, LookupFilter{SessionID: token})
	if err != nil {
		return nil, oops.Code("AUTH_LOOKUP_FAILED").
			With("operation", "lookup user by session").
			Wrap(err)
	}
	if len(recs) != 1 {
		return nil, oops.Code(CodeInvalidCredentials).
			Errorf("invalid authentication credentials")
	}

	user, err := ToWire(recs[0])
	if err != nil {
		return nil, err
	}

	if user.Status != StatusEnabled {
		return nil, oops.Code(CodeForbidden).
			With("status", string(user.Status)).
			Errorf("not allowed to access this service")
	}
	if !user.IsActive {
		return nil, oops.Code(CodeNotActive).Errorf("not an active user")
	}
	return user, nil
}

// CurrentUserView produces the redacted wire map of a resolved user,
// the only shape suitable for direct exposure to the caller: contact,
// password hash, sessions, and tickets are stripped.
func CurrentUserView(user *User) map[string]any {
	view, err := Redact(user.AsMap(), currentUserRedactions...)
	if err != nil {
		// The redaction paths are top-level keys AsMap always emits;
		// reaching this branch means the two drifted apart.
		panic(err)
	}
	return view
}
