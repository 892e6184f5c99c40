// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Compass Contributors

package auth

import "errors"

// Sentinel errors surfaced by repositories. Services translate these into
// coded errors before they reach a transport boundary.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when an insert violates a uniqueness
	// constraint, e.g. a session token colliding with an existing one.
	ErrConflict = errors.New("conflict")
)

// Error codes attached to oops errors raised by this package. The HTTP
// layer maps codes to status codes; tests assert on them.
const (
	// CodeInvalidCredentials covers bad username, bad password, and bad
	// bearer tokens. The message is identical for all three so a caller
	// cannot distinguish "no such user" from "wrong password".
	CodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"

	// CodeForbidden denies access on policy grounds (account status).
	CodeForbidden = "AUTH_FORBIDDEN"

	// CodeNotActive denies access for deactivated accounts.
	CodeNotActive = "AUTH_NOT_ACTIVE"

	// CodeSessionLimit denies a login that would exceed the per-user
	// session capacity.
	CodeSessionLimit = "AUTH_SESSION_LIMIT"

	// CodeSessionConflict reports a session token collision that
	// persisted across the single retry.
	CodeSessionConflict = "AUTH_SESSION_CONFLICT"

	// CodeIntegrityViolation reports a broken data invariant, such as two
	// users sharing a username.
	CodeIntegrityViolation = "AUTH_INTEGRITY_VIOLATION"

	// CodeInvalidArgument reports a violated dependent-argument contract.
	CodeInvalidArgument = "AUTH_INVALID_ARGUMENT"

	// CodeTranslateFailed reports a malformed record during wire/storage
	// conversion.
	CodeTranslateFailed = "AUTH_TRANSLATE_FAILED"
)
