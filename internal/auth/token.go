// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Compass Contributors

package auth

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/samber/oops"
)

// TokenEntropyBytes is the number of random bytes in a session token.
// Predictable tokens are a full session-hijack vulnerability, so tokens
// always come from crypto/rand and never drop below 111 bytes of entropy.
const TokenEntropyBytes = 128

// tokenSeparator joins the owner prefix to the random token body.
var tokenSeparator = []byte(":")

// NewSessionToken generates a high-entropy session token. When ownerID is
// non-nil the token is prefixed with the owner's UUID hex and a separator
// so the owning user can be routed from the token alone.
func NewSessionToken(ownerID *uuid.UUID) ([]byte, error) {
	entropy := make([]byte, TokenEntropyBytes)
	if _, err := rand.Read(entropy); err != nil {
		return nil, oops.Code("AUTH_TOKEN_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			With("requested_bytes", TokenEntropyBytes).
			Wrap(err)
	}

	token := []byte(base64.RawURLEncoding.EncodeToString(entropy))
	if ownerID == nil {
		return token, nil
	}

	prefix := []byte(hex.EncodeToString(ownerID[:]))
	return bytes.Join([][]byte{prefix, token}, tokenSeparator), nil
}

// TokenOwner extracts the owner UUID from a prefixed session token.
// Returns uuid.Nil and false for tokens without an owner prefix.
func TokenOwner(token []byte) (uuid.UUID, bool) {
	prefix, _, found := bytes.Cut(token, tokenSeparator)
	if !found {
		return uuid.Nil, false
	}
	raw, err := hex.DecodeString(string(prefix))
	if err != nil || len(raw) != 16 {
		return uuid.Nil, false
	}
	id, err := uuid.FromBytes(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// EncodeToken converts raw session token bytes into the URL-safe bearer
// form handed to clients.
func EncodeToken(token []byte) string {
	return base64.URLEncoding.EncodeToString(token)
}

// DecodeToken reverses EncodeToken. The error carries the uniform
// invalid-credentials code: a malformed token must be indistinguishable
// from an unknown one.
func DecodeToken(bearer string) ([]byte, error) {
	raw, err := base64.URLEncoding.DecodeString(bearer)
	if err != nil {
		return nil, oops.Code(CodeInvalidCredentials).
			Errorf("invalid authentication credentials")
	}
	return raw, nil
}

// NewIdentifier generates a random identifier for a new entity.
func NewIdentifier() uuid.UUID {
	return uuid.New()
}

// Now returns the current instant in UTC. All session arithmetic goes
// through this so that comparisons stay consistent.
func Now() time.Time {
	return time.Now().UTC()
}

// FutureInstant returns Now plus d.
func FutureInstant(d time.Duration) time.Time {
	return Now().Add(d)
}
