// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Compass Contributors

// Package auth implements the Compass authentication and session engine:
// the password hash chain, session token issuance, the session lifecycle
// (creation, lazy expiry, per-user capacity), bearer-token identity
// resolution, and the translation layer between storage-shaped records
// and wire-shaped values.
package auth
