// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Compass Contributors

package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for the authentication engine.
var (
	// loginAttempts counts authentication outcomes.
	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "compass_login_attempts_total",
		Help: "Total number of login attempts by outcome",
	}, []string{"outcome"})

	// sessionsCreated counts issued sessions.
	sessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "compass_sessions_created_total",
		Help: "Total number of sessions issued",
	})

	// sessionsExpired counts sessions removed by the lazy expiry sweep.
	sessionsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "compass_sessions_expired_total",
		Help: "Total number of expired sessions swept",
	})
)
