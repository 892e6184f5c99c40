// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Compass Contributors

package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "compass_http_requests_total",
		Help: "Total number of API requests by path and status",
	},
	[]string{"path", "status"},
)
