// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tenantry Contributors

package auth

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Result labels for auth metrics.
const (
	ResultSuccess = "success"
	ResultHit     = "hit"
	ResultMiss    = "miss"
)

// Signups counts signup attempts by result (success or the error kind).
// Use RegisterMetrics to register this with a Prometheus registry.
var Signups = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tenantry_auth_signups_total",
		Help: "Total number of signup attempts",
	},
	[]string{"result"},
)

// Logins counts login attempts by result (success or the error kind).
var Logins = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tenantry_auth_logins_total",
		Help: "Total number of login attempts",
	},
	[]string{"result"},
)

// SessionLookups counts session resolutions by result (hit, miss or an error kind).
var SessionLookups = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tenantry_auth_session_lookups_total",
		Help: "Total number of session token lookups",
	},
	[]string{"result"},
)

// SessionsSwept counts expired sessions removed by the sweeper.
var SessionsSwept = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "tenantry_auth_sessions_swept_total",
		Help: "Total number of expired sessions deleted",
	},
)

// RegisterMetrics registers auth package metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Signups)
	reg.MustRegister(Logins)
	reg.MustRegister(SessionLookups)
	reg.MustRegister(SessionsSwept)
}

// resultLabel returns ResultSuccess for a nil error and the error kind otherwise.
func resultLabel(err error) string {
	if err == nil {
		return ResultSuccess
	}
	return KindOf(err).String()
}
