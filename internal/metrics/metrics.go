// GymGate - Fitness Club Management Portal Gateway
// Copyright 2026 ClubWorks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clubworks/gymgate

// Package metrics provides Prometheus instrumentation for the gateway:
// request throughput and latency, gateway decisions, identity verification
// outcomes, and the verification circuit breaker.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymgate_http_requests_total",
			Help: "Total number of HTTP requests handled by the gateway",
		},
		[]string{"method", "path", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gymgate_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gymgate_http_active_requests",
			Help: "Current number of in-flight HTTP requests",
		},
	)

	// Gateway decision metrics

	GatewayDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymgate_gateway_decisions_total",
			Help: "Gateway allow/redirect decisions by route class and trust level",
		},
		[]string{"route_class", "decision", "trust"},
	)

	// Identity verification metrics

	IdentityVerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymgate_identity_verifications_total",
			Help: "Session verification attempts by result (verified, anonymous, degraded, failed)",
		},
		[]string{"result"},
	)

	IdentityVerificationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gymgate_identity_verification_duration_seconds",
			Help:    "Duration of session verification calls in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	// Circuit breaker metrics (session verification service)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gymgate_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymgate_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Authorization metrics

	AuthzDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymgate_authz_decisions_total",
			Help: "Permission evaluator decisions by role, resource, action, and outcome",
		},
		[]string{"role", "resource", "action", "decision"},
	)

	AuthzDeniedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymgate_authz_denied_total",
			Help: "Permission denials by reason (for alerting)",
		},
		[]string{"resource", "action", "reason"},
	)

	AuthzDecisionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gymgate_authz_decision_duration_seconds",
			Help:    "Duration of permission evaluations in seconds",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)
)

// RecordHTTPRequest records one completed HTTP request.
func RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(active bool) {
	if active {
		HTTPActiveRequests.Inc()
	} else {
		HTTPActiveRequests.Dec()
	}
}

// RecordGatewayDecision records one gateway transition.
func RecordGatewayDecision(routeClass, decision, trust string) {
	GatewayDecisionsTotal.WithLabelValues(routeClass, decision, trust).Inc()
}

// RecordIdentityVerification records the outcome of one resolver pass.
func RecordIdentityVerification(result string, duration time.Duration) {
	IdentityVerificationsTotal.WithLabelValues(result).Inc()
	if duration > 0 {
		IdentityVerificationDuration.Observe(duration.Seconds())
	}
}

// RecordAuthzDecision records one permission evaluation.
func RecordAuthzDecision(role, resource, action string, allowed bool, reason string, duration time.Duration) {
	decision := "allow"
	if !allowed {
		decision = "deny"
		AuthzDeniedTotal.WithLabelValues(resource, action, reason).Inc()
	}
	AuthzDecisionsTotal.WithLabelValues(role, resource, action, decision).Inc()
	AuthzDecisionDuration.Observe(duration.Seconds())
}
