// GymGate - Fitness Club Management Portal Gateway
// Copyright 2026 ClubWorks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clubworks/gymgate

/*
Package middleware provides the cross-cutting HTTP middleware shared by the
gateway and the management API: request ID propagation and Prometheus
instrumentation.

The middleware is chi-compatible (func(http.Handler) http.Handler). A
typical stack on the router is:

	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(identityResolver.Middleware)
	r.Use(engine.Middleware)

Identity resolution and gateway decisions are middleware too, but they live
with their domains (internal/identity, internal/gateway); this package holds
only the plumbing that has no domain of its own.

Thread Safety:

  - Request ID uses context.Context (immutable)
  - Prometheus metrics use atomic operations under the hood
*/
package middleware
