// GymGate - Fitness Club Management Portal Gateway
// Copyright 2026 ClubWorks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clubworks/gymgate

/*
Command gymgate runs the fitness club portal gateway.

The gateway sits in front of the portal frontend. Every incoming request is
classified (public, member-only, staff-only, or protected by default), the
caller's session is verified against the club's session service, and the
request is either reverse-proxied to the portal, redirected to the
appropriate login surface, or handled by the management API under /api/v1.

Configuration is layered: built-in defaults, an optional YAML file (set
GYMGATE_CONFIG or place gymgate.yaml in the working directory), then
GYMGATE_* environment variables. For example:

	GYMGATE_SERVER_LISTEN_ADDR=:8084
	GYMGATE_IDENTITY_VERIFY_URL=http://sessions.internal/api/auth/verify
	GYMGATE_IDENTITY_FAIL_MODE=open
	GYMGATE_PORTAL_UPSTREAM_URL=http://portal.internal:3000

Operational endpoints: GET /healthz for probes, GET /metrics for Prometheus.
*/
package main
