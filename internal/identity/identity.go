// GymGate - Fitness Club Management Portal Gateway
// Copyright 2026 ClubWorks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clubworks/gymgate

// Package identity resolves the caller of a request against the external
// session verification service.
//
// Resolution produces an Outcome, never an error: expected conditions
// (no credential, invalid session, verification outage) are encoded in the
// outcome's Authenticated and Trust fields. The single outbound verification
// call is bounded by a hard timeout and wrapped in a circuit breaker; it is
// the only point where a request may block on the network.
package identity

import (
	"net/http"
	"strings"

	"github.com/clubworks/gymgate/internal/roles"
)

// TrustLevel qualifies how an authentication outcome was produced.
type TrustLevel int

const (
	// TrustVerified outcomes carry a confirmed answer from the session
	// verification service (including confirmed "not authenticated").
	TrustVerified TrustLevel = iota

	// TrustDegraded outcomes were produced without a confirmed answer:
	// a credential token was present but the verification service was
	// unreachable. Downstream code may restrict degraded principals further.
	TrustDegraded
)

// String returns the trust level name for logging and metrics.
func (t TrustLevel) String() string {
	if t == TrustDegraded {
		return "degraded"
	}
	return "verified"
}

// Principal is the authenticated identity for one request evaluation.
// It is constructed fresh per request and never cached by the gateway.
type Principal struct {
	ID    string     `json:"id"`
	Email string     `json:"email"`
	Role  roles.Role `json:"role"`
	Name  string     `json:"name"`
}

// Outcome is the result of resolving a request's identity.
type Outcome struct {
	Authenticated bool
	Principal     *Principal
	Trust         TrustLevel
}

// anonymous is the outcome for requests with no usable credential.
func anonymous() Outcome {
	return Outcome{Authenticated: false, Trust: TrustVerified}
}

// TokenSource identifies which carrier a credential token came from.
type TokenSource int

const (
	// SourceSessionCookie is the primary carrier.
	SourceSessionCookie TokenSource = iota

	// SourceDebugHeader is the secondary carrier used by integration tooling.
	SourceDebugHeader

	// SourceBearer is the tertiary Authorization bearer carrier.
	SourceBearer
)

// String returns the carrier name for logging.
func (s TokenSource) String() string {
	switch s {
	case SourceSessionCookie:
		return "session_cookie"
	case SourceDebugHeader:
		return "debug_header"
	case SourceBearer:
		return "bearer"
	default:
		return "unknown"
	}
}

// Token is a credential found on a request.
type Token struct {
	Source TokenSource
	Value  string
}

// extractToken finds the first credential among the three carriers, in
// priority order: session cookie, debug header, bearer token.
func extractToken(r *http.Request, sessionCookie, debugHeader string) (Token, bool) {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return Token{Source: SourceSessionCookie, Value: c.Value}, true
	}
	if v := r.Header.Get(debugHeader); v != "" {
		return Token{Source: SourceDebugHeader, Value: v}, true
	}
	if auth := r.Header.Get("Authorization"); auth != "" {
		const prefix = "Bearer "
		if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
			return Token{Source: SourceBearer, Value: auth[len(prefix):]}, true
		}
	}
	return Token{}, false
}
