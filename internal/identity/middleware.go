// GymGate - Fitness Club Management Portal Gateway
// Copyright 2026 ClubWorks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clubworks/gymgate

package identity

import (
	"context"
	"net/http"
)

type contextKey string

// outcomeContextKey stores the resolved Outcome for one request.
const outcomeContextKey contextKey = "identity_outcome"

// ContextWithOutcome returns a context carrying the resolved outcome.
func ContextWithOutcome(ctx context.Context, out Outcome) context.Context {
	return context.WithValue(ctx, outcomeContextKey, out)
}

// OutcomeFromContext retrieves the outcome stored by the middleware.
// The second return is false when no resolution ran for this request.
func OutcomeFromContext(ctx context.Context) (Outcome, bool) {
	out, ok := ctx.Value(outcomeContextKey).(Outcome)
	return out, ok
}

// PrincipalFromContext returns the authenticated principal, or nil when the
// request is anonymous or unresolved.
func PrincipalFromContext(ctx context.Context) *Principal {
	out, ok := OutcomeFromContext(ctx)
	if !ok || !out.Authenticated {
		return nil
	}
	return out.Principal
}

// Middleware resolves the caller's identity and stores the outcome in the
// request context. It never rejects: use RequireAuth on routes that demand
// an authenticated principal.
func (rv *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		out := rv.Resolve(r)
		next.ServeHTTP(w, r.WithContext(ContextWithOutcome(r.Context(), out)))
	})
}

// RequireAuth rejects unauthenticated requests with 401. Degraded outcomes
// pass; handlers that must not act on degraded trust check the outcome
// themselves.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if PrincipalFromContext(r.Context()) == nil {
			http.Error(w, "Unauthorized: authentication required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
