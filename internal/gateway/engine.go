// GymGate - Fitness Club Management Portal Gateway
// Copyright 2026 ClubWorks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clubworks/gymgate

// Package gateway contains the decision engine that gates every portal page
// request: it composes the route classifier, the identity resolver, and the
// role tables into a single allow-or-redirect transition per request.
//
// The engine holds no per-request state. Each request computes exactly one
// terminal decision; nothing is cached between requests.
package gateway

import (
	"net/http"
	"net/url"

	"github.com/clubworks/gymgate/internal/config"
	"github.com/clubworks/gymgate/internal/identity"
	"github.com/clubworks/gymgate/internal/logging"
	"github.com/clubworks/gymgate/internal/metrics"
	"github.com/clubworks/gymgate/internal/roles"
	"github.com/clubworks/gymgate/internal/routes"
)

// Action is the terminal outcome of a gateway transition.
type Action int

const (
	// ActionAllow passes the request through to the portal upstream.
	ActionAllow Action = iota

	// ActionRedirect sends the client to Decision.Location.
	ActionRedirect
)

// String returns the action name for logging and metrics.
func (a Action) String() string {
	if a == ActionRedirect {
		return "redirect"
	}
	return "allow"
}

// Decision is one computed gateway transition.
type Decision struct {
	Action   Action
	Location string
}

func allow() Decision {
	return Decision{Action: ActionAllow}
}

func redirect(location string) Decision {
	return Decision{Action: ActionRedirect, Location: location}
}

// Engine is the gateway decision engine.
type Engine struct {
	classifier *routes.Classifier
	resolver   *identity.Resolver
	cfg        config.GatewayConfig
}

// NewEngine creates a decision engine over the given classifier and resolver.
func NewEngine(classifier *routes.Classifier, resolver *identity.Resolver, cfg config.GatewayConfig) *Engine {
	return &Engine{classifier: classifier, resolver: resolver, cfg: cfg}
}

// Evaluate computes the decision for one request. Identity is resolved only
// when the decision can depend on it: public paths that are not login
// surfaces never trigger resolution, so no verification call occurs for them.
func (e *Engine) Evaluate(r *http.Request) (Decision, identity.Outcome, routes.Class) {
	path := r.URL.Path
	class := e.classifier.Classify(path)

	if class == routes.Public && !e.isLoginSurface(path) {
		return allow(), identity.Outcome{}, class
	}

	outcome := e.resolver.Resolve(r)
	return e.Decide(class, outcome, path), outcome, class
}

// Decide computes the transition for a classified path and resolved outcome.
//
// The table is flat and terminal: every (class, outcome) pair maps to exactly
// one allow or redirect. StaffOnly deliberately admits degraded-trust
// outcomes; see the identity package for the fail-mode configuration that
// produces them.
func (e *Engine) Decide(class routes.Class, outcome identity.Outcome, path string) Decision {
	switch class {
	case routes.Public:
		// Authenticated users are steered away from login pages, but only
		// when their role maps to a landing page they can actually reach.
		// An authenticated principal with an unknown role would be bounced
		// off the landing page straight back to login, so they stay put.
		if e.isLoginSurface(path) && outcome.Authenticated && principalRole(outcome).Known() {
			return redirect(LandingPath(principalRole(outcome)))
		}
		return allow()

	case routes.MemberOnly:
		if outcome.Authenticated && principalRole(outcome) == roles.RoleMember {
			return allow()
		}
		return redirect(loginRedirect(e.cfg.MemberLogin, path))

	case routes.StaffOnly:
		if outcome.Authenticated && (outcome.Trust == identity.TrustDegraded || principalRole(outcome).IsStaff()) {
			return allow()
		}
		return redirect(loginRedirect(e.cfg.StaffLogin, path))

	default: // routes.ProtectedDefault
		if outcome.Authenticated {
			return allow()
		}
		return redirect(e.cfg.Home)
	}
}

// Middleware applies the decision engine in front of the portal handler.
// Allowed requests continue with the resolved outcome in their context;
// denied requests receive a 302 redirect preserving the original path.
func (e *Engine) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision, outcome, class := e.Evaluate(r)
		metrics.RecordGatewayDecision(class.String(), decision.Action.String(), outcome.Trust.String())

		if decision.Action == ActionRedirect {
			logging.Ctx(r.Context()).Debug().
				Str("path", r.URL.Path).
				Str("class", class.String()).
				Str("location", decision.Location).
				Msg("gateway redirect")
			http.Redirect(w, r, decision.Location, http.StatusFound)
			return
		}

		next.ServeHTTP(w, r.WithContext(identity.ContextWithOutcome(r.Context(), outcome)))
	})
}

func (e *Engine) isLoginSurface(path string) bool {
	return path == e.cfg.MemberLogin || path == e.cfg.StaffLogin
}

// loginRedirect builds a login-surface redirect preserving the original path
// as a percent-encoded redirect parameter for post-login return-to-origin.
func loginRedirect(loginPath, originalPath string) string {
	return loginPath + "?redirect=" + url.QueryEscape(originalPath)
}

// principalRole returns the outcome's role, or the zero-privilege sentinel
// for outcomes without a principal.
func principalRole(outcome identity.Outcome) roles.Role {
	if outcome.Principal == nil {
		return roles.RoleUnknown
	}
	return outcome.Principal.Role
}
