// GymGate - Fitness Club Management Portal Gateway
// Copyright 2026 ClubWorks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clubworks/gymgate

package authz

import (
	"net/http"
	"time"

	"github.com/clubworks/gymgate/internal/identity"
	"github.com/clubworks/gymgate/internal/logging"
	"github.com/clubworks/gymgate/internal/metrics"
	"github.com/clubworks/gymgate/internal/roles"
)

// Reason names why a permission was denied. Reasons are stable strings used
// in audit events, metrics labels, and API error payloads.
type Reason string

const (
	// ReasonBaselineMissing: no grant row for (role, resource, action).
	ReasonBaselineMissing Reason = "baseline-missing"

	// ReasonOwnershipUnresolved: the owner resolver yielded no owner.
	ReasonOwnershipUnresolved Reason = "ownership-unresolved"

	// ReasonOwnershipDenied: the caller neither owns the resource nor
	// outranks its owner.
	ReasonOwnershipDenied Reason = "ownership-denied"

	// ReasonHierarchyDenied: a role-administration check failed.
	ReasonHierarchyDenied Reason = "hierarchy-denied"

	// ReasonEvaluationError: the enforcer itself failed; treated as deny.
	ReasonEvaluationError Reason = "evaluation-error"
)

// Decision is the outcome of one permission evaluation. Expected denials are
// decisions, not errors: nothing escapes the evaluator boundary.
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Allow is the affirmative decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny builds a negative decision with its structured reason.
func Deny(reason Reason) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Owner identifies who owns a resource, as reported by a domain lookup.
type Owner struct {
	ID   string
	Role roles.Role
}

// OwnerResolver resolves "who owns this resource" from request parameters
// against domain storage (the trainer bound to a session, the trainer
// assigned to a client record, ...). Resolvers are plain function values
// registered per operation; the evaluator treats them opaquely.
type OwnerResolver func(r *http.Request) (Owner, error)

// PermissionRequest declares what a protected operation needs. Operations
// declare these statically at registration time.
type PermissionRequest struct {
	Resource         string
	Action           string
	RequireOwnership bool
	Owner            OwnerResolver
}

// Evaluator combines the static grant table with ownership resolution.
type Evaluator struct {
	enforcer *Enforcer
	audit    *AuditLogger
}

// NewEvaluator creates an evaluator. audit may be nil to disable auditing.
func NewEvaluator(enforcer *Enforcer, audit *AuditLogger) *Evaluator {
	return &Evaluator{enforcer: enforcer, audit: audit}
}

// Evaluate decides whether the principal may perform the declared operation.
//
// The baseline check against the grant table is fail-closed: no row, no
// access. When ownership is required, owning the resource overrides the
// hierarchy entirely; a non-owner passes only by strictly outranking the
// owner (ownership delegation). Evaluate never panics and never returns an
// error for expected denials.
func (e *Evaluator) Evaluate(r *http.Request, principal *identity.Principal, perm PermissionRequest) Decision {
	start := time.Now()
	decision := e.evaluate(r, principal, perm)
	e.record(r, principal, perm, decision, time.Since(start))
	return decision
}

func (e *Evaluator) evaluate(r *http.Request, principal *identity.Principal, perm PermissionRequest) Decision {
	if principal == nil {
		return Deny(ReasonBaselineMissing)
	}

	ok, err := e.enforcer.HasGrant(principal.Role.String(), perm.Resource, perm.Action)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).
			Str("resource", perm.Resource).
			Str("action", perm.Action).
			Msg("grant table lookup failed")
		return Deny(ReasonEvaluationError)
	}
	if !ok {
		return Deny(ReasonBaselineMissing)
	}

	if !perm.RequireOwnership {
		return Allow()
	}
	if perm.Owner == nil {
		return Deny(ReasonOwnershipUnresolved)
	}

	owner, err := perm.Owner(r)
	if err != nil || owner.ID == "" {
		return Deny(ReasonOwnershipUnresolved)
	}
	if owner.ID == principal.ID {
		return Allow()
	}
	if roles.CanManageUser(principal.Role, owner.Role) {
		return Allow()
	}
	return Deny(ReasonOwnershipDenied)
}

// EvaluateRoleCreation decides whether the actor may create an account with
// the target role, on top of the users/create baseline grant.
func (e *Evaluator) EvaluateRoleCreation(r *http.Request, actor *identity.Principal, target roles.Role) Decision {
	d := e.Evaluate(r, actor, PermissionRequest{Resource: "users", Action: "create"})
	if !d.Allowed {
		return d
	}
	if !roles.CanCreateRole(actor.Role, target) {
		d = Deny(ReasonHierarchyDenied)
		e.record(r, actor, PermissionRequest{Resource: "users", Action: "create"}, d, 0)
		return d
	}
	return Allow()
}

// EvaluateUserManagement decides whether the actor may manage an account
// with the target role, on top of the given users/* baseline action.
func (e *Evaluator) EvaluateUserManagement(r *http.Request, actor *identity.Principal, action string, target roles.Role) Decision {
	d := e.Evaluate(r, actor, PermissionRequest{Resource: "users", Action: action})
	if !d.Allowed {
		return d
	}
	if !roles.CanManageUser(actor.Role, target) {
		d = Deny(ReasonHierarchyDenied)
		e.record(r, actor, PermissionRequest{Resource: "users", Action: action}, d, 0)
		return d
	}
	return Allow()
}

// Require is middleware enforcing a non-ownership permission on a route.
// Denials answer 403 with the reason; the handler never runs.
func (e *Evaluator) Require(resource, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := identity.PrincipalFromContext(r.Context())
			d := e.Evaluate(r, principal, PermissionRequest{Resource: resource, Action: action})
			if !d.Allowed {
				http.Error(w, "Forbidden: "+string(d.Reason), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// record emits metrics and an audit event for one decision.
func (e *Evaluator) record(r *http.Request, principal *identity.Principal, perm PermissionRequest, d Decision, elapsed time.Duration) {
	role := roles.RoleUnknown
	actorID := ""
	if principal != nil {
		role = principal.Role
		actorID = principal.ID
	}
	metrics.RecordAuthzDecision(role.String(), perm.Resource, perm.Action, d.Allowed, string(d.Reason), elapsed)

	if e.audit != nil {
		e.audit.LogDecision(&AuditEvent{
			RequestID: logging.RequestIDFromContext(r.Context()),
			ActorID:   actorID,
			ActorRole: role.String(),
			Resource:  perm.Resource,
			Action:    perm.Action,
			Decision:  d.Allowed,
			Reason:    string(d.Reason),
			Duration:  elapsed,
			Method:    r.Method,
			Path:      r.URL.Path,
		})
	}
}
