// GymGate - Fitness Club Management Portal Gateway
// Copyright 2026 ClubWorks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clubworks/gymgate

package authz

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clubworks/gymgate/internal/identity"
	"github.com/clubworks/gymgate/internal/roles"
)

func newTestEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	return NewEvaluator(newTestEnforcer(t), nil)
}

func principalWith(id string, role roles.Role) *identity.Principal {
	return &identity.Principal{ID: id, Role: role}
}

func testRequest() *http.Request {
	return httptest.NewRequest(http.MethodGet, "/api/v1/sessions/42", nil)
}

func staticOwner(owner Owner) OwnerResolver {
	return func(*http.Request) (Owner, error) { return owner, nil }
}

func TestEvaluate_Baseline(t *testing.T) {
	ev := newTestEvaluator(t)

	tests := []struct {
		name       string
		principal  *identity.Principal
		perm       PermissionRequest
		wantAllow  bool
		wantReason Reason
	}{
		{
			name:      "granted operation allows",
			principal: principalWith("m-1", roles.RoleMember),
			perm:      PermissionRequest{Resource: "bookings", Action: "create"},
			wantAllow: true,
		},
		{
			name:       "missing grant denies",
			principal:  principalWith("m-1", roles.RoleMember),
			perm:       PermissionRequest{Resource: "sessions", Action: "create"},
			wantAllow:  false,
			wantReason: ReasonBaselineMissing,
		},
		{
			name:       "unknown role denies",
			principal:  principalWith("x-1", roles.RoleUnknown),
			perm:       PermissionRequest{Resource: "bookings", Action: "read"},
			wantAllow:  false,
			wantReason: ReasonBaselineMissing,
		},
		{
			name:       "nil principal denies",
			principal:  nil,
			perm:       PermissionRequest{Resource: "bookings", Action: "read"},
			wantAllow:  false,
			wantReason: ReasonBaselineMissing,
		},
		{
			name:      "inherited staff grant allows",
			principal: principalWith("a-1", roles.RoleAdmin),
			perm:      PermissionRequest{Resource: "sessions", Action: "read"},
			wantAllow: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ev.Evaluate(testRequest(), tt.principal, tt.perm)
			if d.Allowed != tt.wantAllow {
				t.Fatalf("Evaluate() allowed = %v, want %v (reason %q)", d.Allowed, tt.wantAllow, d.Reason)
			}
			if !tt.wantAllow && d.Reason != tt.wantReason {
				t.Errorf("Evaluate() reason = %q, want %q", d.Reason, tt.wantReason)
			}
		})
	}
}

func TestEvaluate_Ownership(t *testing.T) {
	ev := newTestEvaluator(t)

	tests := []struct {
		name       string
		principal  *identity.Principal
		owner      OwnerResolver
		wantAllow  bool
		wantReason Reason
	}{
		{
			name:      "owner passes regardless of hierarchy",
			principal: principalWith("t-1", roles.RoleTrainer),
			owner:     staticOwner(Owner{ID: "t-1", Role: roles.RoleTrainer}),
			wantAllow: true,
		},
		{
			name:       "peer trainer denied",
			principal:  principalWith("t-1", roles.RoleTrainer),
			owner:      staticOwner(Owner{ID: "t-2", Role: roles.RoleTrainer}),
			wantAllow:  false,
			wantReason: ReasonOwnershipDenied,
		},
		{
			name:      "manager outranks trainer owner",
			principal: principalWith("mg-1", roles.RoleManager),
			owner:     staticOwner(Owner{ID: "t-2", Role: roles.RoleTrainer}),
			wantAllow: true,
		},
		{
			name:       "resolver error denies unresolved",
			principal:  principalWith("t-1", roles.RoleTrainer),
			owner:      func(*http.Request) (Owner, error) { return Owner{}, errors.New("not found") },
			wantAllow:  false,
			wantReason: ReasonOwnershipUnresolved,
		},
		{
			name:       "empty owner denies unresolved",
			principal:  principalWith("t-1", roles.RoleTrainer),
			owner:      staticOwner(Owner{}),
			wantAllow:  false,
			wantReason: ReasonOwnershipUnresolved,
		},
		{
			name:       "no resolver registered denies unresolved",
			principal:  principalWith("t-1", roles.RoleTrainer),
			owner:      nil,
			wantAllow:  false,
			wantReason: ReasonOwnershipUnresolved,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ev.Evaluate(testRequest(), tt.principal, PermissionRequest{
				Resource:         "sessions",
				Action:           "update",
				RequireOwnership: true,
				Owner:            tt.owner,
			})
			if d.Allowed != tt.wantAllow {
				t.Fatalf("Evaluate() allowed = %v, want %v (reason %q)", d.Allowed, tt.wantAllow, d.Reason)
			}
			if !tt.wantAllow && d.Reason != tt.wantReason {
				t.Errorf("Evaluate() reason = %q, want %q", d.Reason, tt.wantReason)
			}
		})
	}
}

// Ownership is checked after the baseline: owning a resource never grants an
// operation the role has no grant for.
func TestEvaluate_OwnershipNeverBypassesBaseline(t *testing.T) {
	ev := newTestEvaluator(t)

	d := ev.Evaluate(testRequest(), principalWith("m-1", roles.RoleMember), PermissionRequest{
		Resource:         "sessions",
		Action:           "update",
		RequireOwnership: true,
		Owner:            staticOwner(Owner{ID: "m-1", Role: roles.RoleMember}),
	})
	if d.Allowed {
		t.Fatal("owner allowed without a baseline grant")
	}
	if d.Reason != ReasonBaselineMissing {
		t.Errorf("reason = %q, want %q", d.Reason, ReasonBaselineMissing)
	}
}

// Whenever the baseline passes and the resolver reports the caller as owner,
// the decision is allow, independent of every hierarchy combination.
func TestEvaluate_SelfOwnershipAlwaysAllows(t *testing.T) {
	ev := newTestEvaluator(t)

	staff := []roles.Role{roles.RoleTrainer, roles.RoleManager, roles.RoleAdmin, roles.RoleSuperAdmin}
	for _, role := range staff {
		d := ev.Evaluate(testRequest(), principalWith("self", role), PermissionRequest{
			Resource:         "sessions",
			Action:           "update",
			RequireOwnership: true,
			Owner:            staticOwner(Owner{ID: "self", Role: role}),
		})
		if !d.Allowed {
			t.Errorf("role %s denied own resource: reason %q", role, d.Reason)
		}
	}
}

func TestEvaluateRoleCreation(t *testing.T) {
	ev := newTestEvaluator(t)

	tests := []struct {
		name       string
		actor      *identity.Principal
		target     roles.Role
		wantAllow  bool
		wantReason Reason
	}{
		{
			name:      "admin creates trainer",
			actor:     principalWith("a-1", roles.RoleAdmin),
			target:    roles.RoleTrainer,
			wantAllow: true,
		},
		{
			name:       "admin cannot create admin",
			actor:      principalWith("a-1", roles.RoleAdmin),
			target:     roles.RoleAdmin,
			wantAllow:  false,
			wantReason: ReasonHierarchyDenied,
		},
		{
			name:       "super-admin tier is unassignable",
			actor:      principalWith("sa-1", roles.RoleSuperAdmin),
			target:     roles.RoleSuperAdmin,
			wantAllow:  false,
			wantReason: ReasonHierarchyDenied,
		},
		{
			name:       "trainer lacks the users grant",
			actor:      principalWith("t-1", roles.RoleTrainer),
			target:     roles.RoleMember,
			wantAllow:  false,
			wantReason: ReasonBaselineMissing,
		},
		{
			name:      "super-admin creates admin",
			actor:     principalWith("sa-1", roles.RoleSuperAdmin),
			target:    roles.RoleAdmin,
			wantAllow: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ev.EvaluateRoleCreation(testRequest(), tt.actor, tt.target)
			if d.Allowed != tt.wantAllow {
				t.Fatalf("EvaluateRoleCreation() allowed = %v, want %v (reason %q)", d.Allowed, tt.wantAllow, d.Reason)
			}
			if !tt.wantAllow && d.Reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", d.Reason, tt.wantReason)
			}
		})
	}
}

func TestEvaluateUserManagement(t *testing.T) {
	ev := newTestEvaluator(t)

	tests := []struct {
		name       string
		actor      *identity.Principal
		action     string
		target     roles.Role
		wantAllow  bool
		wantReason Reason
	}{
		{
			name:      "admin deletes trainer account",
			actor:     principalWith("a-1", roles.RoleAdmin),
			action:    "delete",
			target:    roles.RoleTrainer,
			wantAllow: true,
		},
		{
			name:       "admin cannot delete peer admin",
			actor:      principalWith("a-1", roles.RoleAdmin),
			action:     "delete",
			target:     roles.RoleAdmin,
			wantAllow:  false,
			wantReason: ReasonHierarchyDenied,
		},
		{
			name:      "super-admin manages super-admin",
			actor:     principalWith("sa-1", roles.RoleSuperAdmin),
			action:    "update",
			target:    roles.RoleSuperAdmin,
			wantAllow: true,
		},
		{
			name:       "manager lacks users baseline",
			actor:      principalWith("mg-1", roles.RoleManager),
			action:     "delete",
			target:     roles.RoleMember,
			wantAllow:  false,
			wantReason: ReasonBaselineMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ev.EvaluateUserManagement(testRequest(), tt.actor, tt.action, tt.target)
			if d.Allowed != tt.wantAllow {
				t.Fatalf("EvaluateUserManagement() allowed = %v, want %v (reason %q)", d.Allowed, tt.wantAllow, d.Reason)
			}
			if !tt.wantAllow && d.Reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", d.Reason, tt.wantReason)
			}
		})
	}
}

func TestRequireMiddleware(t *testing.T) {
	ev := newTestEvaluator(t)

	handler := ev.Require("reports", "read")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("granted role reaches handler", func(t *testing.T) {
		r := testRequest()
		out := identity.Outcome{
			Authenticated: true,
			Principal:     principalWith("mg-1", roles.RoleManager),
			Trust:         identity.TrustVerified,
		}
		r = r.WithContext(identity.ContextWithOutcome(r.Context(), out))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, r)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("ungranted role gets 403", func(t *testing.T) {
		r := testRequest()
		out := identity.Outcome{
			Authenticated: true,
			Principal:     principalWith("t-1", roles.RoleTrainer),
			Trust:         identity.TrustVerified,
		}
		r = r.WithContext(identity.ContextWithOutcome(r.Context(), out))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, r)
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("anonymous gets 403", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, testRequest())
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})
}
