// GymGate - Fitness Club Management Portal Gateway
// Copyright 2026 ClubWorks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clubworks/gymgate

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clubworks/gymgate/internal/authz"
	"github.com/clubworks/gymgate/internal/identity"
	"github.com/clubworks/gymgate/internal/logging"
	"github.com/clubworks/gymgate/internal/roles"
	"github.com/clubworks/gymgate/internal/store"
)

// CreateUserRequest is the payload for account creation.
type CreateUserRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required,min=1,max=200"`
	Role  string `json:"role" validate:"required"`
}

// UpdateRoleRequest is the payload for a role change.
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// CreateUser creates an account. The actor must hold the users/create grant
// and strictly outrank the requested role; the super-admin tier can never be
// assigned.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req CreateUserRequest
	if !h.decodeAndValidate(rw, r, &req) {
		return
	}

	target := roles.Normalize(req.Role)
	if !target.Known() {
		rw.BadRequest("unknown role: " + req.Role)
		return
	}

	actor := identity.PrincipalFromContext(r.Context())
	if d := h.evaluator.EvaluateRoleCreation(r, actor, target); !d.Allowed {
		rw.Error(http.StatusForbidden, ErrCodeForbidden, string(d.Reason))
		return
	}

	u := &store.User{Email: req.Email, Name: req.Name, Role: target}
	if err := h.users.CreateUser(r.Context(), u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			rw.Conflict("account already exists")
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("user creation failed")
		rw.InternalError("failed to create user")
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("actor_id", actor.ID).
		Str("user_id", u.ID).
		Str("role", target.String()).
		Msg("account created")
	rw.Created(u)
}

// ListUsers returns all accounts. Requires the users/read grant.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("user listing failed")
		rw.InternalError("failed to list users")
		return
	}
	rw.Success(users)
}

// UpdateUserRole changes an account's role. The actor must strictly outrank
// both the account's current role and the requested one.
func (h *Handler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req UpdateRoleRequest
	if !h.decodeAndValidate(rw, r, &req) {
		return
	}

	target := roles.Normalize(req.Role)
	if !target.Known() {
		rw.BadRequest("unknown role: " + req.Role)
		return
	}

	id := chi.URLParam(r, "id")
	current, err := h.users.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			rw.NotFound("no such user")
			return
		}
		rw.InternalError("failed to load user")
		return
	}

	actor := identity.PrincipalFromContext(r.Context())
	if d := h.evaluator.EvaluateUserManagement(r, actor, "update", current.Role); !d.Allowed {
		rw.Error(http.StatusForbidden, ErrCodeForbidden, string(d.Reason))
		return
	}
	if d := h.evaluator.EvaluateRoleCreation(r, actor, target); !d.Allowed {
		rw.Error(http.StatusForbidden, ErrCodeForbidden, string(d.Reason))
		return
	}

	updated, err := h.users.UpdateUserRole(r.Context(), id, target)
	if err != nil {
		rw.InternalError("failed to update role")
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("actor_id", actor.ID).
		Str("user_id", id).
		Str("old_role", current.Role.String()).
		Str("new_role", target.String()).
		Msg("account role changed")
	rw.Success(updated)
}

// DeleteUser removes an account. The actor must strictly outrank the
// account's role; only super-admins can remove super-admins.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id := chi.URLParam(r, "id")
	current, err := h.users.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			rw.NotFound("no such user")
			return
		}
		rw.InternalError("failed to load user")
		return
	}

	actor := identity.PrincipalFromContext(r.Context())
	if d := h.evaluator.EvaluateUserManagement(r, actor, "delete", current.Role); !d.Allowed {
		rw.Error(http.StatusForbidden, ErrCodeForbidden, string(d.Reason))
		return
	}

	if err := h.users.DeleteUser(r.Context(), id); err != nil {
		rw.InternalError("failed to delete user")
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("actor_id", actor.ID).
		Str("user_id", id).
		Str("role", current.Role.String()).
		Msg("account deleted")
	rw.NoContent()
}

// Grants returns the static permission table for inspection by admins.
func (h *Handler) Grants(enforcer *authz.Enforcer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Success(enforcer.Grants())
	}
}
