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
	"github.com/clubworks/gymgate/internal/store"
)

// UpdateClientRequest is the payload for updating a client record.
type UpdateClientRequest struct {
	Notes string `json:"notes" validate:"max=2000"`
}

// GetClient returns one client record. Trainers see only their own clients;
// managers and above see everyone's.
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	actor := identity.PrincipalFromContext(r.Context())
	d := h.evaluator.Evaluate(r, actor, authz.PermissionRequest{
		Resource:         "clients",
		Action:           "read",
		RequireOwnership: true,
		Owner:            h.clientOwner,
	})
	if !d.Allowed {
		if d.Reason == authz.ReasonOwnershipUnresolved {
			rw.NotFound("no such client")
			return
		}
		rw.Error(http.StatusForbidden, ErrCodeForbidden, string(d.Reason))
		return
	}

	c, err := h.clients.GetClient(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		rw.InternalError("failed to load client")
		return
	}
	rw.Success(c)
}

// UpdateClient amends a client record under the same ownership rule as
// GetClient.
func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req UpdateClientRequest
	if !h.decodeAndValidate(rw, r, &req) {
		return
	}

	actor := identity.PrincipalFromContext(r.Context())
	d := h.evaluator.Evaluate(r, actor, authz.PermissionRequest{
		Resource:         "clients",
		Action:           "update",
		RequireOwnership: true,
		Owner:            h.clientOwner,
	})
	if !d.Allowed {
		if d.Reason == authz.ReasonOwnershipUnresolved {
			rw.NotFound("no such client")
			return
		}
		rw.Error(http.StatusForbidden, ErrCodeForbidden, string(d.Reason))
		return
	}

	c, err := h.clients.GetClient(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			rw.NotFound("no such client")
			return
		}
		rw.InternalError("failed to load client")
		return
	}
	c.Notes = req.Notes
	if err := h.clients.UpdateClient(r.Context(), c); err != nil {
		rw.InternalError("failed to update client")
		return
	}
	rw.Success(c)
}
