// GymGate - Fitness Club Management Portal Gateway
// Copyright 2026 ClubWorks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clubworks/gymgate

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/clubworks/gymgate/internal/authz"
	"github.com/clubworks/gymgate/internal/identity"
	"github.com/clubworks/gymgate/internal/store"
)

// CreateSessionRequest is the payload for scheduling a training session.
type CreateSessionRequest struct {
	Title     string    `json:"title" validate:"required,min=1,max=200"`
	TrainerID string    `json:"trainer_id" validate:"required"`
	StartsAt  time.Time `json:"starts_at" validate:"required"`
	Capacity  int       `json:"capacity" validate:"gte=0,lte=500"`
}

// UpdateSessionRequest is the payload for amending a session.
type UpdateSessionRequest struct {
	Title    string    `json:"title" validate:"required,min=1,max=200"`
	StartsAt time.Time `json:"starts_at" validate:"required"`
	Capacity int       `json:"capacity" validate:"gte=0,lte=500"`
}

// CreateSession schedules a session. Managers and above hold the
// sessions/create grant.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req CreateSessionRequest
	if !h.decodeAndValidate(rw, r, &req) {
		return
	}

	actor := identity.PrincipalFromContext(r.Context())
	if d := h.evaluator.Evaluate(r, actor, authz.PermissionRequest{Resource: "sessions", Action: "create"}); !d.Allowed {
		rw.Error(http.StatusForbidden, ErrCodeForbidden, string(d.Reason))
		return
	}

	s := &store.TrainingSession{
		Title:     req.Title,
		TrainerID: req.TrainerID,
		StartsAt:  req.StartsAt,
		Capacity:  req.Capacity,
	}
	if err := h.sessions.CreateSession(r.Context(), s); err != nil {
		rw.InternalError("failed to create session")
		return
	}
	rw.Created(s)
}

// GetSession returns one session. Any role with the sessions/read grant.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	actor := identity.PrincipalFromContext(r.Context())
	if d := h.evaluator.Evaluate(r, actor, authz.PermissionRequest{Resource: "sessions", Action: "read"}); !d.Allowed {
		rw.Error(http.StatusForbidden, ErrCodeForbidden, string(d.Reason))
		return
	}

	s, err := h.sessions.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			rw.NotFound("no such session")
			return
		}
		rw.InternalError("failed to load session")
		return
	}
	rw.Success(s)
}

// UpdateSession amends a session. Trainers may only amend their own
// sessions; managers and above may amend anyone's.
func (h *Handler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req UpdateSessionRequest
	if !h.decodeAndValidate(rw, r, &req) {
		return
	}

	actor := identity.PrincipalFromContext(r.Context())
	d := h.evaluator.Evaluate(r, actor, authz.PermissionRequest{
		Resource:         "sessions",
		Action:           "update",
		RequireOwnership: true,
		Owner:            h.sessionOwner,
	})
	if !d.Allowed {
		if d.Reason == authz.ReasonOwnershipUnresolved {
			rw.NotFound("no such session")
			return
		}
		rw.Error(http.StatusForbidden, ErrCodeForbidden, string(d.Reason))
		return
	}

	s, err := h.sessions.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		rw.InternalError("failed to load session")
		return
	}
	s.Title = req.Title
	s.StartsAt = req.StartsAt
	s.Capacity = req.Capacity
	if err := h.sessions.UpdateSession(r.Context(), s); err != nil {
		rw.InternalError("failed to update session")
		return
	}
	rw.Success(s)
}

// DeleteSession cancels a session. Requires the manager-level
// sessions/delete grant.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	actor := identity.PrincipalFromContext(r.Context())
	if d := h.evaluator.Evaluate(r, actor, authz.PermissionRequest{Resource: "sessions", Action: "delete"}); !d.Allowed {
		rw.Error(http.StatusForbidden, ErrCodeForbidden, string(d.Reason))
		return
	}

	if err := h.sessions.DeleteSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			rw.NotFound("no such session")
			return
		}
		rw.InternalError("failed to delete session")
		return
	}
	rw.NoContent()
}
