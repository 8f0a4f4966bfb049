// GymGate - Fitness Club Management Portal Gateway
// Copyright 2026 ClubWorks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clubworks/gymgate

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/clubworks/gymgate/internal/authz"
	"github.com/clubworks/gymgate/internal/roles"
	"github.com/clubworks/gymgate/internal/store"
)

// maxRequestBody bounds JSON payloads accepted by the API.
const maxRequestBody = 1 << 20 // 1 MiB

// Handler holds the dependencies shared by all API endpoints.
type Handler struct {
	users     store.UserStore
	sessions  store.SessionStore
	clients   store.ClientStore
	evaluator *authz.Evaluator
	validate  *validator.Validate
}

// NewHandler creates the API handler set.
func NewHandler(users store.UserStore, sessions store.SessionStore, clients store.ClientStore, evaluator *authz.Evaluator) *Handler {
	return &Handler{
		users:     users,
		sessions:  sessions,
		clients:   clients,
		evaluator: evaluator,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

// decodeAndValidate reads a JSON body into dst and runs struct validation.
// Returns false after writing the error response when the payload is bad.
func (h *Handler) decodeAndValidate(rw *ResponseWriter, r *http.Request, dst interface{}) bool {
	body := http.MaxBytesReader(rw.w, r.Body, maxRequestBody)
	defer body.Close()

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		rw.BadRequest("invalid JSON payload: " + err.Error())
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		var details []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				details = append(details, fe.Field()+" failed "+fe.Tag())
			}
		}
		rw.ValidationError("request validation failed", details)
		return false
	}
	return true
}

// sessionOwner resolves the trainer bound to the session named in the URL.
func (h *Handler) sessionOwner(r *http.Request) (authz.Owner, error) {
	sess, err := h.sessions.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return authz.Owner{}, err
	}
	return authz.Owner{ID: sess.TrainerID, Role: roles.RoleTrainer}, nil
}

// clientOwner resolves the trainer assigned to the client record named in
// the URL.
func (h *Handler) clientOwner(r *http.Request) (authz.Owner, error) {
	c, err := h.clients.GetClient(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return authz.Owner{}, err
	}
	return authz.Owner{ID: c.TrainerID, Role: roles.RoleTrainer}, nil
}
