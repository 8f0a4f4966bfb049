// GymGate - Fitness Club Management Portal Gateway
// Copyright 2026 ClubWorks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clubworks/gymgate

// Package store holds the gateway's small domain records: user accounts for
// role administration, and the session/client ownership bindings the
// permission evaluator resolves owners against.
//
// The gateway is not the system of record for club data; it keeps only what
// authorization decisions need. The interfaces allow a database-backed
// implementation later, the in-memory one is sufficient for a single
// gateway instance fed by the portal's sync hooks.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/clubworks/gymgate/internal/roles"
)

var (
	// ErrNotFound indicates the record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyExists indicates a conflicting record exists.
	ErrAlreadyExists = errors.New("record already exists")
)

// User is a portal account as the gateway sees it.
type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      roles.Role `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TrainingSession is a scheduled class or personal-training slot. TrainerID
// identifies the owning trainer for ownership checks.
type TrainingSession struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	TrainerID string    `json:"trainer_id"`
	StartsAt  time.Time `json:"starts_at"`
	Capacity  int       `json:"capacity"`
}

// ClientRecord binds a member to their assigned trainer. TrainerID
// identifies the owning trainer for ownership checks.
type ClientRecord struct {
	ID        string `json:"id"`
	MemberID  string `json:"member_id"`
	TrainerID string `json:"trainer_id"`
	Notes     string `json:"notes,omitempty"`
}

// UserStore persists portal accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	UpdateUserRole(ctx context.Context, id string, role roles.Role) (*User, error)
	DeleteUser(ctx context.Context, id string) error
}

// SessionStore persists training sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, s *TrainingSession) error
	GetSession(ctx context.Context, id string) (*TrainingSession, error)
	UpdateSession(ctx context.Context, s *TrainingSession) error
	DeleteSession(ctx context.Context, id string) error
}

// ClientStore persists client-trainer assignments.
type ClientStore interface {
	CreateClient(ctx context.Context, c *ClientRecord) error
	GetClient(ctx context.Context, id string) (*ClientRecord, error)
	UpdateClient(ctx context.Context, c *ClientRecord) error
}
