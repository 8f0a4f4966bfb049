// GymGate - Fitness Club Management Portal Gateway
// Copyright 2026 ClubWorks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clubworks/gymgate

package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clubworks/gymgate/internal/roles"
)

// MemoryStore is an in-memory implementation of all three stores. Safe for
// concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]*User
	sessions map[string]*TrainingSession
	clients  map[string]*ClientRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]*User),
		sessions: make(map[string]*TrainingSession),
		clients:  make(map[string]*ClientRecord),
	}
}

// CreateUser stores a new account, assigning an ID when absent.
func (m *MemoryStore) CreateUser(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if _, ok := m.users[u.ID]; ok {
		return fmt.Errorf("user %s: %w", u.ID, ErrAlreadyExists)
	}
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return fmt.Errorf("email %s: %w", u.Email, ErrAlreadyExists)
		}
	}

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	m.users[u.ID] = cloneUser(u)
	return nil
}

// GetUser returns the account with the given ID.
func (m *MemoryStore) GetUser(_ context.Context, id string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return cloneUser(u), nil
}

// ListUsers returns all accounts ordered by creation time.
func (m *MemoryStore) ListUsers(_ context.Context) ([]*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// UpdateUserRole changes an account's role.
func (m *MemoryStore) UpdateUserRole(_ context.Context, id string, role roles.Role) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	u.Role = role
	u.UpdatedAt = time.Now()
	return cloneUser(u), nil
}

// DeleteUser removes an account.
func (m *MemoryStore) DeleteUser(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	delete(m.users, id)
	return nil
}

// CreateSession stores a new training session.
func (m *MemoryStore) CreateSession(_ context.Context, s *TrainingSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if _, ok := m.sessions[s.ID]; ok {
		return fmt.Errorf("session %s: %w", s.ID, ErrAlreadyExists)
	}
	m.sessions[s.ID] = cloneSession(s)
	return nil
}

// GetSession returns the session with the given ID.
func (m *MemoryStore) GetSession(_ context.Context, id string) (*TrainingSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return cloneSession(s), nil
}

// UpdateSession replaces a stored session.
func (m *MemoryStore) UpdateSession(_ context.Context, s *TrainingSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[s.ID]; !ok {
		return fmt.Errorf("session %s: %w", s.ID, ErrNotFound)
	}
	m.sessions[s.ID] = cloneSession(s)
	return nil
}

// DeleteSession removes a session.
func (m *MemoryStore) DeleteSession(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	delete(m.sessions, id)
	return nil
}

// CreateClient stores a new client assignment.
func (m *MemoryStore) CreateClient(_ context.Context, c *ClientRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if _, ok := m.clients[c.ID]; ok {
		return fmt.Errorf("client %s: %w", c.ID, ErrAlreadyExists)
	}
	m.clients[c.ID] = cloneClient(c)
	return nil
}

// GetClient returns the client record with the given ID.
func (m *MemoryStore) GetClient(_ context.Context, id string) (*ClientRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.clients[id]
	if !ok {
		return nil, fmt.Errorf("client %s: %w", id, ErrNotFound)
	}
	return cloneClient(c), nil
}

// UpdateClient replaces a stored client record.
func (m *MemoryStore) UpdateClient(_ context.Context, c *ClientRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.clients[c.ID]; !ok {
		return fmt.Errorf("client %s: %w", c.ID, ErrNotFound)
	}
	m.clients[c.ID] = cloneClient(c)
	return nil
}

func cloneUser(u *User) *User {
	cp := *u
	return &cp
}

func cloneSession(s *TrainingSession) *TrainingSession {
	cp := *s
	return &cp
}

func cloneClient(c *ClientRecord) *ClientRecord {
	cp := *c
	return &cp
}
