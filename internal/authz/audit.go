// GymGate - Fitness Club Management Portal Gateway
// Copyright 2026 ClubWorks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clubworks/gymgate

package authz

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clubworks/gymgate/internal/logging"
)

// AuditEvent captures the full context of one permission decision for
// security review. Events are emitted as structured log lines so the
// existing log pipeline picks them up without a separate sink.
type AuditEvent struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	RequestID string        `json:"request_id,omitempty"`
	ActorID   string        `json:"actor_id"`
	ActorRole string        `json:"actor_role,omitempty"`
	Resource  string        `json:"resource"`
	Action    string        `json:"action"`
	Decision  bool          `json:"decision"`
	Reason    string        `json:"reason,omitempty"`
	Duration  time.Duration `json:"duration_ns"`
	Method    string        `json:"method,omitempty"`
	Path      string        `json:"path,omitempty"`
}

// AuditLoggerConfig controls which decisions get recorded.
type AuditLoggerConfig struct {
	Enabled bool `koanf:"enabled"`

	// LogAllowed controls whether allowed decisions are recorded.
	// Denials are always recorded while the logger is enabled.
	LogAllowed bool `koanf:"log_allowed"`

	// BufferSize is the async buffer size. Events are dropped rather
	// than blocking request handling when the buffer is full.
	BufferSize int `koanf:"buffer_size"`
}

// DefaultAuditLoggerConfig returns production defaults.
func DefaultAuditLoggerConfig() *AuditLoggerConfig {
	return &AuditLoggerConfig{
		Enabled:    true,
		LogAllowed: true,
		BufferSize: 1000,
	}
}

// AuditLogger records permission decisions asynchronously.
type AuditLogger struct {
	config   *AuditLoggerConfig
	events   chan *AuditEvent
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewAuditLogger creates an audit logger and starts its worker when enabled.
func NewAuditLogger(config *AuditLoggerConfig) *AuditLogger {
	if config == nil {
		config = DefaultAuditLoggerConfig()
	}
	if config.BufferSize <= 0 {
		config.BufferSize = 1000
	}

	al := &AuditLogger{
		config:   config,
		events:   make(chan *AuditEvent, config.BufferSize),
		stopChan: make(chan struct{}),
	}

	if config.Enabled {
		al.wg.Add(1)
		go al.processEvents()
	}

	return al
}

// LogDecision queues one decision. Non-blocking: a full buffer drops the
// event with a warning instead of stalling the request path.
func (al *AuditLogger) LogDecision(event *AuditEvent) {
	if al == nil || !al.config.Enabled {
		return
	}
	if event.Decision && !al.config.LogAllowed {
		return
	}

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case al.events <- event:
	default:
		logging.Warn().
			Str("actor_id", event.ActorID).
			Str("resource", event.Resource).
			Msg("Audit log buffer full, event dropped")
	}
}

func (al *AuditLogger) processEvents() {
	defer al.wg.Done()

	for {
		select {
		case <-al.stopChan:
			al.drainEvents()
			return
		case event := <-al.events:
			al.writeEvent(event)
		}
	}
}

func (al *AuditLogger) drainEvents() {
	for {
		select {
		case event := <-al.events:
			al.writeEvent(event)
		default:
			return
		}
	}
}

// writeEvent emits the event as a structured log line. Denials log at warn
// level so they surface in alerting without a dedicated pipeline.
func (al *AuditLogger) writeEvent(event *AuditEvent) {
	logEvent := logging.Info()
	if !event.Decision {
		logEvent = logging.Warn()
	}

	logEvent = logEvent.
		Str("event_type", "permission_decision").
		Str("audit_id", event.ID).
		Time("audit_timestamp", event.Timestamp).
		Str("actor_id", event.ActorID).
		Str("resource", event.Resource).
		Str("action", event.Action).
		Bool("decision", event.Decision).
		Dur("duration", event.Duration)

	if event.ActorRole != "" {
		logEvent = logEvent.Str("actor_role", event.ActorRole)
	}
	if event.RequestID != "" {
		logEvent = logEvent.Str("request_id", event.RequestID)
	}
	if event.Reason != "" {
		logEvent = logEvent.Str("reason", event.Reason)
	}
	if event.Method != "" {
		logEvent = logEvent.Str("method", event.Method)
	}
	if event.Path != "" {
		logEvent = logEvent.Str("path", event.Path)
	}

	if event.Decision {
		logEvent.Msg("Permission allowed")
	} else {
		logEvent.Msg("Permission denied")
	}
}

// Close stops the worker and flushes any buffered events.
func (al *AuditLogger) Close() {
	if al == nil {
		return
	}
	al.stopOnce.Do(func() {
		close(al.stopChan)
	})
	al.wg.Wait()
}
