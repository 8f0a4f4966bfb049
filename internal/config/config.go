// GymGate - Fitness Club Management Portal Gateway
// Copyright 2026 ClubWorks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clubworks/gymgate

// Package config loads GymGate configuration via Koanf v2 with layered
// sources: built-in defaults, an optional YAML file, then environment
// variables (highest priority).
package config

import (
	"time"

	"github.com/clubworks/gymgate/internal/routes"
)

// Config is the complete gateway configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Portal    PortalConfig    `koanf:"portal"`
	Identity  IdentityConfig  `koanf:"identity"`
	Gateway   GatewayConfig   `koanf:"gateway"`
	Routes    routes.Tables   `koanf:"routes"`
	Logging   LoggingConfig   `koanf:"logging"`
	RateLimit RateLimitConfig `koanf:"ratelimit"`
	Authz     AuthzConfig     `koanf:"authz"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	// ListenAddr is the address the gateway binds to.
	ListenAddr string `koanf:"listen_addr"`

	// ReadTimeout bounds request header+body reads.
	ReadTimeout time.Duration `koanf:"read_timeout"`

	// WriteTimeout bounds response writes.
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// ShutdownTimeout is the grace period for in-flight requests on shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// CORSOrigins lists allowed origins for the API.
	CORSOrigins []string `koanf:"cors_origins"`
}

// PortalConfig holds the upstream that renders portal pages. Requests the
// gateway allows are reverse-proxied there.
type PortalConfig struct {
	// UpstreamURL is the base URL of the portal frontend.
	UpstreamURL string `koanf:"upstream_url"`
}

// FailMode selects behavior when the session verification service cannot be
// reached while a credential token is present.
type FailMode string

const (
	// FailModeOpen produces a degraded-trust authenticated outcome. This is
	// the inherited portal behavior and the default.
	FailModeOpen FailMode = "open"

	// FailModeClosed treats an unverifiable credential as unauthenticated.
	FailModeClosed FailMode = "closed"
)

// IdentityConfig holds session verification settings.
type IdentityConfig struct {
	// VerifyURL is the session verification endpoint.
	VerifyURL string `koanf:"verify_url"`

	// VerifyTimeout bounds a single verification call. No retries are made.
	VerifyTimeout time.Duration `koanf:"verify_timeout"`

	// FailMode is "open" (degraded trust on outage, the default) or "closed".
	FailMode FailMode `koanf:"fail_mode"`

	// SessionCookie is the primary credential carrier.
	SessionCookie string `koanf:"session_cookie"`

	// DebugHeader is the secondary credential carrier, used by integration
	// tooling.
	DebugHeader string `koanf:"debug_header"`

	// BreakerEnabled wraps verification calls in a circuit breaker.
	BreakerEnabled bool `koanf:"breaker_enabled"`
}

// GatewayConfig holds the login surfaces and home path the decision engine
// redirects to.
type GatewayConfig struct {
	MemberLogin string `koanf:"member_login"`
	StaffLogin  string `koanf:"staff_login"`
	Home        string `koanf:"home"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// RateLimitConfig holds login-surface rate limiting settings.
type RateLimitConfig struct {
	// LoginRequests is the allowed number of login-surface requests per
	// window per client IP. Zero disables the limiter.
	LoginRequests int `koanf:"login_requests"`

	// LoginWindow is the rate-limiting window.
	LoginWindow time.Duration `koanf:"login_window"`
}

// AuthzConfig holds permission evaluator settings.
type AuthzConfig struct {
	// PolicyPath optionally overrides the embedded casbin policy.
	PolicyPath string `koanf:"policy_path"`

	// ModelPath optionally overrides the embedded casbin model.
	ModelPath string `koanf:"model_path"`

	// AuditEnabled emits audit events for evaluator decisions.
	AuditEnabled bool `koanf:"audit_enabled"`

	// AuditDeniedOnly restricts audit output to denials.
	AuditDeniedOnly bool `koanf:"audit_denied_only"`
}

// defaultConfig returns the built-in defaults. These are layered first, then
// overridden by the config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr:      ":8084",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{},
		},
		Portal: PortalConfig{
			UpstreamURL: "http://127.0.0.1:3000",
		},
		Identity: IdentityConfig{
			VerifyURL:      "http://127.0.0.1:4000/api/auth/verify",
			VerifyTimeout:  5 * time.Second,
			FailMode:       FailModeOpen,
			SessionCookie:  "gymgate_session",
			DebugHeader:    "X-Debug-Session",
			BreakerEnabled: true,
		},
		Gateway: GatewayConfig{
			MemberLogin: "/login",
			StaffLogin:  "/staff-login",
			Home:        "/",
		},
		Routes: routes.DefaultTables(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		RateLimit: RateLimitConfig{
			LoginRequests: 30,
			LoginWindow:   time.Minute,
		},
		Authz: AuthzConfig{
			AuditEnabled:    true,
			AuditDeniedOnly: false,
		},
	}
}
