// GymGate - Fitness Club Management Portal Gateway
// Copyright 2026 ClubWorks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clubworks/gymgate

package identity

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/clubworks/gymgate/internal/config"
	"github.com/clubworks/gymgate/internal/logging"
	"github.com/clubworks/gymgate/internal/metrics"
	"github.com/clubworks/gymgate/internal/roles"
)

// Resolver produces an authentication Outcome for each request.
type Resolver struct {
	verifier Verifier
	cfg      config.IdentityConfig
}

// NewResolver creates a resolver using the given verifier. When the config
// enables the circuit breaker, wrap the verifier with NewBreakerVerifier
// before passing it in; the resolver itself is policy only.
func NewResolver(verifier Verifier, cfg config.IdentityConfig) *Resolver {
	return &Resolver{verifier: verifier, cfg: cfg}
}

// NewResolverFromConfig builds the production resolver: HTTP verifier with
// the configured endpoint and timeout, circuit breaker per config.
func NewResolverFromConfig(cfg config.IdentityConfig) *Resolver {
	var v Verifier = NewHTTPVerifier(cfg.VerifyURL, cfg.DebugHeader, cfg.VerifyTimeout)
	if cfg.BreakerEnabled {
		v = NewBreakerVerifier(v)
	}
	return NewResolver(v, cfg)
}

// Resolve determines who is making the request.
//
// Without a credential token the resolver answers immediately: no network
// call is made. With a token it issues exactly one bounded verification call,
// derived from the request context so a client disconnect cancels the
// outstanding call. Verification failure with a token present falls back per
// the configured fail mode: open yields a degraded-trust authenticated
// outcome, closed yields unauthenticated.
func (rv *Resolver) Resolve(r *http.Request) Outcome {
	token, ok := extractToken(r, rv.cfg.SessionCookie, rv.cfg.DebugHeader)
	if !ok {
		metrics.RecordIdentityVerification("no_credential", 0)
		return anonymous()
	}

	ctx, cancel := context.WithTimeout(r.Context(), rv.cfg.VerifyTimeout)
	defer cancel()

	start := time.Now()
	result, err := rv.verifier.Verify(ctx, r, token)
	elapsed := time.Since(start)

	if err != nil {
		return rv.fallback(r.Context(), token, err, elapsed)
	}

	if !result.Authenticated {
		metrics.RecordIdentityVerification("anonymous", elapsed)
		return anonymous()
	}

	principal := &Principal{}
	if result.User != nil {
		principal = &Principal{
			ID:    result.User.ID,
			Email: result.User.Email,
			Role:  roles.Normalize(result.User.Role),
			Name:  result.User.Name,
		}
	}
	metrics.RecordIdentityVerification("verified", elapsed)
	return Outcome{Authenticated: true, Principal: principal, Trust: TrustVerified}
}

// fallback applies the configured fail mode after a verification failure
// with a credential token present.
func (rv *Resolver) fallback(ctx context.Context, token Token, err error, elapsed time.Duration) Outcome {
	if rv.cfg.FailMode == config.FailModeClosed {
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("carrier", token.Source.String()).
			Msg("session verification failed, denying per fail_mode=closed")
		metrics.RecordIdentityVerification("failed", elapsed)
		return anonymous()
	}

	principal := bestEffortPrincipal(token)
	logging.Ctx(ctx).Warn().
		Err(err).
		Str("carrier", token.Source.String()).
		Str("principal_id", principal.ID).
		Msg("session verification unreachable, granting degraded trust")
	metrics.RecordIdentityVerification("degraded", elapsed)
	return Outcome{Authenticated: true, Principal: principal, Trust: TrustDegraded}
}

// bestEffortPrincipal builds a principal from the unverified credential.
// Session tokens issued by the portal are JWTs, so the claims usually yield a
// usable identity; anything else produces the zero-privilege sentinel. The
// claims are NOT signature-checked here, which is why the outcome is marked
// degraded.
func bestEffortPrincipal(token Token) *Principal {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token.Value, claims); err != nil {
		return &Principal{Role: roles.RoleUnknown}
	}

	p := &Principal{Role: roles.RoleUnknown}
	if sub, err := claims.GetSubject(); err == nil {
		p.ID = sub
	}
	if email, ok := claims["email"].(string); ok {
		p.Email = email
	}
	if role, ok := claims["role"].(string); ok {
		p.Role = roles.Normalize(role)
	}
	if name, ok := claims["name"].(string); ok {
		p.Name = name
	}
	return p
}
