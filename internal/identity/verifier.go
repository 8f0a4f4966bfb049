// GymGate - Fitness Club Management Portal Gateway
// Copyright 2026 ClubWorks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clubworks/gymgate

package identity

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/clubworks/gymgate/internal/logging"
	"github.com/clubworks/gymgate/internal/metrics"
)

// ErrVerifyUnavailable is returned when the verification service did not
// produce a usable answer (transport failure, timeout, non-2xx status, or
// open circuit).
var ErrVerifyUnavailable = errors.New("session verification unavailable")

// VerifiedUser is the principal payload of a successful verification.
type VerifiedUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Name  string `json:"name"`
}

// VerifyResult is the session verification response contract. A completed
// check returns HTTP 2xx even when Authenticated is false.
type VerifyResult struct {
	Authenticated bool          `json:"authenticated"`
	User          *VerifiedUser `json:"user,omitempty"`
	System        string        `json:"system,omitempty"`
}

// Verifier checks a credential against the session store.
type Verifier interface {
	// Verify performs one verification attempt. The original request is
	// passed so its credential carrier can be forwarded unmodified.
	Verify(ctx context.Context, r *http.Request, token Token) (*VerifyResult, error)
}

// HTTPVerifier calls the session verification endpoint over HTTP.
// It performs exactly one attempt per call; retry policy belongs to callers.
type HTTPVerifier struct {
	url         string
	debugHeader string
	client      *http.Client
}

// NewHTTPVerifier creates a verifier for the given endpoint. The timeout
// bounds the whole call including connection setup and body read.
// debugHeader names the secondary credential carrier to forward.
func NewHTTPVerifier(url, debugHeader string, timeout time.Duration) *HTTPVerifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPVerifier{
		url:         url,
		debugHeader: debugHeader,
		client:      &http.Client{Timeout: timeout},
	}
}

// Verify forwards the original credential carrier to the verification
// endpoint and decodes the answer. The carrier header is copied verbatim so
// the session store sees exactly what the client sent.
func (v *HTTPVerifier) Verify(ctx context.Context, r *http.Request, token Token) (*VerifyResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build verification request: %w", err)
	}

	switch token.Source {
	case SourceSessionCookie:
		copyHeader(req, r, "Cookie")
	case SourceDebugHeader:
		copyHeader(req, r, v.debugHeader)
	case SourceBearer:
		copyHeader(req, r, "Authorization")
	}

	resp, err := v.client.Do(req)
	if err != nil {
		// Double-wrap so callers can still inspect the transport error
		// (the breaker distinguishes caller cancellation from outages).
		return nil, fmt.Errorf("%w: %w", ErrVerifyUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck // draining for connection reuse
		return nil, fmt.Errorf("%w: status %d", ErrVerifyUnavailable, resp.StatusCode)
	}

	var result VerifyResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrVerifyUnavailable, err)
	}
	return &result, nil
}

func copyHeader(dst *http.Request, src *http.Request, name string) {
	if v := src.Header.Get(name); v != "" {
		dst.Header.Set(name, v)
	}
}

// BreakerVerifier wraps a Verifier with a circuit breaker so a dead session
// store sheds load quickly instead of burning the full timeout per request.
//
// The breaker uses real time for its interval and timeout calculations; unit
// tests should exercise the wrapped verifier directly.
type BreakerVerifier struct {
	inner Verifier
	cb    *gobreaker.CircuitBreaker[*VerifyResult]
	name  string
}

// NewBreakerVerifier wraps inner with a circuit breaker. The circuit opens
// after a 60% failure rate across at least 10 requests in a one-minute
// window, and probes again after 30 seconds.
func NewBreakerVerifier(inner Verifier) *BreakerVerifier {
	const name = "session-verify"
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[*VerifyResult](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		// A client hanging up mid-verification says nothing about the
		// session store's health and must not count toward tripping.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", breakerStateName(from)).
				Str("to", breakerStateName(to)).
				Msg("verification circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, breakerStateName(from), breakerStateName(to)).Inc()
		},
	})

	return &BreakerVerifier{inner: inner, cb: cb, name: name}
}

// Verify delegates through the circuit breaker. An open circuit surfaces as
// ErrVerifyUnavailable, which the resolver treats like any transport failure.
func (b *BreakerVerifier) Verify(ctx context.Context, r *http.Request, token Token) (*VerifyResult, error) {
	result, err := b.cb.Execute(func() (*VerifyResult, error) {
		return b.inner.Verify(ctx, r, token)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrVerifyUnavailable, err)
		}
		return nil, err
	}
	return result, nil
}

func breakerStateName(s gobreaker.State) string {
	switch s {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
