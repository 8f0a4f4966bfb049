// GymGate - Fitness Club Management Portal Gateway
// Copyright 2026 ClubWorks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clubworks/gymgate

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validation errors.
var (
	ErrMissingVerifyURL  = errors.New("identity.verify_url is required")
	ErrInvalidFailMode   = errors.New("identity.fail_mode must be \"open\" or \"closed\"")
	ErrInvalidUpstream   = errors.New("portal.upstream_url must be a valid http(s) URL")
	ErrInvalidLoginPath  = errors.New("gateway login surfaces must be absolute paths")
	ErrNonPositiveWindow = errors.New("ratelimit.login_window must be positive when requests > 0")
)

// Validate checks the configuration for internal consistency. It is called by
// Load; call it directly when constructing a Config by hand in tests.
func (c *Config) Validate() error {
	if c.Identity.VerifyURL == "" {
		return ErrMissingVerifyURL
	}
	if _, err := url.Parse(c.Identity.VerifyURL); err != nil {
		return fmt.Errorf("identity.verify_url: %w", err)
	}

	switch c.Identity.FailMode {
	case FailModeOpen, FailModeClosed:
	default:
		return fmt.Errorf("%w, got %q", ErrInvalidFailMode, c.Identity.FailMode)
	}

	if c.Identity.VerifyTimeout <= 0 {
		return errors.New("identity.verify_timeout must be positive")
	}

	u, err := url.Parse(c.Portal.UpstreamURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ErrInvalidUpstream
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidUpstream
	}

	for _, p := range []string{c.Gateway.MemberLogin, c.Gateway.StaffLogin, c.Gateway.Home} {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("%w, got %q", ErrInvalidLoginPath, p)
		}
	}

	if c.RateLimit.LoginRequests > 0 && c.RateLimit.LoginWindow <= 0 {
		return ErrNonPositiveWindow
	}

	return nil
}
