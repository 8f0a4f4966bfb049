// GymGate - Fitness Club Management Portal Gateway
// Copyright 2026 ClubWorks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clubworks/gymgate

package gateway

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/clubworks/gymgate/internal/identity"
	"github.com/clubworks/gymgate/internal/logging"
)

// NewPortalProxy builds the handler that forwards allowed page requests to
// the portal upstream. The resolved principal travels on trusted headers so
// the upstream can render role-specific navigation without re-verifying the
// session.
func NewPortalProxy(upstreamURL string) (http.Handler, error) {
	target, err := url.Parse(upstreamURL)
	if err != nil {
		return nil, fmt.Errorf("invalid portal upstream %q: %w", upstreamURL, err)
	}

	proxy := httputil.NewSingleHostReverseProxy(target)

	director := proxy.Director
	proxy.Director = func(req *http.Request) {
		director(req)
		// Strip any spoofed identity headers before stamping our own.
		req.Header.Del("X-Portal-User")
		req.Header.Del("X-Portal-Role")
		req.Header.Del("X-Portal-Trust")

		out, ok := identity.OutcomeFromContext(req.Context())
		if !ok || !out.Authenticated || out.Principal == nil {
			return
		}
		req.Header.Set("X-Portal-User", out.Principal.ID)
		req.Header.Set("X-Portal-Role", out.Principal.Role.String())
		req.Header.Set("X-Portal-Trust", out.Trust.String())
	}

	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("portal upstream unreachable")
		http.Error(w, "portal temporarily unavailable", http.StatusBadGateway)
	}

	return proxy, nil
}
