// GymGate - Fitness Club Management Portal Gateway
// Copyright 2026 ClubWorks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clubworks/gymgate

// Package api provides the gateway's HTTP surface: the chi router, the
// management API for accounts and training data, and the portal fallback.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/clubworks/gymgate/internal/authz"
	"github.com/clubworks/gymgate/internal/config"
	"github.com/clubworks/gymgate/internal/gateway"
	"github.com/clubworks/gymgate/internal/identity"
	"github.com/clubworks/gymgate/internal/middleware"
)

// RouterDeps bundles what the router needs.
type RouterDeps struct {
	Config   *config.Config
	Resolver *identity.Resolver
	Engine   *gateway.Engine
	Proxy    http.Handler
	Handler  *Handler
	Enforcer *authz.Enforcer
}

// NewRouter builds the full HTTP surface.
//
// Three tiers share the mux: operational endpoints (/healthz, /metrics) that
// bypass the gateway entirely, the management API under /api/v1 with strict
// authentication, and everything else, which flows through the gateway
// decision engine into the portal reverse proxy.
func NewRouter(deps RouterDeps) http.Handler {
	cfg := deps.Config
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)

	// Operational endpoints for probes and scrapers.
	r.Get("/healthz", handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Management API. Strict authentication: no degraded-trust shortcut
	// here, every endpoint re-checks permissions through the evaluator.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
		if cfg.RateLimit.LoginRequests > 0 {
			r.Use(httprate.LimitByIP(cfg.RateLimit.LoginRequests*10, cfg.RateLimit.LoginWindow))
		}
		r.Use(deps.Resolver.Middleware)
		r.Use(identity.RequireAuth)

		h := deps.Handler

		r.Route("/users", func(r chi.Router) {
			r.Post("/", h.CreateUser)
			r.With(h.evaluator.Require("users", "read")).Get("/", h.ListUsers)
			r.Put("/{id}/role", h.UpdateUserRole)
			r.Delete("/{id}", h.DeleteUser)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", h.CreateSession)
			r.Get("/{id}", h.GetSession)
			r.Put("/{id}", h.UpdateSession)
			r.Delete("/{id}", h.DeleteSession)
		})

		r.Route("/clients", func(r chi.Router) {
			r.Get("/{id}", h.GetClient)
			r.Put("/{id}", h.UpdateClient)
		})

		r.With(h.evaluator.Require("system", "manage")).
			Get("/authz/grants", h.Grants(deps.Enforcer))
	})

	// Portal traffic. The decision engine classifies, resolves identity,
	// and either redirects or hands the request to the reverse proxy.
	portal := deps.Engine.Middleware(deps.Proxy)

	// Login surfaces get per-IP rate limiting against credential stuffing.
	if cfg.RateLimit.LoginRequests > 0 {
		limited := httprate.LimitByIP(cfg.RateLimit.LoginRequests, cfg.RateLimit.LoginWindow)(portal)
		r.Handle(cfg.Gateway.MemberLogin, limited)
		r.Handle(cfg.Gateway.StaffLogin, limited)
	}

	r.NotFound(portal.ServeHTTP)

	return r
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]string{"status": "ok"})
}
