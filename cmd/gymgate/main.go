// GymGate - Fitness Club Management Portal Gateway
// Copyright 2026 ClubWorks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clubworks/gymgate

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/clubworks/gymgate/internal/api"
	"github.com/clubworks/gymgate/internal/authz"
	"github.com/clubworks/gymgate/internal/config"
	"github.com/clubworks/gymgate/internal/gateway"
	"github.com/clubworks/gymgate/internal/identity"
	"github.com/clubworks/gymgate/internal/logging"
	"github.com/clubworks/gymgate/internal/routes"
	"github.com/clubworks/gymgate/internal/store"
	"github.com/clubworks/gymgate/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Default logger: config (and its logging section) is not available.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("listen_addr", cfg.Server.ListenAddr).
		Str("portal_upstream", cfg.Portal.UpstreamURL).
		Str("verify_url", cfg.Identity.VerifyURL).
		Str("fail_mode", string(cfg.Identity.FailMode)).
		Msg("Configuration loaded")

	// Authorization: grant table, audit trail, evaluator.
	enforcer, err := authz.NewEnforcer(cfg.Authz.ModelPath, cfg.Authz.PolicyPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load permission table")
	}
	audit := authz.NewAuditLogger(&authz.AuditLoggerConfig{
		Enabled:    cfg.Authz.AuditEnabled,
		LogAllowed: !cfg.Authz.AuditDeniedOnly,
		BufferSize: 1000,
	})
	defer audit.Close()
	evaluator := authz.NewEvaluator(enforcer, audit)

	// Identity resolution and gateway decisions.
	resolver := identity.NewResolverFromConfig(cfg.Identity)
	classifier := routes.NewClassifier(cfg.Routes)
	engine := gateway.NewEngine(classifier, resolver, cfg.Gateway)

	proxy, err := gateway.NewPortalProxy(cfg.Portal.UpstreamURL)
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid portal upstream URL")
	}

	// Domain stores backing role administration and ownership checks.
	memStore := store.NewMemoryStore()
	handler := api.NewHandler(memStore, memStore, memStore, evaluator)

	router := api.NewRouter(api.RouterDeps{
		Config:   cfg,
		Resolver: resolver,
		Engine:   engine,
		Proxy:    proxy,
		Handler:  handler,
		Enforcer: enforcer,
	})

	server := &http.Server{
		Addr:         cfg.Server.ListenAddr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge zerolog to slog for sutureslog.
	slogLogger := slog.New(logging.NewSlogHandler())

	tree := supervisor.NewTree(slogLogger, supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddServing(supervisor.NewHTTPService(server, cfg.Server.ShutdownTimeout))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Gateway stopped gracefully")
}
