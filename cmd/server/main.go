// Newshound - Multi-Source News Aggregation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newshound

// Package main is the entry point for the Newshound server application.
//
// Newshound is a self-hosted news aggregation service that periodically
// pulls articles from configured upstream APIs (NewsAPI, The Guardian,
// The New York Times, or any source described in configuration), normalizes
// them into a single schema, and serves them through a filtered, paginated
// REST API with per-user preferences.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Load settings from environment variables and config files (Koanf v2)
//  2. Database: Initialize DuckDB for article and preference storage
//  3. Cache: In-memory or BadgerDB-backed listing cache
//  4. Ingestion: Rate-limited source clients behind per-source circuit breakers
//  5. Authentication: Configure JWT or no-auth mode
//  6. HTTP Server: REST API under /api/v1 with Prometheus metrics
//
// All long-running components run under a suture supervisor tree so a
// crash in the ingestion layer never takes down the API layer.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables
//   - Config file (config.yaml)
//   - Built-in defaults
//
// Source credentials are always taken from the environment:
//   - NEWSAPI_API_KEY, GUARDIAN_API_KEY, NYTIMES_API_KEY
//   - <SOURCE>_API_KEY for any custom source key
//
// For JWT authentication (default):
//   - JWT_SECRET: 32+ character secret for token signing
//   - ADMIN_USERNAME: Admin username
//   - ADMIN_PASSWORD: Admin password
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (10s timeout)
//   - Drains any in-flight ingestion run
//   - Closes the cache and database
//
// # Example Usage
//
// Development without authentication:
//
//	export NEWSAPI_API_KEY=your-key
//	export AUTH_MODE=none
//	./newshound
//
// Production with JWT:
//
//	export NEWSAPI_API_KEY=your-key
//	export GUARDIAN_API_KEY=your-key
//	export JWT_SECRET=$(openssl rand -base64 32)
//	export ADMIN_USERNAME=admin
//	export ADMIN_PASSWORD=secure-password
//	./newshound
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/newshound/internal/api"
	"github.com/tomtom215/newshound/internal/auth"
	"github.com/tomtom215/newshound/internal/cache"
	"github.com/tomtom215/newshound/internal/config"
	"github.com/tomtom215/newshound/internal/database"
	"github.com/tomtom215/newshound/internal/ingest"
	"github.com/tomtom215/newshound/internal/logging"
	"github.com/tomtom215/newshound/internal/supervisor"
	"github.com/tomtom215/newshound/internal/supervisor/services"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Msg("Starting Newshound with supervisor tree")
	logging.Info().
		Int("sources", len(cfg.Sources)).
		Str("db_path", cfg.Database.Path).
		Str("cache_store", cfg.Cache.Store).
		Str("auth_mode", cfg.Security.AuthMode).
		Msg("Configuration loaded")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	cacheStore, err := cache.NewStore(&cfg.Cache)
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error().Err(closeErr).Msg("Error closing database")
		}
		logging.Fatal().Err(err).Msg("Failed to initialize cache")
	}
	defer func() {
		if err := cacheStore.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing cache")
		}
	}()

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Ingestion pipeline: rate-limited HTTP client behind per-source
	// circuit breakers, driven by the scheduling manager.
	client := ingest.NewClient(&cfg.Ingest)
	fetcher := ingest.NewBreakerClient(client, cfg.Sources)
	ingestMgr := ingest.NewManager(db, cacheStore, fetcher, cfg)

	var jwtManager *auth.JWTManager
	var creds *auth.CredentialChecker

	switch cfg.Security.AuthMode {
	case "jwt":
		jwtManager, err = auth.NewJWTManager(&cfg.Security)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
		}
		creds, err = auth.NewCredentialChecker(&cfg.Security)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize credential checker")
		}
		logging.Info().Msg("JWT authentication enabled")
	case "none":
		logging.Warn().Msg("============================================================")
		logging.Warn().Msg("  SECURITY WARNING: Authentication is DISABLED (AUTH_MODE=none)")
		logging.Warn().Msg("  ")
		logging.Warn().Msg("  All requests are treated as guest requests; preferences and")
		logging.Warn().Msg("  manual ingestion triggers are unavailable.")
		logging.Warn().Msg("  ")
		logging.Warn().Msg("  NEVER use AUTH_MODE=none in production or on public networks!")
		logging.Warn().Msg("============================================================")
	}

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (RATE_LIMIT_DISABLED=true)")
	}

	authMW := auth.NewMiddleware(jwtManager, cfg.Security.AuthMode == "none",
		func(w http.ResponseWriter, r *http.Request, reason string) {
			api.RespondUnauthorized(w, reason)
		})

	handler := api.NewHandler(db, ingestMgr, cfg, cacheStore, jwtManager, creds)
	router := api.NewRouter(handler, authMW, api.NewChiMiddleware(&cfg.Security))

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Bridge zerolog to slog for sutureslog compatibility.
	slogLogger := logging.NewSlogLogger()

	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddIngestService(services.NewIngestService(ingestMgr))
	logging.Info().
		Dur("interval", cfg.Ingest.Interval).
		Bool("run_on_startup", cfg.Ingest.RunOnStartup).
		Msg("Ingestion manager added to supervisor tree")

	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
