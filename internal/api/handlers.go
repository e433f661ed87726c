// Newshound - Multi-Source News Aggregation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newshound

package api

import (
	"time"

	"github.com/tomtom215/newshound/internal/auth"
	"github.com/tomtom215/newshound/internal/cache"
	"github.com/tomtom215/newshound/internal/config"
	"github.com/tomtom215/newshound/internal/ingest"
	"github.com/tomtom215/newshound/internal/database"
)

// Handler contains dependencies for the API handlers.
//
// Handler methods are split across files:
//   - handlers_articles.go: article listing (the query composer)
//   - handlers_filters.go: filter option discovery
//   - handlers_preferences.go: preference read/save
//   - handlers_auth.go: login
//   - handlers_health.go: liveness and readiness probes
type Handler struct {
	db         *database.DB
	ingest     *ingest.Manager
	config     *config.Config
	cache      cache.Store
	jwtManager *auth.JWTManager
	creds      *auth.CredentialChecker
	startTime  time.Time
}

// NewHandler creates the API handler with its dependencies. jwtManager
// and creds may be nil when AUTH_MODE is "none".
func NewHandler(db *database.DB, ingestMgr *ingest.Manager, cfg *config.Config, cacheStore cache.Store, jwtManager *auth.JWTManager, creds *auth.CredentialChecker) *Handler {
	return &Handler{
		db:         db,
		ingest:     ingestMgr,
		config:     cfg,
		cache:      cacheStore,
		jwtManager: jwtManager,
		creds:      creds,
		startTime:  time.Now(),
	}
}
