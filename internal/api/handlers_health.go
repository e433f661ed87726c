// Newshound - Multi-Source News Aggregation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newshound

package api

import (
	"context"
	"net/http"
	"time"
)

type healthResponse struct {
	Status        string     `json:"status"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	ArticleCount  int64      `json:"article_count"`
	LastIngestRun *time.Time `json:"last_ingest_run"`
}

// HealthLive serves GET /api/v1/health/live. It reports process liveness
// only and never touches dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, map[string]string{"status": "alive"}, 0, false)
}

// HealthReady serves GET /api/v1/health/ready, verifying the database is
// reachable.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		respondError(w, http.StatusServiceUnavailable, ErrCodeInternal, "Database not ready", err)
		return
	}
	respondSuccess(w, map[string]string{"status": "ready"}, 0, false)
}

// Health serves GET /api/v1/health with operational detail: uptime,
// stored article count, and when the last ingestion run completed.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	count, err := h.db.CountArticles(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, ErrCodeInternal, "Database not ready", err)
		return
	}

	resp := healthResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		ArticleCount:  count,
	}
	if h.ingest != nil {
		if last := h.ingest.LastRunTime(); !last.IsZero() {
			resp.LastIngestRun = &last
		}
	}
	respondSuccess(w, resp, time.Since(start), false)
}

// TriggerIngest serves POST /api/v1/ingest/trigger, starting an
// ingestion run immediately. Returns 409 when a run is already active.
func (h *Handler) TriggerIngest(w http.ResponseWriter, r *http.Request) {
	if h.ingest == nil {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "Ingestion is not configured", nil)
		return
	}

	start := time.Now()
	stats, err := h.ingest.TriggerRun(r.Context())
	if err != nil {
		respondError(w, http.StatusConflict, ErrCodeConflict, err.Error(), nil)
		return
	}
	respondSuccess(w, stats, time.Since(start), false)
}
