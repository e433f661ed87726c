// Newshound - Multi-Source News Aggregation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newshound

package api

import (
	"errors"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/tomtom215/newshound/internal/auth"
	"github.com/tomtom215/newshound/internal/cache"
	"github.com/tomtom215/newshound/internal/database"
	"github.com/tomtom215/newshound/internal/models"
)

const maxPreferencesBodySize = 64 * 1024

// GetPreferences serves GET /api/v1/preferences for the authenticated
// user. A user who never saved preferences gets an empty record rather
// than an error.
func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "Authentication required", nil)
		return
	}

	start := time.Now()
	prefs, err := h.db.GetPreferences(r.Context(), claims.Username)
	if errors.Is(err, database.ErrNotFound) {
		prefs = &models.Preferences{Username: claims.Username}
	} else if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to load preferences", err)
		return
	}
	respondSuccess(w, prefs, time.Since(start), false)
}

// SavePreferences serves POST /api/v1/preferences. The payload replaces
// the user's saved preferences wholesale; omitted dimensions clear their
// restriction.
func (h *Handler) SavePreferences(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "Authentication required", nil)
		return
	}

	var req models.PreferencesRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPreferencesBodySize))
	if err := decoder.Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid JSON payload", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	prefs := &models.Preferences{
		Username:   claims.Username,
		Categories: req.Categories,
		Sources:    req.Sources,
		Authors:    req.Authors,
	}
	if err := h.db.UpsertPreferences(r.Context(), prefs); err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to save preferences", err)
		return
	}

	// Listings for this user are keyed by identity; their cached pages
	// are stale the moment preferences change.
	h.invalidateArticleCache()

	respondSuccess(w, prefs, 0, false)
}

func (h *Handler) invalidateArticleCache() {
	if h.cache == nil {
		return
	}
	_, _ = cache.InvalidateArticles(h.cache)
}
