// Newshound - Multi-Source News Aggregation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newshound

package api

import (
	"net/http"
	"time"
)

// Filters serves GET /api/v1/filters, listing the distinct categories,
// sources, and authors currently present in stored articles.
func (h *Handler) Filters(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	opts, err := h.db.DistinctFilterValues(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to load filter options", err)
		return
	}
	respondSuccess(w, opts, time.Since(start), false)
}
