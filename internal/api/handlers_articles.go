// Newshound - Multi-Source News Aggregation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newshound

package api

import (
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/tomtom215/newshound/internal/auth"
	"github.com/tomtom215/newshound/internal/cache"
	"github.com/tomtom215/newshound/internal/database"
	"github.com/tomtom215/newshound/internal/logging"
	"github.com/tomtom215/newshound/internal/metrics"
	"github.com/tomtom215/newshound/internal/models"
)

// articlesRequest captures the article listing query parameters for
// validation.
type articlesRequest struct {
	Search string `validate:"omitempty,max=255"`
	Date   string `validate:"omitempty,datetime=2006-01-02"`
	Page   int    `validate:"gte=1"`
}

// Articles serves GET /api/v1/articles.
//
// The response is assembled in layers: the caller's identity picks the
// cache namespace, saved preferences (for authenticated users who have
// not opted out) restrict the result set, and explicit request filters
// narrow it further. Every distinct combination of parameters and
// identity caches independently.
func (h *Handler) Articles(w http.ResponseWriter, r *http.Request) {
	req := articlesRequest{
		Search: r.URL.Query().Get("search"),
		Date:   r.URL.Query().Get("date"),
		Page:   getIntParam(r, "page", 1),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	usePreferences := getBoolParam(r, "use_preferences", true)
	claims, authenticated := auth.ClaimsFromContext(r.Context())

	identity := cache.GuestIdentity
	if authenticated {
		identity = claims.Username
	}

	key := cache.ArticleListKey(requestParams(r), identity)
	if h.cache != nil {
		if data, ok, err := h.cache.Get(key); err == nil && ok {
			metrics.CacheHits.Inc()
			var page models.ArticlePage
			if err := json.Unmarshal(data, &page); err == nil {
				respondSuccess(w, page, 0, true)
				return
			}
			// A corrupt entry falls through to a fresh query.
			_ = h.cache.Delete(key)
		}
		metrics.CacheMisses.Inc()
	}

	filter := &database.ArticleFilter{
		Search:        req.Search,
		Categories:    getMultiParam(r, "category"),
		Sources:       getMultiParam(r, "source"),
		Authors:       getMultiParam(r, "author"),
		PublishedDate: req.Date,
		Page:          req.Page,
	}

	if authenticated && usePreferences {
		prefs, err := h.db.GetPreferences(r.Context(), claims.Username)
		switch {
		case errors.Is(err, database.ErrNotFound):
			// No saved preferences, nothing to restrict.
		case err != nil:
			respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to load preferences", err)
			return
		default:
			filter.PrefCategories = prefs.Categories
			filter.PrefSources = prefs.Sources
			filter.PrefAuthors = prefs.Authors
		}
	}

	start := time.Now()
	articles, total, err := h.db.ListArticles(r.Context(), filter, h.config.API.PageSize)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to query articles", err)
		return
	}
	queryTime := time.Since(start)

	page := models.NewArticlePage(articles, req.Page, h.config.API.PageSize, total, listingBaseURL(r))

	if h.cache != nil {
		if data, err := json.Marshal(page); err == nil {
			if err := h.cache.Set(key, data, h.config.Cache.TTL); err != nil {
				logging.Warn().Err(err).Msg("Failed to cache article listing")
			}
		}
	}

	respondSuccess(w, page, queryTime, false)
}

// requestParams flattens the query parameters into a deterministic map
// for cache key derivation. Multi-valued parameters are joined in sorted
// order so equivalent queries share a key regardless of value order.
func requestParams(r *http.Request) map[string]string {
	params := make(map[string]string)
	for key, values := range r.URL.Query() {
		sorted := append([]string(nil), values...)
		sort.Strings(sorted)
		params[key] = strings.Join(sorted, ",")
	}
	return params
}

// listingBaseURL rebuilds the request URL without the page parameter,
// for deriving pagination links.
func listingBaseURL(r *http.Request) string {
	u := *r.URL
	q := u.Query()
	q.Del("page")
	u.RawQuery = q.Encode()
	return u.String()
}
