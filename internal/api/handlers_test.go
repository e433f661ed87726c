// Newshound - Multi-Source News Aggregation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newshound

package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/tomtom215/newshound/internal/auth"
	"github.com/tomtom215/newshound/internal/cache"
	"github.com/tomtom215/newshound/internal/config"
	"github.com/tomtom215/newshound/internal/database"
	"github.com/tomtom215/newshound/internal/models"
)

type fixture struct {
	db      *database.DB
	cache   *cache.MemoryStore
	handler *Handler
	router  http.Handler
	jwt     *auth.JWTManager
}

func testAPIConfig() *config.Config {
	return &config.Config{
		API:   config.APIConfig{PageSize: 10},
		Cache: config.CacheConfig{Store: "memory", TTL: 600 * time.Second},
		Security: config.SecurityConfig{
			AuthMode:          "jwt",
			JWTSecret:         "0123456789abcdef0123456789abcdef",
			SessionTimeout:    time.Hour,
			AdminUsername:     "admin",
			AdminPassword:     "admin-password",
			RateLimitDisabled: true,
			CORSOrigins:       []string{"*"},
		},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "256MB", Threads: 1})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cacheStore := cache.NewMemoryStore()
	t.Cleanup(func() { _ = cacheStore.Close() })

	cfg := testAPIConfig()
	jwtMgr, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		t.Fatalf("creating jwt manager: %v", err)
	}
	creds, err := auth.NewCredentialChecker(&cfg.Security)
	if err != nil {
		t.Fatalf("creating credential checker: %v", err)
	}

	handler := NewHandler(db, nil, cfg, cacheStore, jwtMgr, creds)
	authMW := auth.NewMiddleware(jwtMgr, false, func(w http.ResponseWriter, r *http.Request, reason string) {
		respondError(w, http.StatusUnauthorized, ErrCodeUnauthorized, reason, nil)
	})
	router := NewRouter(handler, authMW, NewChiMiddleware(&cfg.Security)).SetupChi()

	return &fixture{db: db, cache: cacheStore, handler: handler, router: router, jwt: jwtMgr}
}

func (f *fixture) seedArticles(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		a := &models.Article{
			Title:       fmt.Sprintf("Article %d", i),
			Author:      "Jane Doe",
			URL:         fmt.Sprintf("https://example.com/%d", i),
			PublishedAt: fmt.Sprintf("2026-08-%02d 10:00:00", (i%28)+1),
			Source:      "Example News",
			Category:    "Tech",
		}
		if i%3 == 0 {
			a.Category = "Politics"
			a.Source = "The Guardian"
			a.Author = "John Smith"
		}
		if _, err := f.db.UpsertArticle(context.Background(), a); err != nil {
			t.Fatalf("seeding article %d: %v", i, err)
		}
	}
}

func (f *fixture) get(t *testing.T, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) postJSON(t *testing.T, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response envelope: %v (body %s)", err, rec.Body.String())
	}
	return resp
}

func decodePage(t *testing.T, rec *httptest.ResponseRecorder) models.ArticlePage {
	t.Helper()
	resp := decodeEnvelope(t, rec)
	data, err := json.Marshal(resp.Data)
	if err != nil {
		t.Fatalf("re-marshal data: %v", err)
	}
	var page models.ArticlePage
	if err := json.Unmarshal(data, &page); err != nil {
		t.Fatalf("decoding page: %v", err)
	}
	return page
}

func TestArticlesGuestPagination(t *testing.T) {
	f := newFixture(t)
	f.seedArticles(t, 25)

	rec := f.get(t, "/api/v1/articles", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	page := decodePage(t, rec)
	if page.Total != 25 {
		t.Errorf("Total = %d, want 25", page.Total)
	}
	if page.CurrentPage != 1 || page.PerPage != 10 {
		t.Errorf("page meta = %d/%d, want 1/10", page.CurrentPage, page.PerPage)
	}
	if len(page.Data) != 10 {
		t.Errorf("len(Data) = %d, want 10", len(page.Data))
	}
	if page.NextPageURL == nil {
		t.Fatal("NextPageURL should be set")
	}
	if len(page.Links) != 5 {
		// Previous + 3 pages + Next
		t.Errorf("len(Links) = %d, want 5", len(page.Links))
	}

	rec = f.get(t, "/api/v1/articles?page=3", "")
	page = decodePage(t, rec)
	if page.CurrentPage != 3 || len(page.Data) != 5 {
		t.Errorf("page 3: current=%d len=%d", page.CurrentPage, len(page.Data))
	}
	if page.NextPageURL != nil {
		t.Error("NextPageURL should be null on last page")
	}
}

func TestArticlesSearchAndFilters(t *testing.T) {
	f := newFixture(t)
	f.seedArticles(t, 12)

	rec := f.get(t, "/api/v1/articles?category=Politics", "")
	page := decodePage(t, rec)
	for _, a := range page.Data {
		if a.Category != "Politics" {
			t.Errorf("article %s has category %s", a.URL, a.Category)
		}
	}
	if page.Total != 4 {
		t.Errorf("Politics total = %d, want 4", page.Total)
	}

	rec = f.get(t, "/api/v1/articles?search=Article+7", "")
	page = decodePage(t, rec)
	if page.Total != 1 || page.Data[0].Title != "Article 7" {
		t.Errorf("search result = %+v", page.Data)
	}

	rec = f.get(t, "/api/v1/articles?source=The+Guardian&source=Example+News", "")
	page = decodePage(t, rec)
	if page.Total != 12 {
		t.Errorf("multi-source total = %d, want 12", page.Total)
	}
}

func TestArticlesInvalidDateRejected(t *testing.T) {
	f := newFixture(t)

	rec := f.get(t, "/api/v1/articles?date=not-a-date", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Status != "error" || resp.Error == nil || resp.Error.Code != ErrCodeValidation {
		t.Errorf("envelope = %+v", resp)
	}
}

func TestArticlesPreferencesApplied(t *testing.T) {
	f := newFixture(t)
	f.seedArticles(t, 12)

	prefs := &models.Preferences{Username: "alice", Categories: []string{"Politics"}}
	if err := f.db.UpsertPreferences(context.Background(), prefs); err != nil {
		t.Fatalf("saving preferences: %v", err)
	}
	token, _ := f.jwt.GenerateToken("alice", "user")

	rec := f.get(t, "/api/v1/articles", token)
	page := decodePage(t, rec)
	if page.Total != 4 {
		t.Errorf("preferred total = %d, want only Politics articles", page.Total)
	}

	// Opting out restores the full listing.
	rec = f.get(t, "/api/v1/articles?use_preferences=false", token)
	page = decodePage(t, rec)
	if page.Total != 12 {
		t.Errorf("opt-out total = %d, want 12", page.Total)
	}

	// Request filters intersect with preferences rather than replacing.
	rec = f.get(t, "/api/v1/articles?category=Tech", token)
	page = decodePage(t, rec)
	if page.Total != 0 {
		t.Errorf("disjoint preference and filter total = %d, want 0", page.Total)
	}

	// Guests are unaffected by anyone's preferences.
	rec = f.get(t, "/api/v1/articles", "")
	page = decodePage(t, rec)
	if page.Total != 12 {
		t.Errorf("guest total = %d, want 12", page.Total)
	}
}

func TestArticlesCaching(t *testing.T) {
	f := newFixture(t)
	f.seedArticles(t, 3)

	rec := f.get(t, "/api/v1/articles", "")
	resp := decodeEnvelope(t, rec)
	if resp.Metadata.Cached {
		t.Error("first request should not be cached")
	}

	rec = f.get(t, "/api/v1/articles", "")
	resp = decodeEnvelope(t, rec)
	if !resp.Metadata.Cached {
		t.Error("second identical request should be served from cache")
	}

	// A different parameter set is a different cache entry.
	rec = f.get(t, "/api/v1/articles?category=Tech", "")
	resp = decodeEnvelope(t, rec)
	if resp.Metadata.Cached {
		t.Error("different query should miss the cache")
	}
}

func TestPreferencesEndpoints(t *testing.T) {
	f := newFixture(t)
	token, _ := f.jwt.GenerateToken("bob", "user")

	// Unauthenticated requests are rejected.
	if rec := f.get(t, "/api/v1/preferences", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated GET = %d, want 401", rec.Code)
	}

	// A user with no saved record gets an empty one.
	rec := f.get(t, "/api/v1/preferences", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET = %d, body %s", rec.Code, rec.Body.String())
	}

	payload := models.PreferencesRequest{
		Categories: []string{"Tech"},
		Sources:    []string{"The Guardian"},
	}
	rec = f.postJSON(t, "/api/v1/preferences", token, payload)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST = %d, body %s", rec.Code, rec.Body.String())
	}

	got, err := f.db.GetPreferences(context.Background(), "bob")
	if err != nil {
		t.Fatalf("loading saved preferences: %v", err)
	}
	if len(got.Categories) != 1 || got.Categories[0] != "Tech" {
		t.Errorf("saved categories = %v", got.Categories)
	}
}

func TestSavePreferencesInvalidatesCache(t *testing.T) {
	f := newFixture(t)
	f.seedArticles(t, 3)
	token, _ := f.jwt.GenerateToken("carol", "user")

	// Warm the cache.
	f.get(t, "/api/v1/articles", token)
	keys, _ := f.cache.Keys(cache.ArticleKeyPrefix)
	if len(keys) == 0 {
		t.Fatal("listing should be cached")
	}

	f.postJSON(t, "/api/v1/preferences", token, models.PreferencesRequest{Categories: []string{"Tech"}})

	keys, _ = f.cache.Keys(cache.ArticleKeyPrefix)
	if len(keys) != 0 {
		t.Errorf("article cache should be empty after preference save, got %v", keys)
	}
}

func TestPreferencesRejectsMalformedJSON(t *testing.T) {
	f := newFixture(t)
	token, _ := f.jwt.GenerateToken("dave", "user")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/preferences", bytes.NewReader([]byte(`{"categories": [`)))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed JSON = %d, want 400", rec.Code)
	}
}

func TestFiltersEndpoint(t *testing.T) {
	f := newFixture(t)
	f.seedArticles(t, 6)

	rec := f.get(t, "/api/v1/filters", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	data, _ := json.Marshal(resp.Data)
	var opts models.FilterOptions
	if err := json.Unmarshal(data, &opts); err != nil {
		t.Fatalf("decoding filters: %v", err)
	}
	if len(opts.Categories) != 2 || len(opts.Sources) != 2 || len(opts.Authors) != 2 {
		t.Errorf("filters = %+v", opts)
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(t)

	rec := f.postJSON(t, "/api/v1/auth/login", "", loginRequest{Username: "admin", Password: "admin-password"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login = %d, body %s", rec.Code, rec.Body.String())
	}
	resp := decodeEnvelope(t, rec)
	data, _ := json.Marshal(resp.Data)
	var lr loginResponse
	if err := json.Unmarshal(data, &lr); err != nil {
		t.Fatalf("decoding login response: %v", err)
	}
	if lr.Token == "" {
		t.Fatal("token should be issued")
	}
	claims, err := f.jwt.ValidateToken(lr.Token)
	if err != nil || claims.Username != "admin" {
		t.Errorf("issued token claims = %+v, err %v", claims, err)
	}

	rec = f.postJSON(t, "/api/v1/auth/login", "", loginRequest{Username: "admin", Password: "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad password = %d, want 401", rec.Code)
	}

	rec = f.postJSON(t, "/api/v1/auth/login", "", loginRequest{Username: "admin"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing password = %d, want 400", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	f := newFixture(t)
	f.seedArticles(t, 2)

	if rec := f.get(t, "/api/v1/health/live", ""); rec.Code != http.StatusOK {
		t.Errorf("live = %d", rec.Code)
	}
	if rec := f.get(t, "/api/v1/health/ready", ""); rec.Code != http.StatusOK {
		t.Errorf("ready = %d", rec.Code)
	}

	rec := f.get(t, "/api/v1/health", "")
	resp := decodeEnvelope(t, rec)
	data, _ := json.Marshal(resp.Data)
	var health healthResponse
	if err := json.Unmarshal(data, &health); err != nil {
		t.Fatalf("decoding health: %v", err)
	}
	if health.ArticleCount != 2 {
		t.Errorf("ArticleCount = %d, want 2", health.ArticleCount)
	}
	if health.LastIngestRun != nil {
		t.Error("LastIngestRun should be null with no ingest manager")
	}
}

func TestUnknownRouteEnvelope(t *testing.T) {
	f := newFixture(t)

	rec := f.get(t, "/api/v1/unknown", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Error == nil || resp.Error.Code != ErrCodeNotFound {
		t.Errorf("envelope = %+v", resp)
	}
}

func TestInvalidTokenRejectedOnListing(t *testing.T) {
	f := newFixture(t)
	f.seedArticles(t, 1)

	rec := f.get(t, "/api/v1/articles", "garbage-token")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("invalid token = %d, want 401 (never silently downgraded)", rec.Code)
	}
}
