// Newshound - Multi-Source News Aggregation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newshound

package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/newshound/internal/cache"
	"github.com/tomtom215/newshound/internal/config"
	"github.com/tomtom215/newshound/internal/models"
)

type mockStore struct {
	mu       sync.Mutex
	articles map[string]*models.Article
	failURL  string
}

func newMockStore() *mockStore {
	return &mockStore{articles: make(map[string]*models.Article)}
}

func (s *mockStore) UpsertArticle(_ context.Context, a *models.Article) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.URL == s.failURL {
		return false, errors.New("constraint violation")
	}
	_, exists := s.articles[a.URL]
	s.articles[a.URL] = a
	return !exists, nil
}

type mockFetcher struct {
	responses map[string][]byte
	errs      map[string]error
	calls     map[string]int
}

func newMockFetcher() *mockFetcher {
	return &mockFetcher{
		responses: make(map[string][]byte),
		errs:      make(map[string]error),
		calls:     make(map[string]int),
	}
}

func (f *mockFetcher) Fetch(_ context.Context, src *config.SourceConfig) ([]byte, error) {
	f.calls[src.Key]++
	if err := f.errs[src.Key]; err != nil {
		return nil, err
	}
	return f.responses[src.Key], nil
}

func testConfig(srcs ...config.SourceConfig) *config.Config {
	return &config.Config{
		Ingest: config.IngestConfig{
			Interval:     time.Hour,
			FetchTimeout: 5 * time.Second,
		},
		Sources: srcs,
	}
}

func newsapiTestSource() config.SourceConfig {
	return config.SourceConfig{
		Key:      "newsapi",
		Endpoint: "https://newsapi.test/v2/top-headlines",
		FieldMap: map[string]string{
			"title":        "title",
			"author":       "author",
			"url":          "url",
			"published_at": "publishedAt",
			"source":       "source.name",
			"category":     "category",
			"content":      "content",
			"image":        "urlToImage",
		},
	}
}

func TestRunOncePersistsAndCounts(t *testing.T) {
	store := newMockStore()
	fetcher := newMockFetcher()
	fetcher.responses["newsapi"] = []byte(`{"articles":[
		{"title":"One","url":"https://e.com/1","publishedAt":"2026-08-30T10:00:00Z"},
		{"title":"Two","url":"https://e.com/2","publishedAt":"2026-08-30T11:00:00Z"},
		{"title":"No URL"}
	]}`)

	m := NewManager(store, nil, fetcher, testConfig(newsapiTestSource()))
	stats, err := m.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	if stats.Inserted != 2 || stats.Updated != 0 || stats.Skipped != 1 {
		t.Errorf("stats = %+v, want 2 inserted 0 updated 1 skipped", stats)
	}
	if stats.SourcesOK != 1 || stats.SourcesFailed != 0 {
		t.Errorf("source counts = %+v", stats)
	}
	if m.LastRunTime().IsZero() {
		t.Error("LastRunTime should be set after a run")
	}

	// Second run upserts the same URLs as updates.
	stats, err = m.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("second RunOnce: %v", err)
	}
	if stats.Inserted != 0 || stats.Updated != 2 {
		t.Errorf("second run stats = %+v, want 0 inserted 2 updated", stats)
	}
}

func TestRunOnceSourceIsolation(t *testing.T) {
	bad := newsapiTestSource()
	bad.Key = "broken"
	good := newsapiTestSource()

	store := newMockStore()
	fetcher := newMockFetcher()
	fetcher.errs["broken"] = errors.New("connection refused")
	fetcher.responses["newsapi"] = []byte(`{"articles":[
		{"title":"Survives","url":"https://e.com/ok"}
	]}`)

	m := NewManager(store, nil, fetcher, testConfig(bad, good))
	stats, err := m.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	if stats.SourcesFailed != 1 || stats.SourcesOK != 1 {
		t.Errorf("source counts = %+v, want one failed one ok", stats)
	}
	if stats.Inserted != 1 {
		t.Errorf("Inserted = %d, want 1 (good source must not be blocked)", stats.Inserted)
	}
}

func TestRunOnceBadRowDoesNotAbortBatch(t *testing.T) {
	store := newMockStore()
	store.failURL = "https://e.com/poison"
	fetcher := newMockFetcher()
	fetcher.responses["newsapi"] = []byte(`{"articles":[
		{"title":"Poison","url":"https://e.com/poison"},
		{"title":"Fine","url":"https://e.com/fine"}
	]}`)

	m := NewManager(store, nil, fetcher, testConfig(newsapiTestSource()))
	stats, err := m.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if stats.Inserted != 1 || stats.Skipped != 1 {
		t.Errorf("stats = %+v, want 1 inserted 1 skipped", stats)
	}
	if _, ok := store.articles["https://e.com/fine"]; !ok {
		t.Error("later article should persist after a failed row")
	}
}

func TestRunOnceInvalidatesCacheAfterPersist(t *testing.T) {
	cacheStore := cache.NewMemoryStore()
	t.Cleanup(func() { _ = cacheStore.Close() })
	_ = cacheStore.Set(cache.ArticleKeyPrefix+"stale", []byte("old page"), time.Minute)
	_ = cacheStore.Set("filters:all", []byte("keep"), time.Minute)

	store := newMockStore()
	fetcher := newMockFetcher()
	fetcher.responses["newsapi"] = []byte(`{"articles":[
		{"title":"Fresh","url":"https://e.com/fresh"}
	]}`)

	m := NewManager(store, cacheStore, fetcher, testConfig(newsapiTestSource()))
	if _, err := m.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	if _, ok, _ := cacheStore.Get(cache.ArticleKeyPrefix + "stale"); ok {
		t.Error("article listing cache should be invalidated after persist")
	}
	if _, ok, _ := cacheStore.Get("filters:all"); !ok {
		t.Error("non-article cache entries should survive")
	}
}

func TestRunOnceNoPersistKeepsCache(t *testing.T) {
	cacheStore := cache.NewMemoryStore()
	t.Cleanup(func() { _ = cacheStore.Close() })
	_ = cacheStore.Set(cache.ArticleKeyPrefix+"warm", []byte("page"), time.Minute)

	store := newMockStore()
	fetcher := newMockFetcher()
	fetcher.responses["newsapi"] = []byte(`{"articles":[]}`)

	m := NewManager(store, cacheStore, fetcher, testConfig(newsapiTestSource()))
	if _, err := m.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if _, ok, _ := cacheStore.Get(cache.ArticleKeyPrefix + "warm"); !ok {
		t.Error("cache should survive a run that persisted nothing")
	}
}

func TestRunOnceRejectsOverlap(t *testing.T) {
	store := newMockStore()
	fetcher := newMockFetcher()
	m := NewManager(store, nil, fetcher, testConfig(newsapiTestSource()))

	m.runMu.Lock()
	m.running = true
	m.runMu.Unlock()

	if _, err := m.RunOnce(context.Background()); !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("expected ErrRunInProgress, got %v", err)
	}
}

func TestRunCompletedCallback(t *testing.T) {
	store := newMockStore()
	fetcher := newMockFetcher()
	fetcher.responses["newsapi"] = []byte(`{"articles":[
		{"title":"CB","url":"https://e.com/cb"}
	]}`)

	m := NewManager(store, nil, fetcher, testConfig(newsapiTestSource()))
	var got RunStats
	m.SetOnRunCompleted(func(stats RunStats) { got = stats })

	if _, err := m.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if got.Inserted != 1 {
		t.Errorf("callback stats = %+v, want 1 inserted", got)
	}
}

func TestManagerStartStop(t *testing.T) {
	store := newMockStore()
	fetcher := newMockFetcher()
	fetcher.responses["newsapi"] = []byte(`{"articles":[
		{"title":"Startup","url":"https://e.com/startup"}
	]}`)

	cfg := testConfig(newsapiTestSource())
	cfg.Ingest.RunOnStartup = true

	m := NewManager(store, nil, fetcher, cfg)
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := m.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	if fetcher.calls["newsapi"] != 1 {
		t.Errorf("startup run should fetch once, got %d", fetcher.calls["newsapi"])
	}
	if _, ok := store.articles["https://e.com/startup"]; !ok {
		t.Error("startup run should persist articles")
	}
}

func TestRunOnceContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	srcs := make([]config.SourceConfig, 3)
	for i := range srcs {
		srcs[i] = newsapiTestSource()
		srcs[i].Key = fmt.Sprintf("src%d", i)
	}
	m := NewManager(newMockStore(), nil, newMockFetcher(), testConfig(srcs...))
	if _, err := m.RunOnce(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
