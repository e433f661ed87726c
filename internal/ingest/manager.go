// Newshound - Multi-Source News Aggregation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newshound

package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/newshound/internal/cache"
	"github.com/tomtom215/newshound/internal/config"
	"github.com/tomtom215/newshound/internal/logging"
	"github.com/tomtom215/newshound/internal/metrics"
	"github.com/tomtom215/newshound/internal/models"
	"github.com/tomtom215/newshound/internal/sources"
)

// Fetcher fetches one source's raw response. Implemented by BreakerClient
// in production and by mocks in tests.
type Fetcher interface {
	Fetch(ctx context.Context, src *config.SourceConfig) ([]byte, error)
}

// ArticleStore is the persistence surface the manager needs.
type ArticleStore interface {
	UpsertArticle(ctx context.Context, a *models.Article) (bool, error)
}

// RunStats summarizes one ingestion run.
type RunStats struct {
	Inserted      int
	Updated       int
	Skipped       int
	SourcesOK     int
	SourcesFailed int
}

// Manager schedules and executes ingestion runs. Runs never overlap: a
// trigger during an active run is rejected rather than queued.
type Manager struct {
	store   ArticleStore
	cache   cache.Store
	fetcher Fetcher
	cfg     *config.Config

	lastRun time.Time
	mu      sync.RWMutex

	runMu    sync.Mutex
	running  bool
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	onRunCompleted func(stats RunStats)
}

// ErrRunInProgress is returned when a run is triggered while another is
// still active.
var ErrRunInProgress = fmt.Errorf("ingestion run already in progress")

// NewManager creates an ingestion manager.
func NewManager(store ArticleStore, cacheStore cache.Store, fetcher Fetcher, cfg *config.Config) *Manager {
	return &Manager{
		store:    store,
		cache:    cacheStore,
		fetcher:  fetcher,
		cfg:      cfg,
		stopChan: make(chan struct{}),
	}
}

// SetOnRunCompleted registers a callback invoked after every completed
// run. Must be called before Start.
func (m *Manager) SetOnRunCompleted(fn func(stats RunStats)) {
	m.onRunCompleted = fn
}

// Start launches the ingestion loop. It returns immediately; runs happen
// on a background goroutine every configured interval.
func (m *Manager) Start(ctx context.Context) error {
	if m.cfg.Ingest.RunOnStartup {
		if _, err := m.RunOnce(ctx); err != nil {
			logging.Warn().Err(err).Msg("Startup ingestion run failed")
		}
	}

	m.wg.Add(1)
	go m.runLoop(ctx)
	logging.Info().
		Dur("interval", m.cfg.Ingest.Interval).
		Int("sources", len(m.cfg.Sources)).
		Msg("Ingestion manager started")
	return nil
}

// Stop terminates the ingestion loop and waits for an active run to
// finish.
func (m *Manager) Stop() error {
	m.stopOnce.Do(func() { close(m.stopChan) })
	m.wg.Wait()
	logging.Info().Msg("Ingestion manager stopped")
	return nil
}

// LastRunTime returns when the last run completed, zero before the first.
func (m *Manager) LastRunTime() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastRun
}

// TriggerRun starts a run immediately. Returns ErrRunInProgress when one
// is already active.
func (m *Manager) TriggerRun(ctx context.Context) (RunStats, error) {
	return m.RunOnce(ctx)
}

func (m *Manager) runLoop(ctx context.Context) {
	defer m.wg.Done()
	ticker := time.NewTicker(m.cfg.Ingest.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := m.RunOnce(ctx); err != nil {
				logging.Error().Err(err).Msg("Scheduled ingestion run failed")
			}
		case <-m.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// RunOnce executes one full ingestion run across all configured sources.
// Each source is processed independently; a failing source is logged and
// counted but never aborts the run.
func (m *Manager) RunOnce(ctx context.Context) (RunStats, error) {
	m.runMu.Lock()
	if m.running {
		m.runMu.Unlock()
		return RunStats{}, ErrRunInProgress
	}
	m.running = true
	m.runMu.Unlock()
	defer func() {
		m.runMu.Lock()
		m.running = false
		m.runMu.Unlock()
	}()

	start := time.Now()
	var stats RunStats

	for i := range m.cfg.Sources {
		src := &m.cfg.Sources[i]
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		persisted, err := m.ingestSource(ctx, src, &stats)
		if err != nil {
			stats.SourcesFailed++
			logging.Error().Err(err).Str("source", src.Key).Msg("Source ingestion failed")
			continue
		}
		stats.SourcesOK++
		if persisted > 0 {
			m.invalidateListings()
		}
	}

	m.mu.Lock()
	m.lastRun = time.Now()
	m.mu.Unlock()

	outcome := "success"
	switch {
	case stats.SourcesOK == 0 && stats.SourcesFailed > 0:
		outcome = "failure"
	case stats.SourcesFailed > 0:
		outcome = "partial"
	}
	metrics.RecordIngestRun(outcome, time.Since(start))

	logging.Info().
		Int("inserted", stats.Inserted).
		Int("updated", stats.Updated).
		Int("skipped", stats.Skipped).
		Int("sources_ok", stats.SourcesOK).
		Int("sources_failed", stats.SourcesFailed).
		Dur("duration", time.Since(start)).
		Msg("Ingestion run completed")

	if m.onRunCompleted != nil {
		m.onRunCompleted(stats)
	}
	return stats, nil
}

// ingestSource fetches, normalizes, and persists one source's articles.
// Returns the number of rows persisted (inserted or updated).
func (m *Manager) ingestSource(ctx context.Context, src *config.SourceConfig, stats *RunStats) (int, error) {
	fetchStart := time.Now()
	body, err := m.fetcher.Fetch(ctx, src)
	metrics.SourceFetchDuration.WithLabelValues(src.Key).Observe(time.Since(fetchStart).Seconds())
	if err != nil {
		metrics.SourceFetchErrors.WithLabelValues(src.Key, "http").Inc()
		return 0, err
	}

	candidates, err := sources.Normalize(*src, body, time.Now())
	if err != nil {
		metrics.SourceFetchErrors.WithLabelValues(src.Key, "decode").Inc()
		return 0, fmt.Errorf("decoding source %s response: %w", src.Key, err)
	}

	persisted := 0
	for i := range candidates {
		c := &candidates[i]
		if c.Skipped != "" {
			stats.Skipped++
			metrics.ArticlesSkipped.WithLabelValues(src.Key, c.Skipped).Inc()
			logging.Warn().
				Str("source", src.Key).
				Str("reason", c.Skipped).
				Msg("Skipping source item")
			continue
		}
		inserted, err := m.store.UpsertArticle(ctx, &c.Article)
		if err != nil {
			// A single bad row is logged and skipped; the batch continues.
			stats.Skipped++
			logging.Error().Err(err).
				Str("source", src.Key).
				Str("url", c.Article.URL).
				Msg("Failed to persist article")
			continue
		}
		persisted++
		if inserted {
			stats.Inserted++
			metrics.ArticlesStored.WithLabelValues(src.Key, "insert").Inc()
		} else {
			stats.Updated++
			metrics.ArticlesStored.WithLabelValues(src.Key, "update").Inc()
		}
	}

	logging.Debug().
		Str("source", src.Key).
		Int("items", len(candidates)).
		Int("persisted", persisted).
		Msg("Source batch processed")
	return persisted, nil
}

func (m *Manager) invalidateListings() {
	if m.cache == nil {
		return
	}
	removed, err := cache.InvalidateArticles(m.cache)
	if err != nil {
		logging.Warn().Err(err).Msg("Cache invalidation failed")
		return
	}
	if removed > 0 {
		metrics.CacheInvalidations.Add(float64(removed))
		logging.Debug().Int("keys", removed).Msg("Invalidated article listing cache")
	}
}
