// Newshound - Multi-Source News Aggregation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newshound

// Package metrics provides Prometheus instrumentation for ingestion,
// the read API, and the response cache.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Ingestion metrics

	IngestRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newshound_ingest_runs_total",
			Help: "Total number of ingestion runs by outcome",
		},
		[]string{"outcome"}, // "success", "partial", "failure"
	)

	IngestRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "newshound_ingest_run_duration_seconds",
			Help:    "Duration of full ingestion runs in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ArticlesStored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newshound_articles_stored_total",
			Help: "Articles persisted per source, by insert or update",
		},
		[]string{"source", "operation"}, // "insert", "update"
	)

	ArticlesSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newshound_articles_skipped_total",
			Help: "Source items skipped during normalization",
		},
		[]string{"source", "reason"},
	)

	SourceFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newshound_source_fetch_errors_total",
			Help: "Failed source fetches by source and error type",
		},
		[]string{"source", "error_type"}, // "http", "decode", "rate_limit", "breaker_open"
	)

	SourceFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "newshound_source_fetch_duration_seconds",
			Help:    "Duration of source API fetches in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	// Circuit breaker metrics

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "newshound_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"source"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newshound_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"source", "from", "to"},
	)

	// Cache metrics

	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "newshound_cache_hits_total",
			Help: "Article listing cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "newshound_cache_misses_total",
			Help: "Article listing cache misses",
		},
	)

	CacheInvalidations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "newshound_cache_invalidations_total",
			Help: "Cache keys removed by post-ingestion invalidation",
		},
	)

	// API metrics

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "newshound_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "newshound_api_requests_in_flight",
			Help: "Number of API requests currently being served",
		},
	)
)

// RecordIngestRun records one completed ingestion run.
func RecordIngestRun(outcome string, duration time.Duration) {
	IngestRuns.WithLabelValues(outcome).Inc()
	IngestRunDuration.Observe(duration.Seconds())
}

// RecordAPIRequest records one served API request.
func RecordAPIRequest(method, endpoint, status string, duration time.Duration) {
	APIRequestDuration.WithLabelValues(method, endpoint, status).Observe(duration.Seconds())
}
