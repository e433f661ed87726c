// Newshound - Multi-Source News Aggregation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newshound

package ingest

import (
	"context"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/newshound/internal/config"
	"github.com/tomtom215/newshound/internal/logging"
	"github.com/tomtom215/newshound/internal/metrics"
)

// BreakerClient wraps Client with a per-source circuit breaker so a
// persistently failing source API stops consuming retries and timeouts
// while the other sources continue normally.
//
// Breaker configuration:
//   - Max 3 requests in half-open state
//   - 1 minute measurement window
//   - 2 minute timeout before attempting recovery
//   - Opens after 60% failure rate with minimum 10 requests
type BreakerClient struct {
	client   *Client
	breakers map[string]*gobreaker.CircuitBreaker[[]byte]
}

// NewBreakerClient creates a breaker-wrapped client with one independent
// breaker per configured source.
func NewBreakerClient(client *Client, sources []config.SourceConfig) *BreakerClient {
	bc := &BreakerClient{
		client:   client,
		breakers: make(map[string]*gobreaker.CircuitBreaker[[]byte], len(sources)),
	}
	for _, src := range sources {
		bc.breakers[src.Key] = newSourceBreaker(src.Key)
	}
	return bc
}

func newSourceBreaker(source string) *gobreaker.CircuitBreaker[[]byte] {
	metrics.CircuitBreakerState.WithLabelValues(source).Set(0)

	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        source,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6
			if shouldTrip {
				logging.Warn().
					Str("source", source).
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("Opening circuit for source")
			}
			return shouldTrip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().
				Str("source", name).
				Str("from", fromStr).
				Str("to", toStr).
				Msg("Circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})
}

// Fetch performs one source fetch through that source's circuit breaker.
func (bc *BreakerClient) Fetch(ctx context.Context, src *config.SourceConfig) ([]byte, error) {
	cb, ok := bc.breakers[src.Key]
	if !ok {
		cb = newSourceBreaker(src.Key)
		bc.breakers[src.Key] = cb
	}
	return cb.Execute(func() ([]byte, error) {
		return bc.client.Fetch(ctx, src)
	})
}

func stateToString(s gobreaker.State) string {
	switch s {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
