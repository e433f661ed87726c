// Newshound - Multi-Source News Aggregation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newshound

// Package cache provides the read-path response cache with TTL expiry and
// prefix-scoped invalidation.
//
// Two backends implement Store: an in-memory map cache (default) and a
// BadgerDB-backed store that persists across restarts. Both expose an
// enumerable keyspace so invalidation can target the article-listing
// namespace without touching unrelated entries.
package cache

import (
	"fmt"
	"time"

	"github.com/tomtom215/newshound/internal/config"
)

// Store is the cache backend contract. Values are opaque byte slices;
// callers serialize what they cache.
type Store interface {
	// Get retrieves a value. The second return is false on miss or
	// after expiry.
	Get(key string) ([]byte, bool, error)

	// Set stores a value with the given TTL.
	Set(key string, value []byte, ttl time.Duration) error

	// Keys returns all live keys starting with prefix.
	Keys(prefix string) ([]string, error)

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(key string) error

	Close() error
}

// NewStore builds the configured cache backend.
func NewStore(cfg *config.CacheConfig) (Store, error) {
	switch cfg.Store {
	case "memory":
		return NewMemoryStore(), nil
	case "badger":
		return NewBadgerStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown cache store %q", cfg.Store)
	}
}

// InvalidateArticles removes every cached article listing, leaving other
// namespaces untouched. Called after an ingestion run persists articles,
// since any page of any listing query may now be stale.
func InvalidateArticles(s Store) (int, error) {
	keys, err := s.Keys(ArticleKeyPrefix)
	if err != nil {
		return 0, fmt.Errorf("enumerating article cache keys: %w", err)
	}
	removed := 0
	for _, key := range keys {
		if err := s.Delete(key); err != nil {
			return removed, fmt.Errorf("deleting cache key %s: %w", key, err)
		}
		removed++
	}
	return removed, nil
}
