// Newshound - Multi-Source News Aggregation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newshound

package cache

import (
	"strings"
	"sync"
	"time"
)

type entry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore is a thread-safe in-memory cache with per-entry TTL and a
// background cleanup goroutine.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	stats   Stats
	stop    chan struct{}
	once    sync.Once
}

// Stats tracks cache performance counters.
type Stats struct {
	mu        sync.Mutex
	Hits      int64
	Misses    int64
	Evictions int64
}

const cleanupInterval = 5 * time.Minute

// NewMemoryStore creates an in-memory cache store.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]entry),
		stop:    make(chan struct{}),
	}
	go s.cleanupLoop()
	return s
}

// Get retrieves a value, evicting it first if expired.
func (s *MemoryStore) Get(key string) ([]byte, bool, error) {
	s.mu.RLock()
	e, exists := s.entries[key]
	s.mu.RUnlock()

	if !exists {
		s.recordMiss()
		return nil, false, nil
	}
	if time.Now().After(e.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		s.recordMiss()
		s.recordEviction()
		return nil, false, nil
	}
	s.recordHit()
	return e.data, true, nil
}

// Set stores a value with the given TTL.
func (s *MemoryStore) Set(key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	s.entries[key] = entry{data: value, expiresAt: time.Now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

// Keys returns all live keys starting with prefix.
func (s *MemoryStore) Keys(prefix string) ([]string, error) {
	now := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0)
	for key, e := range s.entries {
		if strings.HasPrefix(key, prefix) && now.Before(e.expiresAt) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// Delete removes a key.
func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// Close stops the cleanup goroutine.
func (s *MemoryStore) Close() error {
	s.once.Do(func() { close(s.stop) })
	return nil
}

// GetStats returns a snapshot of the performance counters.
func (s *MemoryStore) GetStats() (hits, misses, evictions int64) {
	s.stats.mu.Lock()
	defer s.stats.mu.Unlock()
	return s.stats.Hits, s.stats.Misses, s.stats.Evictions
}

func (s *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stop:
			return
		}
	}
}

func (s *MemoryStore) cleanup() {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, key)
			s.recordEviction()
		}
	}
}

func (s *MemoryStore) recordHit() {
	s.stats.mu.Lock()
	s.stats.Hits++
	s.stats.mu.Unlock()
}

func (s *MemoryStore) recordMiss() {
	s.stats.mu.Lock()
	s.stats.Misses++
	s.stats.mu.Unlock()
}

func (s *MemoryStore) recordEviction() {
	s.stats.mu.Lock()
	s.stats.Evictions++
	s.stats.mu.Unlock()
}
