// Newshound - Multi-Source News Aggregation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newshound

package cache

import (
	"crypto/sha256"
	"fmt"

	json "github.com/goccy/go-json"
)

// ArticleKeyPrefix namespaces cached article listings. Invalidation after
// ingestion targets exactly this prefix.
const ArticleKeyPrefix = "articles:"

// GuestIdentity is the identity component for unauthenticated requests.
// Guests share one cache namespace; each authenticated user gets their
// own, since preferences make results user-specific.
const GuestIdentity = "guest"

// ArticleListKey derives the cache key for an article listing from the
// full request parameter set and the requester identity. Identical
// queries from the same identity always hit the same key.
func ArticleListKey(params map[string]string, identity string) string {
	if identity == "" {
		identity = GuestIdentity
	}
	payload := struct {
		Params   map[string]string `json:"params"`
		Identity string            `json:"identity"`
	}{params, identity}

	data, err := json.Marshal(payload)
	if err != nil {
		// Marshaling a map of strings cannot fail; fall back to an
		// uncacheable unique-ish key just in case.
		return fmt.Sprintf("%s%v:%s", ArticleKeyPrefix, params, identity)
	}
	return fmt.Sprintf("%s%x", ArticleKeyPrefix, sha256.Sum256(data))
}
