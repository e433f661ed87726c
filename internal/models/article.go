// Newshound - Multi-Source News Aggregation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newshound

package models

import "time"

// Article is the canonical article record shared by ingestion, storage,
// and the read API. Every source's native schema is normalized into this
// shape before anything else touches it.
//
// Field conventions:
//   - URL is the article's identity: unique, at most 255 characters,
//     never truncated. Items whose URL exceeds the limit are skipped
//     at ingestion time.
//   - Author defaults to "Unknown" when absent or when the source puts
//     a URL where a name belongs.
//   - Category defaults to "General" when the source has no section data.
//   - PublishedAt is stored as "YYYY-MM-DD HH:MM:SS"; items without a
//     parseable datetime get the ingestion time instead.
//   - Content and Image are optional and stay null when absent.
type Article struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	URL         string  `json:"url"`
	PublishedAt string  `json:"published_at"`
	Source      string  `json:"source"`
	Category    string  `json:"category"`
	Content     *string `json:"content"`
	Image       *string `json:"image"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Defaults applied during normalization when a source item lacks a value.
const (
	DefaultAuthor   = "Unknown"
	DefaultSource   = "Unknown"
	DefaultCategory = "General"
)

// MaxURLLength is the storage limit for article URLs. Items exceeding it
// are skipped with a warning rather than truncated, since a truncated URL
// is both broken and a collision risk for the uniqueness key.
const MaxURLLength = 255

// PublishedAtLayout is the storage format for article publication times.
const PublishedAtLayout = "2006-01-02 15:04:05"
