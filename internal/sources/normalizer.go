// Newshound - Multi-Source News Aggregation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newshound

// Package sources normalizes raw source API responses into canonical
// articles. All per-source knowledge lives in config field maps; this
// package applies the shared rules (defaults, URL limit, author
// validation, datetime normalization) uniformly across every source.
package sources

import (
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/tomtom215/newshound/internal/config"
	"github.com/tomtom215/newshound/internal/jsonpath"
	"github.com/tomtom215/newshound/internal/models"
)

// envelopePaths is the list of known response envelope shapes, in
// precedence order. The first path that resolves to a non-empty array
// wins; supplying no path means the document root itself is the array.
var envelopePaths = []string{
	"articles",
	"response.results",
	"response.docs",
}

// Candidate is one source item after normalization. Skipped carries the
// reason an item was dropped; a candidate is either an Article or a skip,
// never both.
type Candidate struct {
	Article models.Article
	Skipped string
}

// datetime layouts accepted from sources, tried in order.
var datetimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalize decodes a raw source response body and maps every item into a
// Candidate, preserving source order. now supplies the fallback
// publication time for items without a parseable datetime.
//
// An unrecognized envelope (no known array path resolves to a non-empty
// array) yields zero candidates and no error: an empty result set from a
// source is normal operation, not a failure.
func Normalize(src config.SourceConfig, body []byte, now time.Time) ([]Candidate, error) {
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, err
	}

	items := extractItems(doc)
	candidates := make([]Candidate, 0, len(items))
	for _, item := range items {
		candidates = append(candidates, normalizeItem(src, item, now))
	}
	return candidates, nil
}

// extractItems finds the item array inside a decoded response document.
func extractItems(doc interface{}) []interface{} {
	if arr, ok := doc.([]interface{}); ok {
		return arr
	}
	for _, path := range envelopePaths {
		v, ok := jsonpath.Lookup(doc, path)
		if !ok {
			continue
		}
		if arr, ok := v.([]interface{}); ok && len(arr) > 0 {
			return arr
		}
	}
	return nil
}

func normalizeItem(src config.SourceConfig, item interface{}, now time.Time) Candidate {
	fm := src.FieldMap

	rawURL, _ := jsonpath.LookupString(item, fm["url"])
	if rawURL == "" {
		return Candidate{Skipped: "missing URL"}
	}
	if len(rawURL) > models.MaxURLLength {
		return Candidate{Skipped: "URL exceeds length limit"}
	}

	title, _ := jsonpath.LookupString(item, fm["title"])
	if title == "" {
		return Candidate{Skipped: "missing title"}
	}

	a := models.Article{
		Title:       title,
		URL:         rawURL,
		Author:      resolveAuthor(item, fm["author"]),
		PublishedAt: resolveDatetime(item, fm["published_at"], now),
		Source:      resolveWithLiteral(item, fm["source"], models.DefaultSource),
		Category:    resolveWithLiteral(item, fm["category"], models.DefaultCategory),
		Content:     resolveOptionalPreferring(item, "fields.bodyText", fm["content"]),
		Image:       resolveOptionalPreferring(item, "fields.thumbnail", fm["image"]),
	}
	return Candidate{Article: a}
}

// resolveAuthor resolves the author field and applies validateAuthor.
func resolveAuthor(item interface{}, path string) string {
	s, ok := jsonpath.LookupString(item, path)
	if !ok {
		return models.DefaultAuthor
	}
	return validateAuthor(s)
}

// validateAuthor replaces author values that are syntactically valid URLs
// with the default author name. Some sources put a profile link where a
// byline belongs; a URL is never a useful display name or filter value.
func validateAuthor(author string) string {
	u, err := url.Parse(author)
	if err == nil && u.Scheme != "" && u.Host != "" {
		return models.DefaultAuthor
	}
	return author
}

// resolveWithLiteral resolves a field-map entry that may be either a path
// or a constant. If the entry resolves as a path against the item, the
// item's value wins; otherwise a path-looking entry falls back to def and
// a plain entry is taken as a literal.
func resolveWithLiteral(item interface{}, entry, def string) string {
	if entry == "" {
		return def
	}
	if s, ok := jsonpath.LookupString(item, entry); ok {
		return s
	}
	if looksLikePath(entry) {
		return def
	}
	return entry
}

// looksLikePath reports whether a field-map entry is a path expression
// rather than a literal. Literals in practice are display names such as
// "The Guardian"; path segments never contain spaces.
func looksLikePath(entry string) bool {
	return !strings.Contains(entry, " ")
}

// resolveOptionalPreferring resolves an optional field, checking the
// enriched-fields path before the mapped one. Sources that support field
// expansion deliver body text and thumbnails under "fields" regardless of
// where their base schema puts them.
func resolveOptionalPreferring(item interface{}, preferred, path string) *string {
	if s, ok := jsonpath.LookupString(item, preferred); ok {
		return &s
	}
	s, ok := jsonpath.LookupString(item, path)
	if !ok {
		return nil
	}
	return &s
}

// resolveDatetime resolves and normalizes the publication time to the
// storage layout. Absent or unparseable datetimes get the ingestion time.
func resolveDatetime(item interface{}, path string, now time.Time) string {
	s, ok := jsonpath.LookupString(item, path)
	if ok {
		for _, layout := range datetimeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC().Format(models.PublishedAtLayout)
			}
		}
	}
	return now.UTC().Format(models.PublishedAtLayout)
}
