// Newshound - Multi-Source News Aggregation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newshound

// Package jsonpath evaluates dotted path expressions against decoded JSON
// documents. Paths drive the data-driven field maps in source configs, so
// adding a news source never requires per-source accessor code.
//
// A path is a dot-separated sequence of segments. Each segment is either
// an object key or a numeric array index: "headline.main" descends two
// object levels, "multimedia.0.url" takes the first element of an array
// and then a key inside it.
package jsonpath

import (
	"strconv"
	"strings"
)

// Lookup resolves path against doc and reports whether the full path
// resolved. Absence and a present-but-null value are both reported as not
// found; callers never need to distinguish them.
func Lookup(doc interface{}, path string) (interface{}, bool) {
	if path == "" {
		return nil, false
	}
	current := doc
	for _, seg := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]interface{}:
			v, ok := node[seg]
			if !ok {
				return nil, false
			}
			current = v
		case []interface{}:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	if current == nil {
		return nil, false
	}
	return current, true
}

// LookupString resolves path and returns the value only if it is a
// non-empty string.
func LookupString(doc interface{}, path string) (string, bool) {
	v, ok := Lookup(doc, path)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
