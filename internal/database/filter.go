// Newshound - Multi-Source News Aggregation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newshound

package database

import (
	"fmt"
	"strings"
)

// ArticleFilter describes one article listing query. Preference lists and
// request filters are kept separate so both apply: each non-empty list
// becomes its own IN clause and the clauses AND together, so a request
// filter narrows preference results instead of replacing them.
type ArticleFilter struct {
	// Free-text search, matched against titles as a substring.
	Search string

	// Request filters.
	Categories    []string
	Sources       []string
	Authors       []string
	PublishedDate string // calendar day, YYYY-MM-DD

	// Preference restrictions, applied for authenticated users who have
	// not opted out.
	PrefCategories []string
	PrefSources    []string
	PrefAuthors    []string

	// Page is 1-based.
	Page int
}

// whereClause builds the WHERE clause and argument list for the filter.
// It returns an empty string when no condition applies.
func (f *ArticleFilter) whereClause() (string, []interface{}) {
	var conds []string
	var args []interface{}

	addIn := func(column string, values []string) {
		if len(values) == 0 {
			return
		}
		placeholders := make([]string, len(values))
		for i, v := range values {
			placeholders[i] = "?"
			args = append(args, v)
		}
		conds = append(conds, fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ", ")))
	}

	if f.Search != "" {
		conds = append(conds, "title LIKE ?")
		args = append(args, "%"+f.Search+"%")
	}

	addIn("category", f.PrefCategories)
	addIn("source", f.PrefSources)
	addIn("author", f.PrefAuthors)

	addIn("category", f.Categories)
	addIn("source", f.Sources)
	addIn("author", f.Authors)

	if f.PublishedDate != "" {
		conds = append(conds, "CAST(published_at AS DATE) = CAST(? AS DATE)")
		args = append(args, f.PublishedDate)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}
