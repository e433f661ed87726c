// Newshound - Multi-Source News Aggregation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newshound

package models

import (
	"fmt"
	"net/url"
	"time"
)

// APIResponse is the standardized response wrapper used by all HTTP
// endpoints. It provides a consistent structure for both successful and
// error responses, with metadata for observability and caching.
//
// Status field values:
//   - "success": Request completed, see Data field
//   - "error": Request failed, see Error field for details
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"total": 42, "data": [...]},
//	  "metadata": {
//	    "timestamp": "2026-08-31T12:00:00Z",
//	    "query_time_ms": 12,
//	    "cached": false
//	  }
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError contains structured error details for failed requests.
//
// Code values follow the error taxonomy:
//   - "VALIDATION_ERROR": malformed or out-of-range request input
//   - "UNAUTHORIZED": missing or invalid credentials
//   - "NOT_FOUND": unknown route or resource
//   - "RATE_LIMITED": client exceeded the request budget
//   - "INTERNAL_ERROR": storage or server failure
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ArticlePage is the paginated listing payload for article queries. Its
// shape is a stable public contract: clients page through results using
// the pre-built URLs rather than computing offsets themselves.
type ArticlePage struct {
	Data        []Article  `json:"data"`
	CurrentPage int        `json:"current_page"`
	NextPageURL *string    `json:"next_page_url"`
	LastPageURL string     `json:"last_page_url"`
	Links       []PageLink `json:"links"`
	PerPage     int        `json:"per_page"`
	Total       int64      `json:"total"`
}

// PageLink is one entry in a page's navigation link list: Previous, one
// entry per page number, then Next. URL is null when the target does not
// exist (Previous on the first page, Next on the last).
type PageLink struct {
	URL    *string `json:"url"`
	Label  string  `json:"label"`
	Active bool    `json:"active"`
}

// FilterOptions lists the distinct values currently present in stored
// articles, for building filter UIs.
type FilterOptions struct {
	Categories []string `json:"categories"`
	Sources    []string `json:"sources"`
	Authors    []string `json:"authors"`
}

// NewArticlePage assembles the pagination envelope for a result page.
// baseURL is the request path plus any non-page query parameters; page
// URLs are derived from it by setting the "page" parameter.
func NewArticlePage(articles []Article, page, perPage int, total int64, baseURL string) ArticlePage {
	lastPage := int((total + int64(perPage) - 1) / int64(perPage))
	if lastPage < 1 {
		lastPage = 1
	}

	var nextURL *string
	if page < lastPage {
		u := pageURL(baseURL, page+1)
		nextURL = &u
	}

	links := make([]PageLink, 0, lastPage+2)
	var prevURL *string
	if page > 1 {
		u := pageURL(baseURL, page-1)
		prevURL = &u
	}
	links = append(links, PageLink{URL: prevURL, Label: "&laquo; Previous", Active: false})
	for p := 1; p <= lastPage; p++ {
		u := pageURL(baseURL, p)
		links = append(links, PageLink{URL: &u, Label: fmt.Sprintf("%d", p), Active: p == page})
	}
	links = append(links, PageLink{URL: nextURL, Label: "Next &raquo;", Active: false})

	if articles == nil {
		articles = []Article{}
	}
	return ArticlePage{
		Data:        articles,
		CurrentPage: page,
		NextPageURL: nextURL,
		LastPageURL: pageURL(baseURL, lastPage),
		Links:       links,
		PerPage:     perPage,
		Total:       total,
	}
}

func pageURL(baseURL string, page int) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Sprintf("%s?page=%d", baseURL, page)
	}
	q := u.Query()
	q.Set("page", fmt.Sprintf("%d", page))
	u.RawQuery = q.Encode()
	return u.String()
}
