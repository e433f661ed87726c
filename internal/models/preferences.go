// Newshound - Multi-Source News Aggregation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newshound

package models

import "time"

// Preferences holds a user's saved reading preferences. One record exists
// per user; saving replaces the previous record wholesale.
//
// Each dimension is an independent allow-list: an empty or null list means
// "no restriction on this dimension", never "match nothing". Preference
// restrictions and explicit request filters compose by intersection.
type Preferences struct {
	Username   string   `json:"username"`
	Categories []string `json:"categories"`
	Sources    []string `json:"sources"`
	Authors    []string `json:"authors"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PreferencesRequest is the payload for saving preferences. All fields are
// optional; any omitted dimension clears that restriction.
type PreferencesRequest struct {
	Categories []string `json:"categories" validate:"omitempty,dive,min=1,max=255"`
	Sources    []string `json:"sources" validate:"omitempty,dive,min=1,max=255"`
	Authors    []string `json:"authors" validate:"omitempty,dive,min=1,max=255"`
}

// IsEmpty reports whether no dimension carries a restriction.
func (p *Preferences) IsEmpty() bool {
	return len(p.Categories) == 0 && len(p.Sources) == 0 && len(p.Authors) == 0
}
