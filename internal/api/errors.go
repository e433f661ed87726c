// Newshound - Multi-Source News Aggregation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newshound

package api

import "net/http"

// API error codes returned in the error envelope.
const (
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// RespondUnauthorized writes a 401 error envelope. Exported for the auth
// middleware's rejection callback, which lives outside this package.
func RespondUnauthorized(w http.ResponseWriter, reason string) {
	respondError(w, http.StatusUnauthorized, ErrCodeUnauthorized, reason, nil)
}
