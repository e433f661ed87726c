// Newshound - Multi-Source News Aggregation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newshound

package api

import (
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/tomtom215/newshound/internal/logging"
)

const maxLoginBodySize = 4 * 1024

type loginRequest struct {
	Username string `json:"username" validate:"required,min=1,max=255"`
	Password string `json:"password" validate:"required,min=1,max=1024"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Login serves POST /api/v1/auth/login, exchanging admin credentials for
// a JWT bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if h.jwtManager == nil || h.creds == nil {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "Authentication is disabled", nil)
		return
	}

	var req loginRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxLoginBodySize))
	if err := decoder.Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid JSON payload", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	if !h.creds.Check(req.Username, req.Password) {
		logging.Warn().Str("username", sanitizeLogValue(req.Username)).Msg("Failed login attempt")
		respondError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "Invalid credentials", nil)
		return
	}

	token, err := h.jwtManager.GenerateToken(req.Username, "admin")
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to issue token", err)
		return
	}

	respondSuccess(w, loginResponse{
		Token:    token,
		Username: req.Username,
		Role:     "admin",
	}, 0, false)
}
