// Newshound - Multi-Source News Aggregation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newshound

package auth

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/newshound/internal/config"
)

// CredentialChecker verifies login credentials against the configured
// admin account. ADMIN_PASSWORD may hold either a bcrypt hash (preferred)
// or, for development setups, the plain password.
type CredentialChecker struct {
	username string
	password string
	hashed   bool
}

// NewCredentialChecker builds a checker from the security configuration.
func NewCredentialChecker(cfg *config.SecurityConfig) (*CredentialChecker, error) {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil, fmt.Errorf("admin credentials are not configured")
	}
	return &CredentialChecker{
		username: cfg.AdminUsername,
		password: cfg.AdminPassword,
		hashed:   strings.HasPrefix(cfg.AdminPassword, "$2a$") || strings.HasPrefix(cfg.AdminPassword, "$2b$"),
	}, nil
}

// Check reports whether the supplied credentials are valid. Comparisons
// are constant-time.
func (c *CredentialChecker) Check(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.username)) == 1

	var passOK bool
	if c.hashed {
		passOK = bcrypt.CompareHashAndPassword([]byte(c.password), []byte(password)) == nil
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(password), []byte(c.password)) == 1
	}
	return userOK && passOK
}

// HashPassword produces a bcrypt hash suitable for ADMIN_PASSWORD.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
