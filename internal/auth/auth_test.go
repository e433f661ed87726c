// Newshound - Multi-Source News Aggregation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newshound

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tomtom215/newshound/internal/config"
)

func testSecurityConfig() *config.SecurityConfig {
	return &config.SecurityConfig{
		JWTSecret:      "0123456789abcdef0123456789abcdef",
		SessionTimeout: time.Hour,
		AdminUsername:  "admin",
		AdminPassword:  "correct horse battery staple",
	}
}

func newTestManager(t *testing.T) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(testSecurityConfig())
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}
	return m
}

func TestTokenRoundTrip(t *testing.T) {
	m := newTestManager(t)

	token, err := m.GenerateToken("alice", "admin")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Username != "alice" || claims.Role != "admin" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	m := newTestManager(t)
	token, _ := m.GenerateToken("alice", "admin")

	if _, err := m.ValidateToken(token + "x"); err == nil {
		t.Error("tampered token should fail validation")
	}
	if _, err := m.ValidateToken("not.a.token"); err == nil {
		t.Error("malformed token should fail validation")
	}

	otherCfg := testSecurityConfig()
	otherCfg.JWTSecret = "ffffffffffffffffffffffffffffffff"
	other, _ := NewJWTManager(otherCfg)
	if _, err := other.ValidateToken(token); err == nil {
		t.Error("token signed with another secret should fail validation")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	cfg := testSecurityConfig()
	cfg.SessionTimeout = -time.Minute
	m, _ := NewJWTManager(cfg)

	token, _ := m.GenerateToken("alice", "admin")
	if _, err := m.ValidateToken(token); err == nil {
		t.Error("expired token should fail validation")
	}
}

func TestCredentialChecker(t *testing.T) {
	checker, err := NewCredentialChecker(testSecurityConfig())
	if err != nil {
		t.Fatalf("NewCredentialChecker: %v", err)
	}

	if !checker.Check("admin", "correct horse battery staple") {
		t.Error("valid credentials should pass")
	}
	if checker.Check("admin", "wrong") {
		t.Error("wrong password should fail")
	}
	if checker.Check("root", "correct horse battery staple") {
		t.Error("wrong username should fail")
	}
}

func TestCredentialCheckerBcrypt(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	cfg := testSecurityConfig()
	cfg.AdminPassword = hash

	checker, err := NewCredentialChecker(cfg)
	if err != nil {
		t.Fatalf("NewCredentialChecker: %v", err)
	}
	if !checker.Check("admin", "s3cret") {
		t.Error("bcrypt-hashed password should verify")
	}
	if checker.Check("admin", hash) {
		t.Error("the hash itself is not the password")
	}
}

func middlewareFixture(t *testing.T) (*Middleware, *JWTManager) {
	t.Helper()
	m := newTestManager(t)
	rejected := func(w http.ResponseWriter, r *http.Request, reason string) {
		http.Error(w, reason, http.StatusUnauthorized)
	}
	return NewMiddleware(m, false, rejected), m
}

func claimsEcho(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, ok := ClaimsFromContext(r.Context()); ok {
			_, _ = w.Write([]byte(claims.Username))
			return
		}
		_, _ = w.Write([]byte("guest"))
	})
}

func TestOptionalMiddleware(t *testing.T) {
	mw, jwtMgr := middlewareFixture(t)
	handler := mw.Optional(claimsEcho(t))

	// No token: proceeds as guest.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/articles", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "guest" {
		t.Errorf("guest request: code=%d body=%q", rec.Code, rec.Body.String())
	}

	// Valid token: claims attached.
	token, _ := jwtMgr.GenerateToken("alice", "user")
	req := httptest.NewRequest(http.MethodGet, "/articles", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Body.String() != "alice" {
		t.Errorf("authenticated request body = %q", rec.Body.String())
	}

	// Invalid token: rejected, not downgraded to guest.
	req = httptest.NewRequest(http.MethodGet, "/articles", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("invalid token code = %d, want 401", rec.Code)
	}
}

func TestRequireMiddleware(t *testing.T) {
	mw, jwtMgr := middlewareFixture(t)
	handler := mw.Require(claimsEcho(t))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/preferences", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("missing token code = %d, want 401", rec.Code)
	}

	token, _ := jwtMgr.GenerateToken("bob", "user")
	req := httptest.NewRequest(http.MethodPost, "/preferences", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "bob" {
		t.Errorf("valid token: code=%d body=%q", rec.Code, rec.Body.String())
	}
}
