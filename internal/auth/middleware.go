// Newshound - Multi-Source News Aggregation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newshound

package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const claimsKey contextKey = "auth_claims"

// ClaimsFromContext returns the authenticated user's claims, if any.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok
}

// ContextWithClaims attaches claims to a context. Exported for tests.
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// Middleware provides the authentication HTTP middlewares.
type Middleware struct {
	jwt        *JWTManager
	disabled   bool
	onRejected func(w http.ResponseWriter, r *http.Request, reason string)
}

// NewMiddleware builds the authentication middleware. disabled turns
// Require into a pass-through for deployments with AUTH_MODE=none.
// onRejected writes the error response; it keeps the response format
// concern out of this package.
func NewMiddleware(jwt *JWTManager, disabled bool, onRejected func(w http.ResponseWriter, r *http.Request, reason string)) *Middleware {
	return &Middleware{jwt: jwt, disabled: disabled, onRejected: onRejected}
}

// Optional validates a bearer token when one is present and attaches the
// claims to the request context. Requests without a token proceed as
// guests;
// requests with an invalid token are rejected rather than silently
// downgraded to guest.
func (m *Middleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" || m.disabled {
			next.ServeHTTP(w, r)
			return
		}
		claims, err := m.jwt.ValidateToken(token)
		if err != nil {
			m.onRejected(w, r, "invalid or expired token")
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
	})
}

// Require rejects requests without a valid bearer token.
func (m *Middleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.disabled {
			next.ServeHTTP(w, r)
			return
		}
		token := bearerToken(r)
		if token == "" {
			m.onRejected(w, r, "authentication required")
			return
		}
		claims, err := m.jwt.ValidateToken(token)
		if err != nil {
			m.onRejected(w, r, "invalid or expired token")
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
	})
}
