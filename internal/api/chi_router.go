// Newshound - Multi-Source News Aggregation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newshound

// Package api provides the HTTP surface using the Chi router.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/newshound/internal/auth"
	"github.com/tomtom215/newshound/internal/middleware"
)

// Router wires handlers and middleware into the route tree.
type Router struct {
	handler *Handler
	authMW  *auth.Middleware
	chiMW   *ChiMiddleware
}

// NewRouter creates the router. authMW may be a disabled middleware when
// AUTH_MODE is "none".
func NewRouter(handler *Handler, authMW *auth.Middleware, chiMW *ChiMiddleware) *Router {
	return &Router{handler: handler, authMW: authMW, chiMW: chiMW}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMW.CORS())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMW.RateLimitHealth())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
		r.Get("/", router.handler.Health)
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(router.chiMW.RateLimitLogin()).Post("/login", router.handler.Login)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMW.RateLimit())
		r.Use(middleware.PrometheusMetrics)

		// Listing endpoints personalize when a valid token is present
		// and serve guests otherwise.
		r.Group(func(r chi.Router) {
			r.Use(router.authMW.Optional)
			r.Get("/articles", router.handler.Articles)
			r.Get("/filters", router.handler.Filters)
		})

		// Preference and operational endpoints require authentication.
		r.Group(func(r chi.Router) {
			r.Use(router.authMW.Require)
			r.Get("/preferences", router.handler.GetPreferences)
			r.Post("/preferences", router.handler.SavePreferences)
			r.Post("/ingest/trigger", router.handler.TriggerIngest)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "Route not found", nil)
	})

	return r
}
