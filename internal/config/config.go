// Newshound - Multi-Source News Aggregation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newshound

// Package config provides layered configuration for Newshound using Koanf v2.
//
// Configuration is loaded from three sources, highest priority last:
//  1. Built-in defaults (struct provider)
//  2. Optional YAML config file (config.yaml)
//  3. Environment variables (NEWSAPI_API_KEY, INGEST_INTERVAL, ...)
//
// Source definitions are plain data: adding a news source is a config
// addition, never a code change. API key credentials are never part of the
// checked-in defaults; they are injected at load time from the environment
// or the source_keys config map.
package config

import "time"

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Cache    CacheConfig    `koanf:"cache"`
	Ingest   IngestConfig   `koanf:"ingest"`
	API      APIConfig      `koanf:"api"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`

	// Sources lists every news source to ingest, in order.
	Sources []SourceConfig `koanf:"sources"`

	// SourceKeys maps a source key to its API credential. Populated from
	// environment variables (e.g. NEWSAPI_API_KEY) so secrets never live
	// in config files or defaults.
	SourceKeys map[string]string `koanf:"source_keys"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`
}

// CacheConfig holds read-path cache settings.
//
// Store selects the backend: "memory" (default) or "badger" for a
// persistent cache that survives restarts.
type CacheConfig struct {
	Store string        `koanf:"store"`
	Path  string        `koanf:"path"`
	TTL   time.Duration `koanf:"ttl"`
}

// IngestConfig holds ingestion scheduling and fetch behavior.
type IngestConfig struct {
	// Interval between ingestion runs. Minute granularity in production;
	// seconds are accepted for testing.
	Interval time.Duration `koanf:"interval"`

	// FetchTimeout bounds a single source HTTP request so one unresponsive
	// source cannot stall the run.
	FetchTimeout time.Duration `koanf:"fetch_timeout"`

	// RetryAttempts is the maximum number of retries on HTTP 429.
	RetryAttempts int `koanf:"retry_attempts"`

	// RetryBaseDelay is the initial backoff delay, doubled per retry.
	RetryBaseDelay time.Duration `koanf:"retry_base_delay"`

	// RequestsPerSecond rate-limits outbound requests per source.
	// Zero disables the limiter.
	RequestsPerSecond float64 `koanf:"requests_per_second"`

	// RunOnStartup performs an immediate run when the service starts,
	// before the first ticker interval elapses.
	RunOnStartup bool `koanf:"run_on_startup"`
}

// APIConfig holds read API settings.
type APIConfig struct {
	// PageSize is the fixed number of articles per listing page.
	PageSize int `koanf:"page_size"`
}

// SecurityConfig holds authentication and HTTP hardening settings.
type SecurityConfig struct {
	// AuthMode selects the authentication mode: "jwt" or "none".
	AuthMode string `koanf:"auth_mode"`

	JWTSecret      string        `koanf:"jwt_secret"`
	SessionTimeout time.Duration `koanf:"session_timeout"`
	AdminUsername  string        `koanf:"admin_username"`
	AdminPassword  string        `koanf:"admin_password"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	CORSOrigins    []string `koanf:"cors_origins"`
	TrustedProxies []string `koanf:"trusted_proxies"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// SourceConfig describes one news source entirely as data.
//
// FieldMap translates canonical article field names (title, author, url,
// published_at, source, category, content, image) to source-native path
// expressions (dotted traversal with numeric array indices, e.g.
// "multimedia.0.url"). A value that does not resolve as a path is treated
// as a constant literal fallback, which covers sources that return a fixed
// source name instead of embedding one per item.
type SourceConfig struct {
	// Key uniquely identifies the source (e.g. "newsapi").
	Key string `koanf:"key"`

	// Endpoint is the HTTP GET endpoint for this source.
	Endpoint string `koanf:"endpoint"`

	// Params are query parameters sent with every request.
	Params map[string]string `koanf:"params"`

	// APIKeyParam names the query parameter carrying the credential
	// (e.g. "apiKey" for NewsAPI, "api-key" for The Guardian). The value
	// itself comes from SourceKeys at load time.
	APIKeyParam string `koanf:"api_key_param"`

	// FieldMap maps canonical field names to path expressions or literals.
	FieldMap map[string]string `koanf:"field_map"`
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment != "production"
}
