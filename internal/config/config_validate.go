// Newshound - Multi-Source News Aggregation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newshound

package config

import (
	"fmt"
	"net/url"
	"strings"
)

const minJWTSecretLength = 32

// Validate checks the configuration for internal consistency. It returns
// the first error found.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}

	switch c.Cache.Store {
	case "memory", "badger":
	default:
		return fmt.Errorf("cache.store must be 'memory' or 'badger', got %q", c.Cache.Store)
	}
	if c.Cache.Store == "badger" && c.Cache.Path == "" {
		return fmt.Errorf("cache.path is required when cache.store is 'badger'")
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got %s", c.Cache.TTL)
	}

	if c.Ingest.Interval <= 0 {
		return fmt.Errorf("ingest.interval must be positive, got %s", c.Ingest.Interval)
	}
	if c.Ingest.FetchTimeout <= 0 {
		return fmt.Errorf("ingest.fetch_timeout must be positive, got %s", c.Ingest.FetchTimeout)
	}
	if c.Ingest.RetryAttempts < 0 {
		return fmt.Errorf("ingest.retry_attempts must not be negative, got %d", c.Ingest.RetryAttempts)
	}

	if c.API.PageSize < 1 {
		return fmt.Errorf("api.page_size must be at least 1, got %d", c.API.PageSize)
	}

	switch c.Security.AuthMode {
	case "jwt":
		if len(c.Security.JWTSecret) < minJWTSecretLength {
			return fmt.Errorf("security.jwt_secret must be at least %d characters when auth_mode is 'jwt'", minJWTSecretLength)
		}
		if c.Security.AdminUsername == "" {
			return fmt.Errorf("security.admin_username must not be empty when auth_mode is 'jwt'")
		}
	case "none":
	default:
		return fmt.Errorf("security.auth_mode must be 'jwt' or 'none', got %q", c.Security.AuthMode)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("logging.level must be one of trace, debug, info, warn, error, fatal; got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", c.Logging.Format)
	}

	if len(c.Sources) == 0 {
		return fmt.Errorf("at least one source must be configured")
	}
	seen := make(map[string]bool, len(c.Sources))
	for i, src := range c.Sources {
		if src.Key == "" {
			return fmt.Errorf("sources[%d].key must not be empty", i)
		}
		if seen[src.Key] {
			return fmt.Errorf("duplicate source key %q", src.Key)
		}
		seen[src.Key] = true
		if src.Endpoint == "" {
			return fmt.Errorf("source %q: endpoint must not be empty", src.Key)
		}
		if u, err := url.Parse(src.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("source %q: endpoint %q is not an absolute URL", src.Key, src.Endpoint)
		}
		if src.FieldMap["url"] == "" {
			return fmt.Errorf("source %q: field_map must map 'url'", src.Key)
		}
		if src.FieldMap["title"] == "" {
			return fmt.Errorf("source %q: field_map must map 'title'", src.Key)
		}
	}

	return nil
}
