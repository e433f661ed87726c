// Newshound - Multi-Source News Aggregation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newshound

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are checked in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/newshound/config.yaml",
	"/etc/newshound/config.yml",
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			Timeout:     30 * time.Second,
			Environment: "production",
		},
		Database: DatabaseConfig{
			Path:      "./data/newshound.db",
			MaxMemory: "512MB",
			Threads:   2,
		},
		Cache: CacheConfig{
			Store: "memory",
			Path:  "./data/cache",
			TTL:   600 * time.Second,
		},
		Ingest: IngestConfig{
			Interval:          time.Minute,
			FetchTimeout:      30 * time.Second,
			RetryAttempts:     5,
			RetryBaseDelay:    time.Second,
			RequestsPerSecond: 2,
			RunOnStartup:      true,
		},
		API: APIConfig{
			PageSize: 10,
		},
		Security: SecurityConfig{
			AuthMode:        "jwt",
			SessionTimeout:  24 * time.Hour,
			AdminUsername:   "admin",
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Sources:    defaultSources(),
		SourceKeys: map[string]string{},
	}
}

// defaultSources returns the three built-in source definitions. Each is
// pure data; deployments can replace or extend the list via config file.
func defaultSources() []SourceConfig {
	return []SourceConfig{
		{
			Key:         "newsapi",
			Endpoint:    "https://newsapi.org/v2/top-headlines",
			Params:      map[string]string{"country": "us"},
			APIKeyParam: "apiKey",
			FieldMap: map[string]string{
				"title":        "title",
				"author":       "author",
				"url":          "url",
				"published_at": "publishedAt",
				"source":       "source.name",
				"category":     "category",
				"content":      "content",
				"image":        "urlToImage",
			},
		},
		{
			Key:         "guardian",
			Endpoint:    "https://content.guardianapis.com/search",
			Params:      map[string]string{"show-fields": "bodyText,thumbnail"},
			APIKeyParam: "api-key",
			FieldMap: map[string]string{
				"title":        "webTitle",
				"author":       "",
				"url":          "webUrl",
				"published_at": "webPublicationDate",
				"source":       "The Guardian",
				"category":     "sectionName",
				"content":      "fields.bodyText",
				"image":        "fields.thumbnail",
			},
		},
		{
			Key:         "nytimes",
			Endpoint:    "https://api.nytimes.com/svc/search/v2/articlesearch.json",
			Params:      map[string]string{},
			APIKeyParam: "api-key",
			FieldMap: map[string]string{
				"title":        "headline.main",
				"author":       "byline.original",
				"url":          "web_url",
				"published_at": "pub_date",
				"source":       "The New York Times",
				"category":     "section_name",
				"content":      "lead_paragraph",
				"image":        "multimedia.0.url",
			},
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment variables, then validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	processSliceFields(k)

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	injectSourceKeys(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findConfigFile() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransformFunc maps flat environment variable names to dotted config
// keys. Unknown variables are ignored so unrelated environment noise never
// pollutes the config tree.
func envTransformFunc(s string) string {
	mappings := map[string]string{
		"HTTP_HOST":          "server.host",
		"HTTP_PORT":          "server.port",
		"HTTP_TIMEOUT":       "server.timeout",
		"SERVER_ENVIRONMENT": "server.environment",

		"DUCKDB_PATH":       "database.path",
		"DUCKDB_MAX_MEMORY": "database.max_memory",
		"DUCKDB_THREADS":    "database.threads",

		"CACHE_STORE": "cache.store",
		"CACHE_PATH":  "cache.path",
		"CACHE_TTL":   "cache.ttl",

		"INGEST_INTERVAL":         "ingest.interval",
		"INGEST_FETCH_TIMEOUT":    "ingest.fetch_timeout",
		"INGEST_RETRY_ATTEMPTS":   "ingest.retry_attempts",
		"INGEST_RPS":              "ingest.requests_per_second",
		"INGEST_RUN_ON_STARTUP":   "ingest.run_on_startup",

		"API_PAGE_SIZE": "api.page_size",

		"AUTH_MODE":           "security.auth_mode",
		"JWT_SECRET":          "security.jwt_secret",
		"SESSION_TIMEOUT":     "security.session_timeout",
		"ADMIN_USERNAME":      "security.admin_username",
		"ADMIN_PASSWORD":      "security.admin_password",
		"RATE_LIMIT_REQS":     "security.rate_limit_reqs",
		"RATE_LIMIT_WINDOW":   "security.rate_limit_window",
		"RATE_LIMIT_DISABLED": "security.rate_limit_disabled",
		"CORS_ORIGINS":        "security.cors_origins",
		"TRUSTED_PROXIES":     "security.trusted_proxies",

		"LOG_LEVEL":  "logging.level",
		"LOG_FORMAT": "logging.format",
		"LOG_CALLER": "logging.caller",

		"NEWSAPI_API_KEY":  "source_keys.newsapi",
		"GUARDIAN_API_KEY": "source_keys.guardian",
		"NYTIMES_API_KEY":  "source_keys.nytimes",
	}
	if key, ok := mappings[s]; ok {
		return key
	}
	// Generic escape hatch for sources added via config file:
	// <KEY>_API_KEY maps to source_keys.<key>.
	if strings.HasSuffix(s, "_API_KEY") {
		src := strings.ToLower(strings.TrimSuffix(s, "_API_KEY"))
		if src != "" {
			return "source_keys." + src
		}
	}
	return ""
}

// processSliceFields splits comma-separated environment values into slices
// for fields declared as []string. Env providers deliver strings only.
func processSliceFields(k *koanf.Koanf) {
	sliceFields := []string{
		"security.cors_origins",
		"security.trusted_proxies",
	}
	for _, field := range sliceFields {
		if raw, ok := k.Get(field).(string); ok {
			parts := strings.Split(raw, ",")
			values := make([]string, 0, len(parts))
			for _, p := range parts {
				if trimmed := strings.TrimSpace(p); trimmed != "" {
					values = append(values, trimmed)
				}
			}
			_ = k.Set(field, values)
		}
	}
}

// injectSourceKeys copies credentials from SourceKeys into each source's
// query parameters under the source's declared API key parameter name.
func injectSourceKeys(cfg *Config) {
	for i := range cfg.Sources {
		src := &cfg.Sources[i]
		key, ok := cfg.SourceKeys[src.Key]
		if !ok || key == "" || src.APIKeyParam == "" {
			continue
		}
		if src.Params == nil {
			src.Params = map[string]string{}
		}
		src.Params[src.APIKeyParam] = key
	}
}
