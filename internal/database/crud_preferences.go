// Newshound - Multi-Source News Aggregation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newshound

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/tomtom215/newshound/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// UpsertPreferences saves a user's preferences, replacing any previous
// record wholesale. One record exists per user.
func (db *DB) UpsertPreferences(ctx context.Context, p *models.Preferences) error {
	categories, err := marshalList(p.Categories)
	if err != nil {
		return err
	}
	sources, err := marshalList(p.Sources)
	if err != nil {
		return err
	}
	authors, err := marshalList(p.Authors)
	if err != nil {
		return err
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO preferences (username, categories, sources, authors, created_at, updated_at)
		VALUES (?, ?, ?, ?, now(), now())
		ON CONFLICT (username) DO UPDATE SET
			categories = EXCLUDED.categories,
			sources = EXCLUDED.sources,
			authors = EXCLUDED.authors,
			updated_at = now()`,
		p.Username, categories, sources, authors)
	if err != nil {
		return fmt.Errorf("failed to upsert preferences for %s: %w", p.Username, err)
	}
	return nil
}

// GetPreferences loads a user's saved preferences. Returns ErrNotFound
// when the user has never saved any.
func (db *DB) GetPreferences(ctx context.Context, username string) (*models.Preferences, error) {
	p := &models.Preferences{Username: username}
	var categories, sources, authors sql.NullString

	err := db.conn.QueryRowContext(ctx, `
		SELECT categories::VARCHAR, sources::VARCHAR, authors::VARCHAR, created_at, updated_at
		FROM preferences WHERE username = ?`, username).
		Scan(&categories, &sources, &authors, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences for %s: %w", username, err)
	}

	if p.Categories, err = unmarshalList(categories); err != nil {
		return nil, err
	}
	if p.Sources, err = unmarshalList(sources); err != nil {
		return nil, err
	}
	if p.Authors, err = unmarshalList(authors); err != nil {
		return nil, err
	}
	return p, nil
}

func marshalList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("failed to marshal preference list: %w", err)
	}
	return string(b), nil
}

func unmarshalList(raw sql.NullString) ([]string, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw.String), &values); err != nil {
		return nil, fmt.Errorf("failed to unmarshal preference list: %w", err)
	}
	if len(values) == 0 {
		return nil, nil
	}
	return values, nil
}
