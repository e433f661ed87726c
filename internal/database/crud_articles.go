// Newshound - Multi-Source News Aggregation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newshound

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/newshound/internal/models"
)

// UpsertArticle inserts an article or, when one with the same URL already
// exists, updates its content fields in place. The existing row's id and
// created_at are preserved. Returns true when a new row was inserted.
func (db *DB) UpsertArticle(ctx context.Context, a *models.Article) (bool, error) {
	publishedAt, err := time.Parse(models.PublishedAtLayout, a.PublishedAt)
	if err != nil {
		return false, fmt.Errorf("invalid published_at %q: %w", a.PublishedAt, err)
	}

	var existing int64
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM articles WHERE url = ?`, a.URL).Scan(&existing); err != nil {
		return false, fmt.Errorf("failed to check article existence: %w", err)
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO articles (id, title, author, url, published_at, source, category, content, image, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, now(), now())
		ON CONFLICT (url) DO UPDATE SET
			title = EXCLUDED.title,
			author = EXCLUDED.author,
			published_at = EXCLUDED.published_at,
			source = EXCLUDED.source,
			category = EXCLUDED.category,
			content = EXCLUDED.content,
			image = EXCLUDED.image,
			updated_at = now()`,
		uuid.NewString(), a.Title, a.Author, a.URL, publishedAt,
		a.Source, a.Category, a.Content, a.Image)
	if err != nil {
		return false, fmt.Errorf("failed to upsert article %s: %w", a.URL, err)
	}
	return existing == 0, nil
}

// ListArticles returns one page of articles matching the filter, newest
// publication first, along with the total match count for pagination.
func (db *DB) ListArticles(ctx context.Context, filter *ArticleFilter, pageSize int) ([]models.Article, int64, error) {
	where, args := filter.whereClause()

	var total int64
	countQuery := "SELECT COUNT(*) FROM articles " + where
	if err := db.conn.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count articles: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize

	query := fmt.Sprintf(`
		SELECT id, title, author, url, published_at, source, category, content, image, created_at, updated_at
		FROM articles %s
		ORDER BY published_at DESC, id
		LIMIT ? OFFSET ?`, where)
	listArgs := append(append([]interface{}{}, args...), pageSize, offset)

	rows, err := db.conn.QueryContext(ctx, query, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list articles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	articles := make([]models.Article, 0, pageSize)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, 0, err
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate articles: %w", err)
	}
	return articles, total, nil
}

func scanArticle(rows *sql.Rows) (models.Article, error) {
	var a models.Article
	var publishedAt time.Time
	var content, image sql.NullString
	if err := rows.Scan(&a.ID, &a.Title, &a.Author, &a.URL, &publishedAt,
		&a.Source, &a.Category, &content, &image, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return models.Article{}, fmt.Errorf("failed to scan article: %w", err)
	}
	a.PublishedAt = publishedAt.UTC().Format(models.PublishedAtLayout)
	if content.Valid {
		a.Content = &content.String
	}
	if image.Valid {
		a.Image = &image.String
	}
	return a, nil
}

// DistinctFilterValues returns the distinct non-empty categories, sources,
// and authors present in stored articles, each list sorted.
func (db *DB) DistinctFilterValues(ctx context.Context) (*models.FilterOptions, error) {
	opts := &models.FilterOptions{}
	columns := []struct {
		name string
		dest *[]string
	}{
		{"category", &opts.Categories},
		{"source", &opts.Sources},
		{"author", &opts.Authors},
	}
	for _, col := range columns {
		query := fmt.Sprintf(
			`SELECT DISTINCT %s FROM articles WHERE %s IS NOT NULL AND %s <> '' ORDER BY %s`,
			col.name, col.name, col.name, col.name)
		rows, err := db.conn.QueryContext(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("failed to query distinct %s: %w", col.name, err)
		}
		values := []string{}
		for rows.Next() {
			var v string
			if err := rows.Scan(&v); err != nil {
				_ = rows.Close()
				return nil, fmt.Errorf("failed to scan %s: %w", col.name, err)
			}
			values = append(values, v)
		}
		if err := rows.Err(); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to iterate %s: %w", col.name, err)
		}
		_ = rows.Close()
		*col.dest = values
	}
	return opts, nil
}

// CountArticles returns the total number of stored articles.
func (db *DB) CountArticles(ctx context.Context) (int64, error) {
	var n int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return n, nil
}
