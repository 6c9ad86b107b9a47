package db

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ListTemplates returns templates ordered by popularity, optionally scoped
// to a category.
func (db *DB) ListTemplates(ctx context.Context, filters TemplateFilters) ([]Template, error) {
	q := psql.Select("id", "name", "category", "description", "usage_count", "created_at").
		From("templates").
		OrderBy("usage_count DESC", "name ASC")
	if filters.Category != "" {
		q = q.Where(sq.Eq{"category": filters.Category})
	}
	limit := filters.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	q = q.Limit(uint64(limit))

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build templates query: %w", err)
	}

	rows, err := db.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	var templates []Template
	for rows.Next() {
		var t Template
		if err := rows.Scan(&t.ID, &t.Name, &t.Category, &t.Description, &t.UsageCount, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// IncrementTemplateUsage bumps a template's usage counter and returns the
// new count. The increment happens in SQL so concurrent uses never lose
// updates.
func (db *DB) IncrementTemplateUsage(ctx context.Context, id uuid.UUID) (int, error) {
	var count int
	err := db.pool.QueryRow(ctx,
		`UPDATE templates SET usage_count = usage_count + 1 WHERE id = $1
		 RETURNING usage_count`,
		id,
	).Scan(&count)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("failed to increment template usage: %w", err)
	}
	return count, nil
}
