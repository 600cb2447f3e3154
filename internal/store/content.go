// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides PostgreSQL persistence for content. Lookups that
// find nothing return (nil, nil).
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"inkwell/internal/models"
)

// ErrSlugTaken is returned when a create or update would duplicate a slug.
var ErrSlugTaken = errors.New("slug already in use")

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint failures.
const uniqueViolation = "23505"

const contentColumns = `id, title, slug, body, format, excerpt, status,
	published_at, created_at, updated_at`

// ContentStore handles all content-related database operations.
type ContentStore struct {
	db *sql.DB
}

// NewContentStore creates a new ContentStore with the given database connection.
func NewContentStore(db *sql.DB) *ContentStore {
	return &ContentStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContent(row rowScanner) (*models.Content, error) {
	c := &models.Content{}
	err := row.Scan(
		&c.ID, &c.Title, &c.Slug, &c.Body, &c.Format, &c.Excerpt,
		&c.Status, &c.PublishedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// List returns content ordered by last update, newest first. An empty status
// lists every item.
func (s *ContentStore) List(ctx context.Context, status models.ContentStatus) ([]models.Content, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+contentColumns+`
		FROM content
		WHERE $1 = '' OR status = $1
		ORDER BY updated_at DESC
	`, string(status))
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	return collect(rows)
}

// ListPublished returns all published content, most recently published first.
func (s *ContentStore) ListPublished(ctx context.Context) ([]models.Content, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+contentColumns+`
		FROM content
		WHERE status = 'published'
		ORDER BY published_at DESC NULLS LAST
	`)
	if err != nil {
		return nil, fmt.Errorf("list published content: %w", err)
	}
	return collect(rows)
}

func collect(rows *sql.Rows) ([]models.Content, error) {
	defer rows.Close()

	var items []models.Content
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindByID retrieves a content item by its UUID. Returns nil if not found.
func (s *ContentStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Content, error) {
	c, err := scanContent(s.db.QueryRowContext(ctx,
		`SELECT `+contentColumns+` FROM content WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find content by id: %w", err)
	}
	return c, nil
}

// FindBySlug retrieves a published content item by its slug. Drafts are
// never returned. Used for public page rendering.
func (s *ContentStore) FindBySlug(ctx context.Context, slug string) (*models.Content, error) {
	c, err := scanContent(s.db.QueryRowContext(ctx,
		`SELECT `+contentColumns+` FROM content WHERE slug = $1 AND status = 'published'`, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find content by slug: %w", err)
	}
	return c, nil
}

// Create inserts a new content item and returns it with the generated ID.
func (s *ContentStore) Create(ctx context.Context, c *models.Content) (*models.Content, error) {
	stampPublished(c)

	created, err := scanContent(s.db.QueryRowContext(ctx, `
		INSERT INTO content (title, slug, body, format, excerpt, status, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+contentColumns,
		c.Title, c.Slug, c.Body, c.Format, c.Excerpt, c.Status, c.PublishedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("create content: %w", translate(err))
	}
	return created, nil
}

// Update modifies an existing content item and returns the stored row.
// Returns nil if no item has c.ID.
func (s *ContentStore) Update(ctx context.Context, c *models.Content) (*models.Content, error) {
	stampPublished(c)

	updated, err := scanContent(s.db.QueryRowContext(ctx, `
		UPDATE content SET
			title = $1, slug = $2, body = $3, format = $4, excerpt = $5,
			status = $6, published_at = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING `+contentColumns,
		c.Title, c.Slug, c.Body, c.Format, c.Excerpt, c.Status, c.PublishedAt, c.ID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update content: %w", translate(err))
	}
	return updated, nil
}

// Publish marks an item published, keeping an earlier publication date if
// it has one. Returns nil if no item has id.
func (s *ContentStore) Publish(ctx context.Context, id uuid.UUID) (*models.Content, error) {
	c, err := scanContent(s.db.QueryRowContext(ctx, `
		UPDATE content SET
			status = 'published',
			published_at = COALESCE(published_at, NOW()),
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+contentColumns, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("publish content: %w", err)
	}
	return c, nil
}

// Delete removes a content item by ID. It reports whether a row existed.
func (s *ContentStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM content WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete content: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete content: %w", err)
	}
	return n > 0, nil
}

// stampPublished sets published_at when an item is saved as published
// without one.
func stampPublished(c *models.Content) {
	if c.Status == models.ContentStatusPublished && c.PublishedAt == nil {
		now := time.Now()
		c.PublishedAt = &now
	}
}

// translate maps driver errors callers branch on to sentinels.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrSlugTaken
	}
	return err
}
