package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// welcomeBody shows off the blog dialect on a fresh install.
const welcomeBody = `---
title: Welcome to Inkwell
---
# Welcome to Inkwell

This post was created on first start. Edit it or delete it.

## What the editor understands

- **bold**, *italic*, ~~struck~~ and ==highlighted== text
- ` + "`inline code`" + ` and fenced blocks with a language tag
- [links](https://example.com) and image rows

> Quotes merge across lines
> like this.

` + "```go\nfmt.Println(\"hello\")\n```" + `
`

// Seed populates the database with initial development data. It creates a
// published welcome post if the content table is empty.
func Seed(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM content").Scan(&count); err != nil {
		return fmt.Errorf("seed check content: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO content (title, slug, body, format, status, published_at)
		VALUES ($1, $2, $3, 'blog', 'published', now())
		ON CONFLICT (slug) DO NOTHING
	`, "Welcome to Inkwell", "welcome", welcomeBody)
	if err != nil {
		return fmt.Errorf("seed insert welcome post: %w", err)
	}

	slog.Info("database seeded with welcome post", "slug", "welcome")
	return nil
}
