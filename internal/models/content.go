// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// ContentStatus represents the publishing state of a content item.
type ContentStatus string

const (
	ContentStatusDraft     ContentStatus = "draft"
	ContentStatusPublished ContentStatus = "published"
)

// Content is a Markdown document. Body holds the source exactly as the
// author wrote it, front matter included; Format names the dialect it is
// rendered with ("blog" or "commonmark").
type Content struct {
	ID          uuid.UUID     `json:"id"`
	Title       string        `json:"title"`
	Slug        string        `json:"slug"`
	Body        string        `json:"body"`
	Format      string        `json:"format"`
	Excerpt     *string       `json:"excerpt,omitempty"`
	Status      ContentStatus `json:"status"`
	PublishedAt *time.Time    `json:"published_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// IsPublished returns true if the content item is in published status.
func (c *Content) IsPublished() bool {
	return c.Status == ContentStatusPublished
}

// ExcerptText returns the excerpt or "" when none is set.
func (c *Content) ExcerptText() string {
	if c.Excerpt == nil {
		return ""
	}
	return *c.Excerpt
}

// ValidStatus reports whether s is a known content status.
func ValidStatus(s ContentStatus) bool {
	return s == ContentStatusDraft || s == ContentStatusPublished
}
