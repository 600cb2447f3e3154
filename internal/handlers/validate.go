package handlers

import (
	"strings"
	"unicode/utf8"

	"inkwell/internal/slug"
)

// Validation limits for content fields.
const (
	maxTitleLen   = 300
	maxBodyLen    = 100_000
	maxExcerptLen = 1_000
)

// reservedSlugs are top-level paths served by other routes.
var reservedSlugs = map[string]bool{
	"api":     true,
	"health":  true,
	"metrics": true,
	"static":  true,
}

// validateContent checks content inputs and returns the first error found.
func validateContent(title, contentSlug, body string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	if contentSlug == "" {
		return "Slug is required."
	}
	if len(contentSlug) > slug.MaxLength {
		return "Slug is too long (max 120 characters)."
	}
	if !slug.Valid(contentSlug) {
		return "Slug may only contain lowercase letters, digits and single hyphens."
	}
	if reservedSlugs[contentSlug] {
		return "Slug is reserved."
	}
	if utf8.RuneCountInString(body) > maxBodyLen {
		return "Body is too long (max 100,000 characters)."
	}
	return ""
}

// validateExcerpt checks the optional summary field.
func validateExcerpt(excerpt string) string {
	if utf8.RuneCountInString(excerpt) > maxExcerptLen {
		return "Excerpt is too long (max 1,000 characters)."
	}
	return ""
}
