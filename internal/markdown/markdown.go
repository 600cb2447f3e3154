// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package markdown turns author-written Markdown into HTML fragments for the
// editor preview and for published pages.
//
// The blog dialect is rendered by Renderer, a fixed pipeline of named stages:
//
//	normalize -> scan -> blockquote-merge -> list-wrap -> list-merge -> image-row -> emit -> cleanup
//
// scan classifies each source line into a tagged Block using an ordered,
// immutable rule table (fenced code is claimed before any rule runs). The
// grouping passes merge runs of blocks, and emit renders inline content with
// a delimiter-stack scanner that only ever looks at source text, never at
// HTML produced by an earlier stage.
//
// Emphasis follows flanking rules on purpose: "_" and "__" never open or
// close inside a word and a marker next to a space on its inner side stays
// literal, so "snake_case_name" and "** x **" render unchanged where a plain
// regex substitution would emphasize them.
//
// Rendering is total: malformed input degrades to literal text and Render
// never returns an error. No stage rescans the remaining input per token, so
// time grows with input length. Output is not sanitized; callers that accept
// untrusted Markdown must sanitize the returned HTML themselves.
//
// Render is not idempotent. Feeding rendered HTML back in wraps non block-level
// chunks in another paragraph, e.g. "<p><b>x</b></p>" becomes
// "<p><p><b>x</b></p></p>".
package markdown

import (
	"strings"
	"sync"

	"inkwell/internal/frontmatter"
)

// Renderer renders the blog Markdown dialect. It holds only its rule table,
// which is never mutated after construction, so one Renderer may be shared by
// any number of goroutines.
type Renderer struct {
	lines  []LineRule
	images []ImageRule
	delims []Delimiter
	passes []pass
}

// New builds a Renderer over a copy of the given rule table. A nil table
// selects DefaultRules.
func New(rules *Rules) *Renderer {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Renderer{
		lines:  append([]LineRule(nil), rules.Lines...),
		images: append([]ImageRule(nil), rules.Images...),
		delims: append([]Delimiter(nil), rules.Delimiters...),
		passes: groupingPasses,
	}
}

var defaultRenderer = sync.OnceValue(func() *Renderer { return New(DefaultRules()) })

// Default returns the process-wide renderer built from DefaultRules.
func Default() *Renderer {
	return defaultRenderer()
}

// Render converts markdown into an HTML fragment. Empty or whitespace-only
// input yields "".
func (r *Renderer) Render(markdown string) string {
	text := normalize(markdown)
	if text == "" {
		return ""
	}
	blocks := r.scan(text)
	for _, p := range r.passes {
		blocks = p.run(blocks)
	}
	return cleanup(r.emit(blocks))
}

// Stages lists the pipeline stage names in execution order.
func (r *Renderer) Stages() []string {
	names := []string{"normalize", "scan"}
	for _, p := range r.passes {
		names = append(names, p.name)
	}
	return append(names, "emit", "cleanup")
}

// normalize unifies line endings, drops a leading front-matter block and pads
// the text with one newline on each side so line rules see uniform
// boundaries.
func normalize(src string) string {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	src = strings.ReplaceAll(src, "\r", "\n")
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}
	src = strings.TrimSpace(frontmatter.Strip(src))
	if src == "" {
		return ""
	}
	return "\n" + src + "\n"
}
