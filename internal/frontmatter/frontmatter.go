// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package frontmatter separates a leading `---` delimited metadata block from
// a Markdown body and decodes it as YAML.
//
// Only a block at the very start of the document counts. A `---` line
// anywhere else is body text (the renderer turns it into a rule).
package frontmatter

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document starts with a `---` line
// but no closing `---` line follows.
var ErrMissingClosingDelimiter = errors.New("front matter start delimiter found but closing delimiter is missing")

const delimiter = "---"

// block matches the first metadata block, non-greedy, so a second block
// further down is left alone.
var block = regexp.MustCompile(`^---\n((?:[\s\S]*?\n)?)---(?:\n|$)`)

// Meta holds the recognized front-matter fields. Anything else lands in
// Extra.
type Meta struct {
	Title   string         `yaml:"title"`
	Slug    string         `yaml:"slug"`
	Excerpt string         `yaml:"excerpt"`
	Format  string         `yaml:"format"`
	Extra   map[string]any `yaml:",inline"`
}

// Split returns the raw metadata and the body that follows it. Line endings
// are normalized to "\n". When src does not start with a delimiter line, had
// is false and body is the whole input. An unterminated block is reported
// with ErrMissingClosingDelimiter and body is again the whole input.
func Split(src string) (meta, body string, had bool, err error) {
	src = normalizeNewlines(src)
	if src != delimiter && !strings.HasPrefix(src, delimiter+"\n") {
		return "", src, false, nil
	}
	m := block.FindStringSubmatchIndex(src)
	if m == nil {
		return "", src, false, ErrMissingClosingDelimiter
	}
	return src[m[2]:m[3]], src[m[1]:], true, nil
}

// Strip returns src without its leading metadata block, if any. It never
// fails: an unterminated block is kept as body text.
func Strip(src string) string {
	_, body, _, _ := Split(src)
	return body
}

// Parse splits src and decodes the metadata block.
func Parse(src string) (Meta, string, error) {
	raw, body, had, err := Split(src)
	if err != nil {
		return Meta{}, body, err
	}
	var meta Meta
	if !had || strings.TrimSpace(raw) == "" {
		return meta, body, nil
	}
	if err := yaml.Unmarshal([]byte(raw), &meta); err != nil {
		return Meta{}, body, fmt.Errorf("decode front matter: %w", err)
	}
	return meta, body, nil
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
