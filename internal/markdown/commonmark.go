// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package markdown

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"inkwell/internal/frontmatter"
)

// Format names a body dialect stored alongside content.
type Format string

const (
	// FormatBlog is the editor's dialect, rendered by Renderer.
	FormatBlog Format = "blog"
	// FormatCommonMark is GitHub-flavored CommonMark rendered by goldmark.
	FormatCommonMark Format = "commonmark"
)

// ErrUnknownFormat is returned by Convert and ParseFormat for names other
// than the known formats.
var ErrUnknownFormat = errors.New("unknown markdown format")

// ParseFormat maps a user-supplied name to a Format. The empty string selects
// FormatBlog.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case "", FormatBlog:
		return FormatBlog, nil
	case FormatCommonMark, "gfm":
		return FormatCommonMark, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// gm is the configured goldmark instance, reused across calls.
var gm = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,         // tables, strikethrough, autolinks, task lists
		extension.Typographer, // smart quotes and dashes
		highlighting.NewHighlighting(
			highlighting.WithStyle("monokai"),
			highlighting.WithFormatOptions(),
		),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		html.WithUnsafe(), // raw HTML passes through, same as the blog dialect
	),
)

// CommonMark converts CommonMark source into HTML. A leading front-matter
// block is dropped first so both formats treat metadata the same way.
func CommonMark(source string) (string, error) {
	var buf bytes.Buffer
	if err := gm.Convert([]byte(frontmatter.Strip(source)), &buf); err != nil {
		return "", fmt.Errorf("goldmark convert: %w", err)
	}
	return buf.String(), nil
}

// Convert renders source in the given format. The blog format never fails.
func Convert(format Format, source string) (string, error) {
	switch format {
	case FormatBlog, "":
		return Default().Render(source), nil
	case FormatCommonMark:
		return CommonMark(source)
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}
