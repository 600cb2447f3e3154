// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package markdown

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// blockTags lists the tags treated as already block-level: a paragraph chunk
// starting with one of them is never wrapped in <p>. Every tag the block
// emitter can open with must appear here.
var blockTags = []string{"h1", "h2", "h3", "h4", "h5", "h6", "ul", "ol", "li", "blockquote", "pre", "hr", "img", "div"}

var (
	blockStart = regexp.MustCompile(`^\s*</?(?:` + strings.Join(blockTags, "|") + `)\b`)

	// cleanupTags is blockTags without li, which never follows a bare <p>.
	cleanupTags  = `h[1-6]|ul|ol|blockquote|pre|hr|img|div`
	pBeforeBlock = regexp.MustCompile(`<p>\s*<(?:` + cleanupTags + `)\b`)
	blockTail    = regexp.MustCompile(`^(?:</(?:` + cleanupTags + `)>|<(?:hr|img)\b[^>]*>)$`)
	emptyPara    = regexp.MustCompile(`<p></p>`)
	extraNewline = regexp.MustCompile(`\n{3,}`)
	preBlock     = regexp.MustCompile(`(?s)<pre><code[^>]*>.*?</code></pre>`)
)

// BlockTags returns the block-level tag names a paragraph chunk may start
// with to stay unwrapped.
func BlockTags() []string {
	return append([]string(nil), blockTags...)
}

// emit renders the grouped blocks, one chunk per block, separated by a blank
// line.
func (r *Renderer) emit(blocks []Block) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if s := r.emitBlock(b); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

func (r *Renderer) emitBlock(b Block) string {
	switch b.Kind {
	case KindBlank:
		return ""
	case KindHeading:
		return fmt.Sprintf("<h%d>%s</h%d>", b.Level, r.inline(b.Text), b.Level)
	case KindBlockquote:
		lines := make([]string, len(b.Lines))
		for i, l := range b.Lines {
			lines[i] = r.inline(l)
		}
		return "<blockquote>" + strings.Join(lines, "<br>") + "</blockquote>"
	case KindRule:
		return "<hr>"
	case KindCode:
		if b.Lang != "" {
			return `<pre><code class="language-` + b.Lang + `">` + b.Text + "</code></pre>"
		}
		return "<pre><code>" + b.Text + "</code></pre>"
	case KindImages:
		return imageRow(b.Images)
	case KindList:
		return r.list(b)
	case KindListItem:
		return r.list(Block{Kind: KindList, Ordered: b.Ordered, Items: []Block{b}})
	default:
		return r.paragraph(b.Lines)
	}
}

func (r *Renderer) list(b Block) string {
	tag := "ul"
	if b.Ordered {
		tag = "ol"
	}
	var sb strings.Builder
	sb.WriteString("<" + tag + ">\n")
	for _, item := range b.Items {
		sb.WriteString("<li>" + r.inline(item.Text) + "</li>\n")
	}
	sb.WriteString("</" + tag + ">")
	return sb.String()
}

// paragraph wraps a run of text lines in <p>, turning line breaks into <br>.
// A chunk that already starts with a block-level tag (raw HTML, a leading
// image) is left unwrapped.
func (r *Renderer) paragraph(lines []string) string {
	rendered := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			rendered = append(rendered, r.inline(l))
		}
	}
	if len(rendered) == 0 {
		return ""
	}
	if blockStart.MatchString(rendered[0]) {
		return strings.Join(rendered, "\n")
	}
	return "<p>" + strings.Join(rendered, "<br>") + "</p>"
}

// imageRow renders a single image bare and two or more inside one row
// container.
func imageRow(imgs []Image) string {
	if len(imgs) == 1 {
		return imgs[0].HTML()
	}
	var sb strings.Builder
	sb.WriteString(`<div class="image-row">`)
	for _, img := range imgs {
		sb.WriteString(img.HTML())
	}
	sb.WriteString("</div>")
	return sb.String()
}

// HTML renders the image tag. Attribute values are written as given.
func (img Image) HTML() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<img src="%s" alt="%s" class="blog-image"`, img.Src, img.Alt)
	if img.Width != "" {
		fmt.Fprintf(&sb, ` style="width: %s; max-width: %s; display: inline-block;"`, img.Width, img.Width)
	}
	if img.Title != "" {
		fmt.Fprintf(&sb, ` title="%s"`, img.Title)
	}
	sb.WriteString(" />")
	return sb.String()
}

// cleanup strips paragraphs wrapped around block-level tags, drops empty
// paragraphs and collapses runs of blank lines. Code blocks keep their
// newlines untouched.
func cleanup(html string) string {
	html = unwrapBlocks(html)
	html = emptyPara.ReplaceAllString(html, "")

	var sb strings.Builder
	last := 0
	for _, loc := range preBlock.FindAllStringIndex(html, -1) {
		sb.WriteString(extraNewline.ReplaceAllString(html[last:loc[0]], "\n\n"))
		sb.WriteString(html[loc[0]:loc[1]])
		last = loc[1]
	}
	sb.WriteString(extraNewline.ReplaceAllString(html[last:], "\n\n"))
	return strings.TrimSpace(sb.String())
}

// unwrapBlocks removes each <p> that directly precedes a block-level tag,
// together with the next </p> when that one directly follows the block's
// closing tag. It makes a single pass over html.
func unwrapBlocks(html string) string {
	opens := pBeforeBlock.FindAllStringIndex(html, -1)
	if len(opens) == 0 {
		return html
	}
	closes := indexAll(html, "</p>")
	removed := make([]bool, len(closes))
	tails := make([]int, len(closes)) // 0 unknown, -1 no block before it, else end of the block
	var cuts [][2]int
	c := 0
	for _, loc := range opens {
		body := loc[0] + len("<p>")
		for body < len(html) && strings.IndexByte(" \t\n", html[body]) >= 0 {
			body++
		}
		cuts = append(cuts, [2]int{loc[0], body})

		for c < len(closes) && (closes[c] < body || removed[c]) {
			c++
		}
		if c == len(closes) {
			continue
		}
		if tails[c] == 0 {
			tails[c] = blockEnd(html[:closes[c]])
		}
		if tails[c] > 0 {
			removed[c] = true
			cuts = append(cuts, [2]int{tails[c], closes[c] + len("</p>")})
		}
	}

	// Cuts are disjoint; a </p> cut may lie past later <p> cuts.
	sort.Slice(cuts, func(i, j int) bool { return cuts[i][0] < cuts[j][0] })
	var sb strings.Builder
	sb.Grow(len(html))
	last := 0
	for _, cut := range cuts {
		sb.WriteString(html[last:cut[0]])
		last = cut[1]
	}
	sb.WriteString(html[last:])
	return sb.String()
}

// blockEnd reports where a block-level closing tag (or a void hr/img tag)
// ends when s ends with one, ignoring trailing whitespace, and -1 otherwise.
func blockEnd(s string) int {
	s = strings.TrimRight(s, " \t\n")
	lt := strings.LastIndexByte(s, '<')
	if lt < 0 || !blockTail.MatchString(s[lt:]) {
		return -1
	}
	return len(s)
}

func indexAll(s, sub string) []int {
	var at []int
	for i := 0; ; {
		k := strings.Index(s[i:], sub)
		if k < 0 {
			return at
		}
		at = append(at, i+k)
		i += k + len(sub)
	}
}
