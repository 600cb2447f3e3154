// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package markdown

import (
	"regexp"
	"strings"
)

// BlockKind tags what a source line (or a grouped run of lines) is.
type BlockKind int

const (
	KindParagraph BlockKind = iota
	KindBlank
	KindHeading
	KindBlockquote
	KindImages
	KindRule
	KindListItem
	KindCode
	// KindList is only produced by the grouping passes.
	KindList
)

// Block is one classified unit of the document. Which fields are meaningful
// depends on Kind.
type Block struct {
	Kind    BlockKind
	Level   int      // heading level
	Ordered bool     // list items and lists
	Lang    string   // fenced code language tag
	Text    string   // heading, list item or escaped code body
	Lines   []string // paragraph and blockquote lines, inline source
	Images  []Image  // image lines
	Items   []Block  // list members
}

// Image is a parsed image reference.
type Image struct {
	Src   string
	Alt   string
	Title string
	Width string
}

// LineRule classifies a single source line. Pattern is matched against the
// whole line; Produce receives the submatches and returns the block. A rule
// that returns KindImages without Images leaves the line to the renderer's
// image rules.
type LineRule struct {
	Name    string
	Pattern *regexp.Regexp
	Produce func(groups []string) Block
}

// ImageRule recognizes one image syntax. Pattern must be anchored at the
// start of the input it is given. Inside running text it only sees the
// reference up to the first ')' after the alt text, plus a "{...}" block
// directly following it.
type ImageRule struct {
	Name    string
	Pattern *regexp.Regexp
	Produce func(groups []string) Image
}

// Delimiter is an inline span marker. At any position the first delimiter in
// table order whose marker matches wins, so doubled markers must precede the
// single marker of the same character. Verbatim spans close on a run of the
// same length and their content is not scanned. Delimiters that are not
// Intraword cannot open or close inside a word.
type Delimiter struct {
	Marker    string
	Tag       string
	Verbatim  bool
	Intraword bool
}

// Rules is the ordered rule table of a Renderer. Order is significant in
// every slice.
type Rules struct {
	Lines      []LineRule
	Images     []ImageRule
	Delimiters []Delimiter
}

var (
	// titleWidth finds a width clause inside an image title ("width:300px", "w:50%").
	titleWidth       = regexp.MustCompile(`(?i)\b(?:width|w):([^;]+)`)
	titleWidthClause = regexp.MustCompile(`(?i)\b(?:width|w):[^;]+;?`)
	attrWidth        = regexp.MustCompile(`(?i)\b(?:width|w):([^;,]+)`)
)

// DefaultRules returns a fresh copy of the blog dialect's rule table.
func DefaultRules() *Rules {
	return &Rules{
		Lines: []LineRule{
			// h3 before h2 before h1.
			{Name: "h3", Pattern: regexp.MustCompile(`^### (.*)$`), Produce: heading(3)},
			{Name: "h2", Pattern: regexp.MustCompile(`^## (.*)$`), Produce: heading(2)},
			{Name: "h1", Pattern: regexp.MustCompile(`^# (.*)$`), Produce: heading(1)},
			{Name: "blockquote", Pattern: regexp.MustCompile(`^> (.*)$`), Produce: func(g []string) Block {
				return Block{Kind: KindBlockquote, Lines: []string{g[1]}}
			}},
			{Name: "hr-dash", Pattern: regexp.MustCompile(`^---$`), Produce: rule},
			{Name: "hr-star", Pattern: regexp.MustCompile(`^\*\*\*$`), Produce: rule},
			{Name: "ul-item", Pattern: regexp.MustCompile(`^[•*-] (.*)$`), Produce: func(g []string) Block {
				return Block{Kind: KindListItem, Text: g[1]}
			}},
			{Name: "ol-item", Pattern: regexp.MustCompile(`^\d+\. (.*)$`), Produce: func(g []string) Block {
				return Block{Kind: KindListItem, Ordered: true, Text: g[1]}
			}},
			{
				Name:    "image-line",
				Pattern: regexp.MustCompile(`^(?:\s*!\[[^\]]*\]\([^)]+\)(?:\{[^}]+\})?)+\s*$`),
				Produce: func([]string) Block { return Block{Kind: KindImages} },
			},
		},
		Images: []ImageRule{
			// ![alt](src){width:300px} is tried first, otherwise the title
			// syntax below would claim the link part and leave "{...}" behind.
			{
				Name:    "image-attrs",
				Pattern: regexp.MustCompile(`^!\[([^\]]*)\]\(([^)]+)\)\{([^}]+)\}`),
				Produce: imageWithAttrs,
			},
			{
				Name:    "image",
				Pattern: regexp.MustCompile(`^!\[([^\]]*)\]\(([^)]+?)(?:\s+"([^"]*)")?\)`),
				Produce: imageWithTitle,
			},
		},
		Delimiters: []Delimiter{
			{Marker: "`", Tag: "code", Verbatim: true},
			{Marker: "**", Tag: "strong", Intraword: true},
			{Marker: "__", Tag: "strong"},
			{Marker: "*", Tag: "em", Intraword: true},
			{Marker: "_", Tag: "em"},
			{Marker: "~~", Tag: "del", Intraword: true},
			{Marker: "==", Tag: "mark", Intraword: true},
		},
	}
}

func heading(level int) func([]string) Block {
	return func(g []string) Block {
		return Block{Kind: KindHeading, Level: level, Text: g[1]}
	}
}

func rule([]string) Block {
	return Block{Kind: KindRule}
}

// parseImages splits a line made only of images and whitespace. ok is false
// when some part of the line is not claimed by any image rule.
func parseImages(rules []ImageRule, line string) ([]Image, bool) {
	var imgs []Image
	rest := strings.TrimSpace(line)
	for rest != "" {
		img, n, ok := matchImage(rules, rest)
		if !ok {
			return nil, false
		}
		imgs = append(imgs, img)
		rest = strings.TrimLeft(rest[n:], " \t")
	}
	return imgs, len(imgs) > 0
}

func matchImage(rules []ImageRule, s string) (Image, int, bool) {
	for _, ir := range rules {
		if m := ir.Pattern.FindStringSubmatch(s); m != nil {
			return ir.Produce(m), len(m[0]), true
		}
	}
	return Image{}, 0, false
}

// imageWithTitle handles ![alt](src "title"). A width clause in the title
// becomes the image width and is removed from the title text.
func imageWithTitle(g []string) Image {
	img := Image{Alt: g[1], Src: imageSrc(g[2])}
	title := g[3]
	if m := titleWidth.FindStringSubmatch(title); m != nil {
		img.Width = strings.TrimSpace(m[1])
		title = titleWidthClause.ReplaceAllString(title, "")
	}
	img.Title = strings.TrimSpace(title)
	return img
}

// imageWithAttrs handles ![alt](src){width:300px}.
func imageWithAttrs(g []string) Image {
	img := Image{Alt: g[1], Src: imageSrc(g[2])}
	if m := attrWidth.FindStringSubmatch(g[3]); m != nil {
		img.Width = strings.TrimSpace(m[1])
	}
	return img
}

// imageSrc strips exactly one leading "../"; "../../a.png" becomes "../a.png".
func imageSrc(src string) string {
	return strings.TrimPrefix(strings.TrimSpace(src), "../")
}
