// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package markdown

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type nodeKind int

const (
	nodeText nodeKind = iota
	nodeDelim
	nodeCode
	nodeImage
	nodeLink
	nodeElement
)

// node is one inline token. Unresolved delimiters render as their marker.
type node struct {
	kind     nodeKind
	text     string // literal text, delimiter marker, code body or link href
	tag      string
	canOpen  bool
	canClose bool
	img      Image
	children []node
}

// inline renders one run of inline source.
func (r *Renderer) inline(s string) string {
	var b strings.Builder
	renderNodes(&b, resolve(r.tokenize(s, true)))
	return b.String()
}

// tokenize splits s into text, code spans, images, links and delimiter runs.
// Link text is tokenized once more without links, since anchors do not nest.
func (r *Renderer) tokenize(s string, links bool) []node {
	var nodes []node
	var lit strings.Builder
	var idx *index
	var unclosed map[string]bool

	flush := func() {
		if lit.Len() > 0 {
			nodes = append(nodes, node{kind: nodeText, text: lit.String()})
			lit.Reset()
		}
	}
	push := func(n node) {
		flush()
		nodes = append(nodes, n)
	}
	lookup := func() *index {
		if idx == nil {
			idx = newIndex(s)
		}
		return idx
	}

	for i := 0; i < len(s); {
		rest := s[i:]

		if strings.HasPrefix(rest, "![") {
			if ref, ok := lookup().imageRef(s, i); ok {
				if img, n, ok := matchImage(r.images, ref); ok {
					push(node{kind: nodeImage, img: img})
					i += n
					continue
				}
			}
		}

		if links && rest[0] == '[' {
			if text, href, n, ok := lookup().link(s, i); ok {
				push(node{kind: nodeLink, text: href, children: resolve(r.tokenize(text, false))})
				i += n
				continue
			}
		}

		if d, ok := r.delimiterAt(rest); ok {
			if d.Verbatim {
				open := markerRun(rest, d.Marker)
				if unclosed[open] {
					lit.WriteString(open)
					i += len(open)
					continue
				}
				body, n := matchVerbatim(rest, d.Marker)
				if body != "" {
					push(node{kind: nodeCode, tag: d.Tag, text: body})
				} else {
					// No later run of this length can close either.
					if unclosed == nil {
						unclosed = make(map[string]bool)
					}
					unclosed[open] = true
					lit.WriteString(rest[:n])
				}
				i += n
				continue
			}

			opens, closes := flanking(s, i, len(d.Marker), d.Intraword)
			if opens || closes {
				push(node{kind: nodeDelim, text: d.Marker, tag: d.Tag, canOpen: opens, canClose: closes})
			} else {
				lit.WriteString(d.Marker)
			}
			i += len(d.Marker)
			continue
		}

		_, size := utf8.DecodeRuneInString(rest)
		lit.WriteString(rest[:size])
		i += size
	}
	flush()
	return nodes
}

func (r *Renderer) delimiterAt(s string) (Delimiter, bool) {
	for _, d := range r.delims {
		if strings.HasPrefix(s, d.Marker) {
			return d, true
		}
	}
	return Delimiter{}, false
}

// flanking reports whether the delimiter at s[i:i+n] may open and/or close
// a span. An opener must be followed by non-space, a closer preceded by
// non-space. Non-intraword delimiters additionally refuse letters or digits on
// the outside.
func flanking(s string, i, n int, intraword bool) (opens, closes bool) {
	prev, _ := utf8.DecodeLastRuneInString(s[:i])
	next, _ := utf8.DecodeRuneInString(s[i+n:])
	hasPrev := i > 0
	hasNext := i+n < len(s)

	opens = hasNext && !unicode.IsSpace(next)
	closes = hasPrev && !unicode.IsSpace(prev)
	if !intraword {
		opens = opens && !(hasPrev && isWordRune(prev))
		closes = closes && !(hasNext && isWordRune(next))
	}
	return opens, closes
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// markerRun returns the run of marker at the start of s.
func markerRun(s, marker string) string {
	run := 0
	for strings.HasPrefix(s[run:], marker) {
		run += len(marker)
	}
	return s[:run]
}

// matchVerbatim reads a run of the marker at the start of s and looks for a
// closing run of exactly the same length. It returns the span body and the
// number of bytes consumed; on failure body is "" and only the opening run is
// consumed.
func matchVerbatim(s, marker string) (string, int) {
	open := markerRun(s, marker)
	run := len(open)

	for j := run; j < len(s); {
		idx := strings.Index(s[j:], open)
		if idx < 0 {
			break
		}
		start := j + idx
		end := start + run
		for strings.HasPrefix(s[end:], marker) {
			end += len(marker)
		}
		if end-start == run {
			return s[run:start], end
		}
		j = end
	}
	return "", run
}

// index answers bracket lookups over one inline run in constant time, so an
// unmatched '[' or '(' never sends the scanner to the end of the input again.
type index struct {
	match  []int // position of the ']' closing the '[' at i, or -1
	rbrack []int // next ']' at or after i, or -1
	rparen []int
	rbrace []int
}

func newIndex(s string) *index {
	x := &index{
		match:  make([]int, len(s)),
		rbrack: nextByte(s, ']'),
		rparen: nextByte(s, ')'),
		rbrace: nextByte(s, '}'),
	}
	var open []int
	for i := 0; i < len(s); i++ {
		x.match[i] = -1
		switch s[i] {
		case '[':
			open = append(open, i)
		case ']':
			if n := len(open); n > 0 {
				x.match[open[n-1]] = i
				open = open[:n-1]
			}
		}
	}
	return x
}

// nextByte maps every position of s, and len(s), to the next occurrence of
// c at or after it.
func nextByte(s string, c byte) []int {
	next := make([]int, len(s)+1)
	next[len(s)] = -1
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == c {
			next[i] = i
		} else {
			next[i] = next[i+1]
		}
	}
	return next
}

// link recognizes [text](href) at s[i:]. Brackets inside the text nest,
// which lets a link wrap an image.
func (x *index) link(s string, i int) (text, href string, n int, ok bool) {
	closeAt := x.match[i]
	if closeAt <= i+1 || closeAt+1 >= len(s) || s[closeAt+1] != '(' {
		return "", "", 0, false
	}
	end := x.rparen[closeAt+2]
	if end <= closeAt+2 {
		return "", "", 0, false
	}
	return s[i+1 : closeAt], s[closeAt+2 : end], end + 1 - i, true
}

// imageRef bounds the image reference starting at s[i:]: "![alt](src)" up to
// the first ')' after the alt text, with a directly following "{...}" block.
// ok is false when no such reference can start there.
func (x *index) imageRef(s string, i int) (string, bool) {
	alt := x.rbrack[i+2]
	if alt < 0 || alt+1 >= len(s) || s[alt+1] != '(' {
		return "", false
	}
	end := x.rparen[alt+2]
	if end <= alt+2 {
		return "", false
	}
	end++
	if end < len(s) && s[end] == '{' {
		if brace := x.rbrace[end]; brace >= 0 {
			end = brace + 1
		}
	}
	return s[i:end], true
}

// resolve pairs delimiter runs using a stack of potential openers per
// marker. A closer pairs with the nearest opener carrying the same marker;
// openers of any marker above it are left unmatched and render literally.
// Empty spans are never formed.
func resolve(nodes []node) []node {
	out := make([]node, 0, len(nodes))
	openers := make(map[string][]int)

	for _, n := range nodes {
		if n.kind != nodeDelim {
			out = append(out, n)
			continue
		}
		if n.canClose {
			if stack := openers[n.text]; len(stack) > 0 && len(out) > stack[len(stack)-1]+1 {
				pos := stack[len(stack)-1]
				children := append([]node(nil), out[pos+1:]...)
				out = append(out[:pos], node{kind: nodeElement, tag: n.tag, children: children})
				for marker, st := range openers {
					for len(st) > 0 && st[len(st)-1] >= pos {
						st = st[:len(st)-1]
					}
					openers[marker] = st
				}
				continue
			}
		}
		if n.canOpen {
			openers[n.text] = append(openers[n.text], len(out))
		}
		out = append(out, n)
	}
	return out
}

func renderNodes(b *strings.Builder, nodes []node) {
	for i := 0; i < len(nodes); i++ {
		n := nodes[i]
		switch n.kind {
		case nodeImage:
			imgs, last := imageRun(nodes, i)
			b.WriteString(imageRow(imgs))
			i = last
		case nodeCode:
			b.WriteString("<" + n.tag + ">" + n.text + "</" + n.tag + ">")
		case nodeLink:
			b.WriteString(`<a href="` + n.text + `" target="_blank" class="glass-button blog-link">`)
			renderNodes(b, n.children)
			b.WriteString("</a>")
		case nodeElement:
			b.WriteString("<" + n.tag + ">")
			renderNodes(b, n.children)
			b.WriteString("</" + n.tag + ">")
		default:
			b.WriteString(n.text)
		}
	}
}

// imageRun collects the images starting at nodes[i] that are separated only
// by whitespace. last is the index of the final image in the run.
func imageRun(nodes []node, i int) (imgs []Image, last int) {
	imgs = []Image{nodes[i].img}
	last = i
	for k := i + 1; k < len(nodes); k++ {
		switch {
		case nodes[k].kind == nodeImage:
			imgs = append(imgs, nodes[k].img)
			last = k
		case nodes[k].kind == nodeText && strings.TrimSpace(nodes[k].text) == "":
			continue
		default:
			return imgs, last
		}
	}
	return imgs, last
}
