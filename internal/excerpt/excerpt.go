// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package excerpt derives plain-text summaries and lead images from rendered
// HTML fragments.
package excerpt

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultLimit is the excerpt length, in runes, used when none is configured.
const DefaultLimit = 200

const ellipsis = "…"

// skipped elements contribute no text.
var skipped = map[atom.Atom]bool{
	atom.Pre:    true,
	atom.Script: true,
	atom.Style:  true,
}

// FromHTML returns the visible text of fragment with whitespace collapsed,
// truncated to at most limit runes on a word boundary. Code blocks are left
// out. A limit of zero or less disables truncation.
func FromHTML(fragment string, limit int) (string, error) {
	nodes, err := parse(fragment)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
			return
		case html.ElementNode:
			if skipped[n.DataAtom] {
				return
			}
			if n.DataAtom == atom.Br {
				sb.WriteByte(' ')
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && isBlock(n.DataAtom) {
			sb.WriteByte(' ')
		}
	}
	for _, n := range nodes {
		walk(n)
	}

	return Truncate(strings.Join(strings.Fields(sb.String()), " "), limit), nil
}

// FirstImage returns the src of the first <img> in fragment, or "".
func FirstImage(fragment string) (string, error) {
	nodes, err := parse(fragment)
	if err != nil {
		return "", err
	}

	var find func(*html.Node) string
	find = func(n *html.Node) string {
		if n.Type == html.ElementNode && n.DataAtom == atom.Img {
			for _, a := range n.Attr {
				if a.Key == "src" && a.Val != "" {
					return a.Val
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if src := find(c); src != "" {
				return src
			}
		}
		return ""
	}
	for _, n := range nodes {
		if src := find(n); src != "" {
			return src, nil
		}
	}
	return "", nil
}

// Truncate cuts s to at most limit runes, backing up to the last space when
// the cut lands inside a word, and appends an ellipsis. Strings that already
// fit are returned unchanged.
func Truncate(s string, limit int) string {
	r := []rune(s)
	if limit <= 0 || len(r) <= limit {
		return s
	}

	cut := r[:limit]
	if !unicode.IsSpace(r[limit]) {
		for i := len(cut) - 1; i > 0; i-- {
			if unicode.IsSpace(cut[i]) {
				cut = cut[:i]
				break
			}
		}
	}
	out := strings.TrimRightFunc(string(cut), func(c rune) bool {
		return unicode.IsSpace(c) || unicode.IsPunct(c)
	})
	return out + ellipsis
}

func parse(fragment string) ([]*html.Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), ctx)
	if err != nil {
		return nil, fmt.Errorf("parse html fragment: %w", err)
	}
	return nodes, nil
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Ul, atom.Ol, atom.Li, atom.Blockquote, atom.Hr, atom.Table, atom.Tr, atom.Td, atom.Th:
		return true
	}
	return false
}
