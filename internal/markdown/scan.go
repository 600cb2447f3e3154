// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package markdown

import (
	"regexp"
	"strings"
)

const fence = "```"

var fenceLang = regexp.MustCompile(`^\w+`)

var codeEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;")

// scan classifies every line of text. Fenced code is claimed first so that
// nothing inside a fence is seen by the line rules; lines no rule claims
// accumulate into paragraphs, which blank lines terminate.
func (r *Renderer) scan(text string) []Block {
	lines := strings.Split(text, "\n")
	blocks := make([]Block, 0, len(lines))
	var para []string

	flush := func() {
		if len(para) > 0 {
			blocks = append(blocks, Block{Kind: KindParagraph, Lines: para})
			para = nil
		}
	}
	add := func(line string) {
		if strings.TrimSpace(line) == "" {
			flush()
			blocks = append(blocks, Block{Kind: KindBlank})
			return
		}
		if b, ok := r.classify(line); ok {
			flush()
			blocks = append(blocks, b)
			return
		}
		para = append(para, line)
	}

	for i := 0; i < len(lines); i++ {
		code, end, before, rest, ok := scanFence(lines, i)
		if !ok {
			add(lines[i])
			continue
		}
		if strings.TrimSpace(before) != "" {
			// Text before the opening fence is scanned as its own line.
			add(strings.TrimRight(before, " \t"))
		}
		flush()
		blocks = append(blocks, code)
		i = end
		if strings.TrimSpace(rest) != "" {
			// Text after the closing fence is scanned as its own line.
			lines[end] = rest
			i = end - 1
		}
	}
	flush()
	return blocks
}

// classify applies the line rules in table order; the first match wins. An
// image line comes back from its rule unparsed and is split here with the
// renderer's own image rules.
func (r *Renderer) classify(line string) (Block, bool) {
	for _, lr := range r.lines {
		if m := lr.Pattern.FindStringSubmatch(line); m != nil {
			b := lr.Produce(m)
			if b.Kind == KindImages && b.Images == nil {
				b = r.imageLine(line)
			}
			return b, true
		}
	}
	return Block{}, false
}

// imageLine turns a line made only of images into an image block. A line the
// image rules cannot fully claim is a paragraph.
func (r *Renderer) imageLine(line string) Block {
	imgs, ok := parseImages(r.images, line)
	if !ok {
		return Block{Kind: KindParagraph, Lines: []string{line}}
	}
	return Block{Kind: KindImages, Images: imgs}
}

// scanFence recognizes a fenced code block opening anywhere on lines[i].
// before is the text ahead of the opening fence, end the index of the line
// holding the closing fence and rest whatever follows that fence on the same
// line. An opener without a closing fence is not a code block and stays
// literal text.
func scanFence(lines []string, i int) (b Block, end int, before, rest string, ok bool) {
	open := lines[i]
	start := strings.Index(open, fence)
	if start < 0 {
		return Block{}, 0, "", "", false
	}
	before = open[:start]
	head := open[start+len(fence):]
	lang := fenceLang.FindString(head)
	head = head[len(lang):]

	if idx := strings.Index(head, fence); idx >= 0 {
		return codeBlock(lang, head[:idx]), i, before, head[idx+len(fence):], true
	}

	body := []string{head}
	for j := i + 1; j < len(lines); j++ {
		if idx := strings.Index(lines[j], fence); idx >= 0 {
			body = append(body, lines[j][:idx])
			return codeBlock(lang, strings.Join(body, "\n")), j, before, lines[j][idx+len(fence):], true
		}
		body = append(body, lines[j])
	}
	return Block{}, 0, "", "", false
}

// codeBlock drops blank lines around the body and escapes angle brackets.
// Indentation of the first code line is kept.
func codeBlock(lang, body string) Block {
	for {
		nl := strings.IndexByte(body, '\n')
		if nl < 0 || strings.TrimSpace(body[:nl]) != "" {
			break
		}
		body = body[nl+1:]
	}
	body = strings.TrimRight(body, " \t\n")
	if strings.TrimSpace(body) == "" {
		body = ""
	}
	return Block{Kind: KindCode, Lang: lang, Text: codeEscaper.Replace(body)}
}
