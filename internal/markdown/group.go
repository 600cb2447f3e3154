// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package markdown

// pass is one named structural stage over the scanned blocks.
type pass struct {
	name string
	run  func([]Block) []Block
}

// groupingPasses run in this order after scanning.
var groupingPasses = []pass{
	{name: "blockquote-merge", run: mergeBlockquotes},
	{name: "list-wrap", run: wrapListItems},
	{name: "list-merge", run: mergeLists},
	{name: "image-row", run: groupImages},
}

// coalesce folds each block into the closest preceding non-blank block when
// join accepts it. Blank lines between two joined blocks are dropped, so runs
// separated only by whitespace become one.
func coalesce(blocks []Block, join func(dst *Block, b Block) bool) []Block {
	out := make([]Block, 0, len(blocks))
	last := -1 // closest non-blank block in out
	for _, b := range blocks {
		if b.Kind == KindBlank {
			out = append(out, b)
			continue
		}
		if last >= 0 && join(&out[last], b) {
			out = out[:last+1]
			continue
		}
		out = append(out, b)
		last = len(out) - 1
	}
	return out
}

// mergeBlockquotes turns consecutive quote lines into one multi-line quote.
func mergeBlockquotes(blocks []Block) []Block {
	return coalesce(blocks, func(dst *Block, b Block) bool {
		if dst.Kind != KindBlockquote || b.Kind != KindBlockquote {
			return false
		}
		dst.Lines = append(dst.Lines[:len(dst.Lines):len(dst.Lines)], b.Lines...)
		return true
	})
}

// wrapListItems gives every list item its own single-item list, keeping the
// ordered discriminant the line rule recorded.
func wrapListItems(blocks []Block) []Block {
	out := make([]Block, len(blocks))
	for i, b := range blocks {
		if b.Kind == KindListItem {
			b = Block{Kind: KindList, Ordered: b.Ordered, Items: []Block{b}}
		}
		out[i] = b
	}
	return out
}

// mergeLists joins adjacent lists of the same type.
func mergeLists(blocks []Block) []Block {
	return coalesce(blocks, func(dst *Block, b Block) bool {
		if dst.Kind != KindList || b.Kind != KindList || dst.Ordered != b.Ordered {
			return false
		}
		dst.Items = append(dst.Items[:len(dst.Items):len(dst.Items)], b.Items...)
		return true
	})
}

// groupImages joins adjacent image lines into one run; emit turns a run of
// two or more images into a single image row.
func groupImages(blocks []Block) []Block {
	return coalesce(blocks, func(dst *Block, b Block) bool {
		if dst.Kind != KindImages || b.Kind != KindImages {
			return false
		}
		dst.Images = append(dst.Images[:len(dst.Images):len(dst.Images)], b.Images...)
		return true
	})
}
