// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package engine turns stored Markdown into HTML for the preview API and for
// public pages. Rendered fragments pass through two cache tiers: an
// in-process L1 map and an optional Valkey-backed L2 shared across
// instances. Public pages wrap the fragment in the embedded site layout.
package engine

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/excerpt"
	"inkwell/internal/markdown"
	"inkwell/internal/metrics"
	"inkwell/internal/models"
	"inkwell/web"
)

// Cache layers reported in Result.Layer.
const (
	LayerNone   = ""
	LayerMemory = "memory"
	LayerValkey = "valkey"
)

// Result is one rendered Markdown fragment.
type Result struct {
	HTML    string
	Excerpt string
	Layer   string // cache tier that served the result, LayerNone when freshly rendered
}

// Cached reports whether the result came from a cache tier.
func (r Result) Cached() bool {
	return r.Layer != LayerNone
}

// Options configures an Engine. Zero values select defaults.
type Options struct {
	Previews      *cache.PreviewCache // L2, nil disables it
	Recorder      metrics.Recorder
	L1Size        int
	ExcerptLength int
	SiteName      string
}

// viewData holds all variables available to the site layout.
type viewData struct {
	SiteName    string
	Title       string
	Description string
	Image       string
	Body        template.HTML // rendered fragment, trusted as-is
	PublishedAt string
	Posts       []postItem
	Year        int
}

// postItem is one entry of the published index.
type postItem struct {
	Title       string
	Slug        string
	Excerpt     string
	PublishedAt string
}

// Engine renders Markdown with caching and metrics. It is safe for
// concurrent use.
type Engine struct {
	renderer   *markdown.Renderer
	l1         *fragmentCache
	previews   *cache.PreviewCache
	recorder   metrics.Recorder
	excerptLen int
	siteName   string

	page  *template.Template
	index *template.Template
}

// New creates an engine around renderer, which serves the blog format. The
// embedded layout templates are parsed once here.
func New(renderer *markdown.Renderer, opts Options) (*Engine, error) {
	if renderer == nil {
		renderer = markdown.Default()
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	if opts.ExcerptLength == 0 {
		opts.ExcerptLength = excerpt.DefaultLimit
	}
	if opts.SiteName == "" {
		opts.SiteName = "Inkwell"
	}

	page, err := template.ParseFS(web.TemplatesFS, "templates/base.html", "templates/page.html")
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}
	index, err := template.ParseFS(web.TemplatesFS, "templates/base.html", "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("parse index template: %w", err)
	}

	return &Engine{
		renderer:   renderer,
		l1:         newFragmentCache(opts.L1Size),
		previews:   opts.Previews,
		recorder:   opts.Recorder,
		excerptLen: opts.ExcerptLength,
		siteName:   opts.SiteName,
		page:       page,
		index:      index,
	}, nil
}

// Preview renders src in the given format, consulting L1 then L2 before
// rendering. An empty format selects the blog dialect.
func (e *Engine) Preview(ctx context.Context, format markdown.Format, src string) (Result, error) {
	if format == "" {
		format = markdown.FormatBlog
	}
	key := cache.PreviewKey(string(format), src)

	if r, ok := e.l1.get(key); ok {
		e.recorder.IncCacheLookup(metrics.LayerMemory, true)
		r.Layer = LayerMemory
		return r, nil
	}
	e.recorder.IncCacheLookup(metrics.LayerMemory, false)

	if e.previews != nil {
		if html, ok := e.previews.Get(ctx, key); ok {
			e.recorder.IncCacheLookup(metrics.LayerValkey, true)
			r := e.result(html)
			e.l1.put(key, r)
			r.Layer = LayerValkey
			return r, nil
		}
		e.recorder.IncCacheLookup(metrics.LayerValkey, false)
	}

	html, err := e.convert(format, src)
	if err != nil {
		return Result{}, err
	}
	r := e.result(html)
	e.l1.put(key, r)
	if e.previews != nil {
		e.previews.Set(ctx, key, html)
	}
	return r, nil
}

// Flush drops every cached fragment from both tiers.
func (e *Engine) Flush(ctx context.Context) {
	e.l1.invalidateAll()
	if e.previews != nil {
		n := e.previews.Clear(ctx)
		slog.Info("preview cache flushed", "deleted", n)
	}
}

// RenderPage renders a content item inside the site layout. The stored
// excerpt, when present, becomes the page description; otherwise the
// generated one is used.
func (e *Engine) RenderPage(ctx context.Context, c *models.Content) ([]byte, error) {
	format, err := markdown.ParseFormat(c.Format)
	if err != nil {
		return nil, err
	}
	r, err := e.Preview(ctx, format, c.Body)
	if err != nil {
		return nil, err
	}

	desc := c.ExcerptText()
	if desc == "" {
		desc = r.Excerpt
	}
	img, err := excerpt.FirstImage(r.HTML)
	if err != nil {
		slog.Warn("lead image lookup failed", "slug", c.Slug, "error", err)
	}

	data := viewData{
		SiteName:    e.siteName,
		Title:       c.Title,
		Description: desc,
		Image:       img,
		Body:        template.HTML(r.HTML),
		PublishedAt: formatDate(c.PublishedAt),
		Year:        time.Now().Year(),
	}
	return execute(e.page, data)
}

// RenderIndex renders the listing of published posts, newest first as given.
func (e *Engine) RenderIndex(ctx context.Context, posts []models.Content) ([]byte, error) {
	items := make([]postItem, 0, len(posts))
	for i := range posts {
		p := &posts[i]
		item := postItem{
			Title:       p.Title,
			Slug:        p.Slug,
			Excerpt:     p.ExcerptText(),
			PublishedAt: formatDate(p.PublishedAt),
		}
		if item.Excerpt == "" {
			if format, err := markdown.ParseFormat(p.Format); err == nil {
				if r, err := e.Preview(ctx, format, p.Body); err == nil {
					item.Excerpt = r.Excerpt
				}
			}
		}
		items = append(items, item)
	}

	data := viewData{
		SiteName: e.siteName,
		Posts:    items,
		Year:     time.Now().Year(),
	}
	return execute(e.index, data)
}

// convert renders src and records how long it took.
func (e *Engine) convert(format markdown.Format, src string) (string, error) {
	start := time.Now()
	var html string
	var err error
	if format == markdown.FormatBlog {
		html = e.renderer.Render(src)
	} else {
		html, err = markdown.Convert(format, src)
	}
	if err != nil {
		return "", fmt.Errorf("render %s: %w", format, err)
	}
	e.recorder.ObserveRender(string(format), time.Since(start))
	return html, nil
}

// result derives the excerpt for a rendered fragment.
func (e *Engine) result(html string) Result {
	ex, err := excerpt.FromHTML(html, e.excerptLen)
	if err != nil {
		slog.Warn("excerpt extraction failed", "error", err)
	}
	return Result{HTML: html, Excerpt: ex}
}

func execute(t *template.Template, data viewData) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}
	return buf.Bytes(), nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("January 2, 2006")
}
