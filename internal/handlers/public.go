// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/cache"
	"inkwell/internal/engine"
	"inkwell/internal/metrics"
	"inkwell/internal/slug"
)

// Public groups handlers for the published site. It checks the Valkey page
// cache before invoking the engine, and stores rendered results on miss.
type Public struct {
	engine   *engine.Engine
	store    ContentStore
	pages    PageCache // nil when page caching is off
	recorder metrics.Recorder
}

// NewPublic creates a new Public handler group. pages and recorder may be nil.
func NewPublic(eng *engine.Engine, contentStore ContentStore, pages PageCache, recorder metrics.Recorder) *Public {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Public{engine: eng, store: contentStore, pages: pages, recorder: recorder}
}

// Index renders the listing of published posts.
func (p *Public) Index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if cached, ok := p.cached(r, cache.IndexKey()); ok {
		writeHTML(w, cached)
		return
	}

	posts, err := p.store.ListPublished(ctx)
	if err != nil {
		slog.Error("list published content failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	rendered, err := p.engine.RenderIndex(ctx, posts)
	if err != nil {
		slog.Error("render index failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if p.pages != nil {
		p.pages.Set(ctx, cache.IndexKey(), rendered)
	}
	writeHTML(w, rendered)
}

// Page renders a published item by its slug.
func (p *Public) Page(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slugParam := chi.URLParam(r, "slug")

	// Page cache keys share a namespace with the index; only well-formed
	// slugs may reach it.
	if !slug.Valid(slugParam) {
		http.NotFound(w, r)
		return
	}

	if cached, ok := p.cached(r, slugParam); ok {
		writeHTML(w, cached)
		return
	}

	content, err := p.store.FindBySlug(ctx, slugParam)
	if err != nil {
		slog.Error("find content by slug failed", "error", err, "slug", slugParam)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if content == nil {
		http.NotFound(w, r)
		return
	}

	rendered, err := p.engine.RenderPage(ctx, content)
	if err != nil {
		slog.Error("render page failed", "error", err, "slug", slugParam)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if p.pages != nil {
		p.pages.Set(ctx, slugParam, rendered)
	}
	writeHTML(w, rendered)
}

func (p *Public) cached(r *http.Request, key string) ([]byte, bool) {
	if p.pages == nil {
		return nil, false
	}
	html, ok := p.pages.Get(r.Context(), key)
	p.recorder.IncCacheLookup(metrics.LayerPage, ok)
	return html, ok
}

func writeHTML(w http.ResponseWriter, html []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}
