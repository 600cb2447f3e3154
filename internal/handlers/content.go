// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"inkwell/internal/frontmatter"
	"inkwell/internal/markdown"
	"inkwell/internal/models"
	"inkwell/internal/slug"
	"inkwell/internal/store"
)

// Content groups the JSON content API used by the editor.
type Content struct {
	store   ContentStore
	pages   PageCache // nil when page caching is off
	maxBody int64
}

// NewContent creates the content API handlers. pages may be nil.
func NewContent(contentStore ContentStore, pages PageCache, maxBody int64) *Content {
	return &Content{store: contentStore, pages: pages, maxBody: maxBody}
}

// contentRequest is the body of create and update calls. Empty fields are
// filled from the body's front matter.
type contentRequest struct {
	Title   string               `json:"title"`
	Slug    string               `json:"slug"`
	Body    string               `json:"body"`
	Format  string               `json:"format"`
	Excerpt *string              `json:"excerpt"`
	Status  models.ContentStatus `json:"status"`
}

// List handles GET /api/content. The optional "status" query parameter
// filters by draft or published.
func (h *Content) List(w http.ResponseWriter, r *http.Request) {
	status := models.ContentStatus(r.URL.Query().Get("status"))
	if status != "" && !models.ValidStatus(status) {
		writeError(w, http.StatusBadRequest, "Unknown status.")
		return
	}
	items, err := h.store.List(r.Context(), status)
	if err != nil {
		slog.Error("list content failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list content.")
		return
	}
	if items == nil {
		items = []models.Content{}
	}
	writeJSON(w, http.StatusOK, items)
}

// Create handles POST /api/content.
func (h *Content) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	c := &models.Content{}
	if msg := apply(c, req); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	created, err := h.store.Create(r.Context(), c)
	if errors.Is(err, store.ErrSlugTaken) {
		writeError(w, http.StatusConflict, "Slug is already in use.")
		return
	}
	if err != nil {
		slog.Error("create content failed", "error", err, "slug", c.Slug)
		writeError(w, http.StatusInternalServerError, "Failed to create content.")
		return
	}

	if created.IsPublished() {
		h.invalidate(r.Context(), created.Slug)
	}
	writeJSON(w, http.StatusCreated, created)
}

// Get handles GET /api/content/{id}.
func (h *Content) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := h.find(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Update handles PUT /api/content/{id}. The request replaces the stored
// fields; an empty status keeps the current one.
func (h *Content) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.find(w, r)
	if !ok {
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	oldSlug := existing.Slug
	wasPublished := existing.IsPublished()
	if req.Status == "" {
		req.Status = existing.Status
	}

	c := *existing
	if msg := apply(&c, req); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	updated, err := h.store.Update(r.Context(), &c)
	if errors.Is(err, store.ErrSlugTaken) {
		writeError(w, http.StatusConflict, "Slug is already in use.")
		return
	}
	if err != nil {
		slog.Error("update content failed", "error", err, "id", existing.ID)
		writeError(w, http.StatusInternalServerError, "Failed to update content.")
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "Content not found.")
		return
	}

	if wasPublished {
		h.invalidate(r.Context(), oldSlug)
	}
	if updated.IsPublished() {
		h.invalidate(r.Context(), updated.Slug)
	}
	writeJSON(w, http.StatusOK, updated)
}

// Publish handles POST /api/content/{id}/publish.
func (h *Content) Publish(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	c, err := h.store.Publish(r.Context(), id)
	if err != nil {
		slog.Error("publish content failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "Failed to publish content.")
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "Content not found.")
		return
	}
	h.invalidate(r.Context(), c.Slug)
	writeJSON(w, http.StatusOK, c)
}

// Delete handles DELETE /api/content/{id}.
func (h *Content) Delete(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.find(w, r)
	if !ok {
		return
	}
	deleted, err := h.store.Delete(r.Context(), existing.ID)
	if err != nil {
		slog.Error("delete content failed", "error", err, "id", existing.ID)
		writeError(w, http.StatusInternalServerError, "Failed to delete content.")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Content not found.")
		return
	}
	if existing.IsPublished() {
		h.invalidate(r.Context(), existing.Slug)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Content) decode(w http.ResponseWriter, r *http.Request) (contentRequest, bool) {
	var req contentRequest
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large.")
		} else {
			writeError(w, http.StatusBadRequest, "Invalid JSON body.")
		}
		return req, false
	}
	return req, true
}

// find loads the item named by the {id} URL parameter, writing the error
// response itself when that fails.
func (h *Content) find(w http.ResponseWriter, r *http.Request) (*models.Content, bool) {
	id, ok := parseID(w, r)
	if !ok {
		return nil, false
	}
	c, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("find content failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "Failed to load content.")
		return nil, false
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "Content not found.")
		return nil, false
	}
	return c, true
}

func (h *Content) invalidate(ctx context.Context, contentSlug string) {
	if h.pages != nil {
		h.pages.InvalidatePage(ctx, contentSlug)
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ID.")
		return uuid.Nil, false
	}
	return id, true
}

// apply copies req onto c, filling empty fields from the body's front matter
// and deriving a missing slug from the title. It returns a validation
// message, or "" when c is ready to be stored.
func apply(c *models.Content, req contentRequest) string {
	meta, _, err := frontmatter.Parse(req.Body)
	if err != nil && !errors.Is(err, frontmatter.ErrMissingClosingDelimiter) {
		return "Front matter is not valid YAML."
	}

	c.Title = strings.TrimSpace(firstNonEmpty(req.Title, meta.Title))
	c.Slug = firstNonEmpty(req.Slug, meta.Slug)
	if c.Slug == "" {
		c.Slug = slug.Generate(c.Title)
	}
	c.Body = req.Body

	format, err := markdown.ParseFormat(firstNonEmpty(req.Format, meta.Format))
	if err != nil {
		return "Unknown format."
	}
	c.Format = string(format)

	c.Excerpt = req.Excerpt
	if c.Excerpt == nil && meta.Excerpt != "" {
		ex := meta.Excerpt
		c.Excerpt = &ex
	}

	c.Status = req.Status
	if c.Status == "" {
		c.Status = models.ContentStatusDraft
	}
	if !models.ValidStatus(c.Status) {
		return "Unknown status."
	}

	if msg := validateContent(c.Title, c.Slug, c.Body); msg != "" {
		return msg
	}
	return validateExcerpt(c.ExcerptText())
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
