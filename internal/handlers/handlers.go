// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the HTTP endpoints: the JSON preview and
// content APIs used by the editor, and the public pages.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// ContentStore is the persistence the handlers need. *store.ContentStore
// implements it.
type ContentStore interface {
	List(ctx context.Context, status models.ContentStatus) ([]models.Content, error)
	ListPublished(ctx context.Context) ([]models.Content, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Content, error)
	FindBySlug(ctx context.Context, slug string) (*models.Content, error)
	Create(ctx context.Context, c *models.Content) (*models.Content, error)
	Update(ctx context.Context, c *models.Content) (*models.Content, error)
	Publish(ctx context.Context, id uuid.UUID) (*models.Content, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// PageCache stores fully rendered public pages. *cache.PageCache
// implements it.
type PageCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, html []byte)
	InvalidatePage(ctx context.Context, slug string)
	InvalidateAll(ctx context.Context)
}

// errorResponse is the JSON body of every API error.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
