// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"inkwell/internal/engine"
)

// Cache exposes manual cache invalidation, used after changing the renderer
// or the site layout on a running deployment.
type Cache struct {
	engine *engine.Engine
	pages  PageCache
}

// NewCache creates the cache handler. pages may be nil.
func NewCache(eng *engine.Engine, pages PageCache) *Cache {
	return &Cache{engine: eng, pages: pages}
}

// Flush handles POST /api/cache/flush: it empties the fragment caches and
// every cached public page.
func (c *Cache) Flush(w http.ResponseWriter, r *http.Request) {
	c.engine.Flush(r.Context())
	if c.pages != nil {
		c.pages.InvalidateAll(r.Context())
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "flushed"})
}
