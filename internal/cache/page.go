// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// page.go caches fully rendered public pages. A published page is served from
// here until its content is updated, unpublished or deleted.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// pageKeyPrefix is the Valkey key prefix for cached pages.
	pageKeyPrefix = "inkwell:page:"

	// indexKey is the cache key of the published index.
	indexKey = "_index"

	// DefaultPageTTL is how long a rendered page stays cached.
	DefaultPageTTL = 5 * time.Minute
)

// PageCache manages full-page HTML caching in Valkey.
type PageCache struct {
	b bucket
}

// NewPageCache creates a new page cache backed by the given Valkey client.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	if ttl == 0 {
		ttl = DefaultPageTTL
	}
	return &PageCache{b: bucket{client: client, prefix: pageKeyPrefix, ttl: ttl}}
}

// Get retrieves the cached page for key.
func (pc *PageCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, ok := pc.b.get(ctx, key)
	if ok {
		slog.Debug("page cache hit", "key", key)
	}
	return val, ok
}

// Set stores a rendered page under key with the configured TTL.
func (pc *PageCache) Set(ctx context.Context, key string, html []byte) {
	pc.b.set(ctx, key, html)
}

// InvalidatePage drops the cached page of slug together with the index,
// which lists it.
func (pc *PageCache) InvalidatePage(ctx context.Context, slug string) {
	pc.b.del(ctx, slug)
	pc.b.del(ctx, indexKey)
	slog.Debug("page cache invalidated", "slug", slug)
}

// InvalidateAll removes all cached pages.
func (pc *PageCache) InvalidateAll(ctx context.Context) {
	if n := pc.b.clear(ctx); n > 0 {
		slog.Info("page cache cleared", "deleted", n)
	}
}

// IndexKey returns the cache key for the published index.
func IndexKey() string {
	return indexKey
}
