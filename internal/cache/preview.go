// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
)

const (
	previewKeyPrefix = "inkwell:preview:"

	// DefaultPreviewTTL is how long a rendered preview fragment stays cached.
	DefaultPreviewTTL = 10 * time.Minute
)

// PreviewKey identifies a rendered fragment by format and source content.
func PreviewKey(format, source string) string {
	return format + ":" + strconv.FormatUint(xxhash.Sum64String(source), 16)
}

// PreviewCache stores rendered preview fragments shared by every app
// instance. Entries never go stale since the key covers the whole input.
type PreviewCache struct {
	b bucket
}

// NewPreviewCache creates a preview cache backed by the given Valkey client.
func NewPreviewCache(client *redis.Client, ttl time.Duration) *PreviewCache {
	if ttl == 0 {
		ttl = DefaultPreviewTTL
	}
	return &PreviewCache{b: bucket{client: client, prefix: previewKeyPrefix, ttl: ttl}}
}

// Get returns the fragment stored under key.
func (c *PreviewCache) Get(ctx context.Context, key string) (string, bool) {
	val, ok := c.b.get(ctx, key)
	return string(val), ok
}

// Set stores a fragment under key.
func (c *PreviewCache) Set(ctx context.Context, key, html string) {
	c.b.set(ctx, key, []byte(html))
}

// Clear drops every cached fragment, e.g. after a renderer upgrade.
func (c *PreviewCache) Clear(ctx context.Context) int {
	return c.b.clear(ctx)
}
