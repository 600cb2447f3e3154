// Package cache provides the Valkey (Redis-compatible) client and the two
// Valkey-backed caches of the renderer: preview fragments keyed by source
// hash, and full public pages keyed by slug.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectValkey creates a Valkey client and verifies the connection with a ping.
func ConnectValkey(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("valkey ping: %w", err)
	}

	slog.Info("valkey connected", "addr", addr)
	return client, nil
}

// bucket is a TTL-bound key space under one prefix.
type bucket struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func (b bucket) get(ctx context.Context, key string) ([]byte, bool) {
	val, err := b.client.Get(ctx, b.prefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("cache get error", "key", b.prefix+key, "error", err)
		return nil, false
	}
	return val, true
}

func (b bucket) set(ctx context.Context, key string, val []byte) {
	if err := b.client.Set(ctx, b.prefix+key, val, b.ttl).Err(); err != nil {
		slog.Warn("cache set error", "key", b.prefix+key, "error", err)
	}
}

func (b bucket) del(ctx context.Context, key string) {
	if err := b.client.Del(ctx, b.prefix+key).Err(); err != nil {
		slog.Warn("cache delete error", "key", b.prefix+key, "error", err)
	}
}

// clear removes every key under the prefix and returns how many were deleted.
func (b bucket) clear(ctx context.Context) int {
	var cursor uint64
	var deleted int
	for {
		keys, next, err := b.client.Scan(ctx, cursor, b.prefix+"*", 100).Result()
		if err != nil {
			slog.Warn("cache scan error", "prefix", b.prefix, "error", err)
			return deleted
		}
		if len(keys) > 0 {
			if err := b.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("cache bulk delete error", "prefix", b.prefix, "error", err)
			} else {
				deleted += len(keys)
			}
		}
		cursor = next
		if cursor == 0 {
			return deleted
		}
	}
}
