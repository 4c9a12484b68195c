// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// list.go provides a Valkey-backed cache for serialized asset lists.
// Keys are namespaced per asset kind so a mutation of one kind can drop
// every cached list of that kind without touching the others.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// listKeyPrefix is the Valkey key prefix for cached lists.
	listKeyPrefix = "list:"

	// DefaultListTTL is how long a cached list lives when no mutation
	// invalidates it first.
	DefaultListTTL = 5 * time.Minute
)

// ListCache stores serialized list results in Valkey.
type ListCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewListCache creates a new list cache backed by the given Valkey client.
func NewListCache(client *redis.Client, ttl time.Duration) *ListCache {
	if ttl == 0 {
		ttl = DefaultListTTL
	}
	return &ListCache{client: client, ttl: ttl}
}

// ListKey returns the cache key for a list of kind under filter.
func ListKey(kind, filter string) string {
	return listKeyPrefix + kind + ":" + filter
}

// Get retrieves a cached list. Errors are logged and reported as a miss.
func (lc *ListCache) Get(ctx context.Context, kind, filter string) ([]byte, bool) {
	key := ListKey(kind, filter)
	val, err := lc.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("list cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("list cache hit", "key", key)
	return val, true
}

// Set stores a serialized list with the configured TTL.
func (lc *ListCache) Set(ctx context.Context, kind, filter string, data []byte) {
	key := ListKey(kind, filter)
	if err := lc.client.Set(ctx, key, data, lc.ttl).Err(); err != nil {
		slog.Warn("list cache set error", "key", key, "error", err)
	}
}

// InvalidateKind removes every cached list of kind by scanning for its
// key prefix.
func (lc *ListCache) InvalidateKind(ctx context.Context, kind string) error {
	pattern := listKeyPrefix + kind + ":*"
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := lc.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := lc.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	slog.Debug("list cache invalidated", "kind", kind, "deleted", deleted)
	return nil
}
