package assets

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"gadgetsite/internal/models"
)

// ListCache stores serialized list results keyed by kind and filter.
// It is satisfied by *cache.ListCache.
type ListCache interface {
	Get(ctx context.Context, kind, filter string) ([]byte, bool)
	Set(ctx context.Context, kind, filter string, data []byte)
	InvalidateKind(ctx context.Context, kind string) error
}

// Filter narrows a list. CategoryID applies to photos and videos;
// ActiveOnly applies to services and categories.
type Filter struct {
	CategoryID *uuid.UUID
	ActiveOnly bool
}

// key returns the cache key segment for f.
func (f Filter) key() string {
	switch {
	case f.CategoryID != nil:
		return "category=" + f.CategoryID.String()
	case f.ActiveOnly:
		return "active"
	default:
		return "all"
	}
}

// loadTimeout bounds a shared list load, which outlives the request that
// started it.
const loadTimeout = 15 * time.Second

// cachedList serves a list from the cache, loading and filling it on a
// miss. Concurrent misses for the same key share one load; each caller
// still returns as soon as its own ctx is done.
func cachedList[T any](ctx context.Context, b *base, kind models.Kind, filter string, load func(context.Context) ([]T, error)) ([]T, error) {
	ch := b.loads.DoChan(string(kind)+":"+filter, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		if b.cache != nil {
			if data, ok := b.cache.Get(ctx, string(kind), filter); ok {
				var items []T
				if err := json.Unmarshal(data, &items); err == nil {
					return items, nil
				}
				slog.Warn("discarding undecodable cached list", "kind", kind, "filter", filter)
			}
		}

		gen := b.notifier.generation(kind)
		items, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []T{}
		}
		if b.cache != nil {
			if data, err := json.Marshal(items); err == nil {
				b.notifier.fillIfCurrent(kind, gen, func() {
					b.cache.Set(ctx, string(kind), filter, data)
				})
			}
		}
		return items, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]T), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
