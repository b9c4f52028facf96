package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/stagefive/notebook/internal/domain"
)

// ListingCache keeps notebook listings in memcache for a short TTL.
// Everything here is best effort; a failure is a miss.
type ListingCache struct {
	mc  *memcache.Client
	ttl int32
}

func NewListingCache(mc *memcache.Client, ttl time.Duration) *ListingCache {
	return &ListingCache{
		mc:  mc,
		ttl: int32(ttl / time.Second),
	}
}

// memcache keys cannot contain spaces or control characters, so the
// notebook name is query escaped.
func listingKey(notebook string) string {
	return "notebook:listing:" + url.QueryEscape(notebook)
}

func (c *ListingCache) Get(ctx context.Context, notebook string) ([]domain.Note, bool) {
	item, err := c.mc.Get(listingKey(notebook))
	if err != nil {
		if err != memcache.ErrCacheMiss {
			slog.DebugContext(
				ctx, "Listing cache get failed",
				slog.String("error", err.Error()),
				slog.String("module", "cache"),
			)
		}
		return nil, false
	}

	var notes []domain.Note
	if err := json.Unmarshal(item.Value, &notes); err != nil {
		return nil, false
	}
	return notes, true
}

func (c *ListingCache) Set(ctx context.Context, notebook string, notes []domain.Note) {
	value, err := json.Marshal(notes)
	if err != nil {
		return
	}

	err = c.mc.Set(&memcache.Item{
		Key:        listingKey(notebook),
		Value:      value,
		Expiration: c.ttl,
	})
	if err != nil {
		slog.DebugContext(
			ctx, "Listing cache set failed",
			slog.String("error", err.Error()),
			slog.String("module", "cache"),
		)
	}
}

func (c *ListingCache) Invalidate(ctx context.Context, notebook string) {
	err := c.mc.Delete(listingKey(notebook))
	if err != nil && err != memcache.ErrCacheMiss {
		slog.DebugContext(
			ctx, "Listing cache invalidation failed",
			slog.String("error", err.Error()),
			slog.String("module", "cache"),
		)
	}
}
