package extract

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ppiankov/coalesce/internal/cache"
	"github.com/ppiankov/coalesce/internal/model"
)

// CachedExtractor wraps an Extractor with a content-addressed result cache.
// The key covers both the segment text and a scope string, so results from
// different providers, models or schemas never collide. Failed extractions
// are not cached.
type CachedExtractor struct {
	inner Extractor
	store cache.Cache
	scope string
	ttl   time.Duration
}

// NewCachedExtractor creates a caching decorator around inner
func NewCachedExtractor(inner Extractor, store cache.Cache, scope string, ttl time.Duration) *CachedExtractor {
	return &CachedExtractor{
		inner: inner,
		store: store,
		scope: scope,
		ttl:   ttl,
	}
}

// Extract returns the cached result when present, otherwise delegates and
// stores the outcome.
func (c *CachedExtractor) Extract(ctx context.Context, segmentText string) (model.PartialResult, error) {
	key := cache.Key(c.scope, segmentText)

	if data, found := c.store.Get(key); found {
		var fields model.PartialResult
		if err := json.Unmarshal(data, &fields); err == nil {
			return fields, nil
		}
		// Corrupt entry: drop it and re-extract.
		_ = c.store.Delete(key)
	}

	fields, err := c.inner.Extract(ctx, segmentText)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(fields); err == nil {
		_ = c.store.Set(key, data, c.ttl)
	}
	return fields, nil
}
