package extract

import (
	"context"

	"github.com/ppiankov/coalesce/internal/model"
	"github.com/ppiankov/coalesce/internal/worker"
)

// RateLimitedExtractor waits for rate-limit clearance before each call,
// bounding request pressure on the extraction backend.
type RateLimitedExtractor struct {
	inner   Extractor
	limiter *worker.Limiter
	key     string // Limiter bucket, typically the model name
}

// NewRateLimitedExtractor creates a rate-limiting decorator around inner
func NewRateLimitedExtractor(inner Extractor, limiter *worker.Limiter, key string) *RateLimitedExtractor {
	return &RateLimitedExtractor{
		inner:   inner,
		limiter: limiter,
		key:     key,
	}
}

// Extract blocks until the limiter permits the call, then delegates
func (r *RateLimitedExtractor) Extract(ctx context.Context, segmentText string) (model.PartialResult, error) {
	if err := r.limiter.Wait(ctx, r.key); err != nil {
		return nil, err
	}
	return r.inner.Extract(ctx, segmentText)
}
