package extract

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/coalesce/internal/model"
)

const defaultMaxInFlight = 8

// Coordinator invokes an extractor once per segment with bounded concurrency
// and collects every outcome before returning. Each invocation is isolated:
// one segment's failure never aborts its siblings.
type Coordinator struct {
	extractor   Extractor
	maxInFlight int
}

// NewCoordinator creates a coordinator bounded to maxInFlight concurrent calls
func NewCoordinator(extractor Extractor, maxInFlight int) *Coordinator {
	if maxInFlight <= 0 {
		maxInFlight = defaultMaxInFlight
	}
	return &Coordinator{
		extractor:   extractor,
		maxInFlight: maxInFlight,
	}
}

// SegmentResult pairs a segment index with its extraction outcome.
// Exactly one of Fields and Err is set.
type SegmentResult struct {
	Index  int
	Fields model.PartialResult
	Err    error
}

// ExtractAll runs the extractor over every segment and returns one result
// slot per segment, ordered by segment index. It is a synchronization
// barrier: it does not return until every segment has either succeeded or
// definitively failed.
//
// Per-segment failures are recorded in place. The returned error is non-nil
// only when the context was cancelled (all partial results are discarded) or
// when every segment failed.
func (c *Coordinator) ExtractAll(ctx context.Context, segments []model.Segment) ([]SegmentResult, error) {
	if len(segments) == 0 {
		return nil, ErrAllSegmentsFailed
	}

	results := make([]SegmentResult, len(segments))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxInFlight)

	for i, seg := range segments {
		i, seg := i, seg
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fields, err := c.extractor.Extract(gctx, seg.Content)
			if err != nil {
				// Cancellation aborts the whole fan-out; anything else is an
				// isolated per-segment failure.
				if gctx.Err() != nil {
					return gctx.Err()
				}
				xerr := &ExtractionError{
					Index:     seg.Index,
					CharStart: seg.CharStart,
					CharEnd:   seg.CharEnd,
					Err:       err,
				}
				fmt.Fprintf(os.Stderr, "Warning: %v\n", xerr)
				results[i] = SegmentResult{Index: seg.Index, Err: xerr}
				return nil
			}
			results[i] = SegmentResult{Index: seg.Index, Fields: fields}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	succeeded := 0
	for i := range results {
		if results[i].Err == nil {
			succeeded++
		}
	}
	if succeeded == 0 {
		return nil, ErrAllSegmentsFailed
	}
	return results, nil
}
