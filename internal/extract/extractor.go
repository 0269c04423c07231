// Package extract fans structured extraction out over document segments and
// collects the per-segment outcomes.
package extract

import (
	"context"
	"errors"
	"fmt"

	"github.com/ppiankov/coalesce/internal/model"
)

// Extractor turns one segment of text into a structured partial record.
// The pipeline treats implementations as black boxes: any returned error is
// handled identically regardless of its cause.
type Extractor interface {
	Extract(ctx context.Context, segmentText string) (model.PartialResult, error)
}

// ErrAllSegmentsFailed is returned when no segment produced a usable result
var ErrAllSegmentsFailed = errors.New("all segment extractions failed")

// ExtractionError records one segment's failed extraction with enough
// context to locate the offending slice of the document.
type ExtractionError struct {
	Index     int // Segment index
	CharStart int // Segment range in the document
	CharEnd   int
	Err       error // Underlying cause
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract segment %d [%d:%d): %v", e.Index, e.CharStart, e.CharEnd, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
