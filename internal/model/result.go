package model

import "time"

// PartialResult is the structured record produced from one segment of text.
// Values are JSON-shaped: scalars, []any lists, nested map[string]any records,
// or nil. A PartialResult is never mutated after the extractor returns it.
type PartialResult map[string]any

// MergedResult is the single reconciled record the pipeline returns.
// Fields holds at most one value per declared field; the remaining members
// describe how the record was produced.
type MergedResult struct {
	RecordType        string         `json:"record_type"`               // Schema the merge rules came from
	Fields            map[string]any `json:"fields"`                    // Reconciled field values
	SegmentsTotal     int            `json:"segments_total"`            // Segments produced by the segmenter
	SegmentsSucceeded int            `json:"segments_succeeded"`        // Segments whose extraction succeeded
	FailedSegments    []int          `json:"failed_segments,omitempty"` // Indexes of segments that failed
	SourcePath        string         `json:"source_path,omitempty"`     // Input file, when run via the CLI
	Provider          string         `json:"provider,omitempty"`        // Extraction backend used
	Model             string         `json:"model,omitempty"`           // Model name, provider-specific
	ProcessedAt       time.Time      `json:"processed_at"`              // When the pipeline finished
}

// Degraded reports whether the record was reconciled from a strict subset
// of segments because some extractions failed.
func (r *MergedResult) Degraded() bool {
	return r.SegmentsSucceeded < r.SegmentsTotal
}
