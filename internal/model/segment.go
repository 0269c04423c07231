package model

// SegmentKind classifies the dominant layout of a segment's content
type SegmentKind string

const (
	SegmentKindText  SegmentKind = "text"  // Prose with no table-like lines
	SegmentKindTable SegmentKind = "table" // Mostly delimiter-aligned rows
	SegmentKindMixed SegmentKind = "mixed" // Prose interleaved with tables
)

// Segment is a contiguous slice of the source document plus position metadata.
// Segments are emitted in ascending Index and together cover the whole
// document; consecutive segments may overlap.
type Segment struct {
	Index     int         `json:"index"`                // Position in the segment sequence (0-based)
	Content   string      `json:"content"`              // The raw text slice
	CharStart int         `json:"char_start"`           // Inclusive offset into the document
	CharEnd   int         `json:"char_end"`             // Exclusive offset into the document
	PageStart *int        `json:"page_start,omitempty"` // First page covered, if markers were found
	PageEnd   *int        `json:"page_end,omitempty"`   // Last page covered, if markers were found
	Kind      SegmentKind `json:"kind"`                 // Layout classification
}

// Len returns the segment length in bytes
func (s Segment) Len() int {
	return s.CharEnd - s.CharStart
}
