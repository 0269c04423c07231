package segment

import (
	"strings"

	"github.com/ppiankov/coalesce/internal/model"
)

// Segmenter produces an ordered, gap-free, possibly-overlapping sequence of
// segments from raw text. Splitting is a pure function of the input: it never
// fails and never calls the extraction backend.
type Segmenter struct {
	maxChars    int
	overlap     int
	singlePass  int
	maxSegments int
	slack       int
}

// NewSegmenter creates a segmenter, applying defaults for zero or invalid values
func NewSegmenter(cfg model.SegmenterConfig) *Segmenter {
	def := model.DefaultConfig().Segmenter
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = def.MaxChars
	}
	if cfg.OverlapChars < 0 {
		cfg.OverlapChars = def.OverlapChars
	}
	if cfg.OverlapChars >= cfg.MaxChars {
		cfg.OverlapChars = cfg.MaxChars / 4
	}
	if cfg.SinglePassThreshold <= 0 {
		cfg.SinglePassThreshold = cfg.MaxChars
	}
	if cfg.MaxSegments <= 0 {
		cfg.MaxSegments = def.MaxSegments
	}
	if cfg.BoundarySlack <= 0 {
		// The search window tracks the overlap size unless tuned explicitly.
		cfg.BoundarySlack = cfg.OverlapChars
	}
	return &Segmenter{
		maxChars:    cfg.MaxChars,
		overlap:     cfg.OverlapChars,
		singlePass:  cfg.SinglePassThreshold,
		maxSegments: cfg.MaxSegments,
		slack:       cfg.BoundarySlack,
	}
}

// Split segments text into an ordered sequence whose [CharStart, CharEnd)
// ranges cover the whole document with no gaps. Documents at or below the
// single-pass threshold come back as exactly one segment.
func (s *Segmenter) Split(text string) []model.Segment {
	markers := PageMarkers(text)

	if len(text) <= s.singlePass {
		return []model.Segment{s.build(0, 0, len(text), text, markers)}
	}

	var segments []model.Segment
	cursor := 0
	for {
		end := cursor + s.maxChars
		if end >= len(text) {
			end = len(text)
		} else if len(segments) == s.maxSegments-1 {
			// Safety bound reached: the final segment takes the remainder so
			// coverage still holds.
			end = len(text)
		} else {
			lo := end - s.slack
			if lo < cursor {
				lo = cursor
			}
			hi := end + s.slack
			if hi > len(text) {
				hi = len(text)
			}
			end = CutPoint(text, lo, hi)
			if end <= cursor {
				end = cursor + s.maxChars
				if end > len(text) {
					end = len(text)
				}
			}
		}

		segments = append(segments, s.build(len(segments), cursor, end, text, markers))

		if end >= len(text) {
			break
		}
		next := end - s.overlap
		if next <= cursor {
			next = cursor + 1 // Forward progress regardless of overlap
		}
		cursor = next
	}
	return segments
}

func (s *Segmenter) build(index, start, end int, text string, markers []PageMarker) model.Segment {
	content := text[start:end]
	// CharEnd is exclusive, so the page range closes at the last content
	// byte. A segment cut just before a marker stays on the marker's
	// preceding page.
	last := end - 1
	if last < start {
		last = start
	}
	return model.Segment{
		Index:     index,
		Content:   content,
		CharStart: start,
		CharEnd:   end,
		PageStart: pageAt(markers, start),
		PageEnd:   pageAt(markers, last),
		Kind:      classify(content),
	}
}

// pageAt returns the page number in effect at offset pos: the number of the
// last marker at or before pos, or nil when no marker precedes it.
func pageAt(markers []PageMarker, pos int) *int {
	var page *int
	for i := range markers {
		if markers[i].Pos > pos {
			break
		}
		page = &markers[i].Number
	}
	return page
}

// classify determines a segment's kind from the ratio of table-like lines
// to non-empty lines: above 0.7 it is a table, zero is prose, anything in
// between is mixed.
func classify(content string) model.SegmentKind {
	total, tabular := 0, 0
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		total++
		if isTableLine(line) {
			tabular++
		}
	}
	if total == 0 || tabular == 0 {
		return model.SegmentKindText
	}
	if float64(tabular)/float64(total) > 0.7 {
		return model.SegmentKindTable
	}
	return model.SegmentKindMixed
}

// isTableLine reports whether a line looks like a table row: pipe-delimited,
// tab-separated, or column-aligned with wide space runs.
func isTableLine(line string) bool {
	if strings.Count(line, "|") >= 2 {
		return true
	}
	if strings.Count(line, "\t") >= 1 {
		return true
	}
	return strings.Count(line, "   ") >= 2
}
