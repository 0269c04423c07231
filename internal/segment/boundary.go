// Package segment splits documents into overlapping, boundary-respecting
// slices sized for downstream extraction.
package segment

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// pageMarkerRe matches explicit page delimiter lines such as "--- Page 12 ---"
// or "=== PAGE 3". The capture group is the page number.
var pageMarkerRe = regexp.MustCompile(`(?mi)^[ \t]*[-=]*[ \t]*page[ \t]+(\d+)[ \t]*[-=]*[ \t]*$`)

// numberedHeadingRe matches section headings like "3.", "2.1 Scope" or "4) Results"
var numberedHeadingRe = regexp.MustCompile(`^(?:#{1,6}[ \t]+\S|\d+(?:\.\d+)*[.)]?[ \t]+\S)`)

// CutPoint returns the best position to cut text inside [min, max], preferring
// document structure over arbitrary offsets. Each rule takes the last match in
// the window so segments fill up before cutting. The function is total: when
// nothing matches it falls back to the hard limit max.
//
// Priority: page marker, paragraph break, heading line, line break, whitespace.
func CutPoint(text string, min, max int) int {
	if min < 0 {
		min = 0
	}
	if max > len(text) {
		max = len(text)
	}
	if min >= max {
		return max
	}
	window := text[min:max]

	// Page or section delimiter: cut just before it so the marker opens the
	// next segment.
	if locs := pageMarkerRe.FindAllStringIndex(window, -1); len(locs) > 0 {
		return min + locs[len(locs)-1][0]
	}
	if idx := strings.LastIndexByte(window, '\f'); idx >= 0 {
		return min + idx
	}

	// Paragraph break: cut after the blank line.
	if idx := strings.LastIndex(window, "\n\n"); idx >= 0 {
		return min + idx + 2
	}

	// Heading-like line: cut at the start of the heading.
	if idx := lastHeadingStart(window); idx >= 0 {
		return min + idx
	}

	// Single line break: cut at the start of the next line.
	if idx := strings.LastIndexByte(window, '\n'); idx >= 0 {
		return min + idx + 1
	}

	// Any whitespace: cut after the whole rune, which may be multi-byte.
	if idx := strings.LastIndexFunc(window, unicode.IsSpace); idx >= 0 {
		_, size := utf8.DecodeRuneInString(window[idx:])
		return min + idx + size
	}

	return max
}

// lastHeadingStart returns the offset of the last heading-like line in window,
// or -1. A heading is a short line that is either numbered, markdown-style, or
// dominated by uppercase letters.
func lastHeadingStart(window string) int {
	for start := len(window); start > 0; {
		lineStart := strings.LastIndexByte(window[:start-1], '\n') + 1
		line := window[lineStart:start]
		if nl := strings.IndexByte(line, '\n'); nl >= 0 {
			line = line[:nl]
		}
		if isHeadingLine(line) {
			return lineStart
		}
		if lineStart == 0 {
			break
		}
		start = lineStart
	}
	return -1
}

func isHeadingLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 3 || len(trimmed) > 80 {
		return false
	}
	if numberedHeadingRe.MatchString(trimmed) {
		return true
	}
	upper, letters := 0, 0
	for _, r := range trimmed {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	// All-caps lines with some substance read as headings.
	return letters >= 3 && upper == letters
}

// PageMarker is a numbered page delimiter found in the document
type PageMarker struct {
	Pos    int // Byte offset of the marker line
	Number int // Page number parsed from the marker
}

// PageMarkers scans the whole document for numbered page delimiters,
// in document order.
func PageMarkers(text string) []PageMarker {
	matches := pageMarkerRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}
	markers := make([]PageMarker, 0, len(matches))
	for _, m := range matches {
		n, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil {
			continue
		}
		markers = append(markers, PageMarker{Pos: m[0], Number: n})
	}
	return markers
}
