// Package ingest loads documents from disk and normalizes them into plain
// text suitable for segmentation.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var excessNewlinesRe = regexp.MustCompile(`\n{3,}`)

// Load reads a document and returns its plain-text content. HTML files are
// reduced to visible text; everything else passes through with whitespace
// normalization.
func Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}

	content := string(data)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		text, err := FromHTML(content)
		if err != nil {
			return "", fmt.Errorf("parse HTML %s: %w", path, err)
		}
		return Normalize(text), nil
	default:
		return Normalize(content), nil
	}
}

// Normalize canonicalizes line endings, strips a UTF-8 BOM, and collapses
// runs of blank lines so paragraph boundaries stay meaningful for the
// segmenter. Form feeds are preserved: they act as page delimiters.
func Normalize(text string) string {
	text = strings.TrimPrefix(text, "\uFEFF")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = excessNewlinesRe.ReplaceAllString(text, "\n\n")
	return text
}
