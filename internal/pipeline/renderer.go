package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ppiankov/coalesce/internal/model"
)

// Renderer writes merged records to disk and summarizes them on stdout
type Renderer struct{}

// NewRenderer creates a renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderJSON writes the record as indented JSON
func (r *Renderer) RenderJSON(result *model.MergedResult, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write JSON: %w", err)
	}
	return nil
}

// RenderMarkdown writes a human-readable report
func (r *Renderer) RenderMarkdown(result *model.MergedResult, path string) error {
	var b strings.Builder

	title := "Reconciled Record"
	if t, ok := result.Fields["title"].(string); ok && t != "" {
		title = t
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	if result.SourcePath != "" {
		fmt.Fprintf(&b, "- **Source**: %s\n", result.SourcePath)
	}
	fmt.Fprintf(&b, "- **Record type**: %s\n", result.RecordType)
	fmt.Fprintf(&b, "- **Segments**: %d/%d succeeded\n", result.SegmentsSucceeded, result.SegmentsTotal)
	if len(result.FailedSegments) > 0 {
		fmt.Fprintf(&b, "- **Failed segments**: %v\n", result.FailedSegments)
	}
	if result.Provider != "" {
		fmt.Fprintf(&b, "- **Extractor**: %s/%s\n", result.Provider, result.Model)
	}
	fmt.Fprintf(&b, "- **Processed**: %s\n\n", result.ProcessedAt.Format("2006-01-02 15:04:05 UTC"))

	b.WriteString("## Fields\n\n")
	names := make([]string, 0, len(result.Fields))
	for name := range result.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		value, err := json.MarshalIndent(result.Fields[name], "", "  ")
		if err != nil {
			value = []byte(fmt.Sprintf("%v", result.Fields[name]))
		}
		fmt.Fprintf(&b, "### %s\n\n```json\n%s\n```\n\n", name, value)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

// RenderSummary prints a one-screen summary to stdout
func (r *Renderer) RenderSummary(result *model.MergedResult) {
	fmt.Printf("\n")
	fmt.Printf("Record type:  %s\n", result.RecordType)
	fmt.Printf("Segments:     %d/%d succeeded\n", result.SegmentsSucceeded, result.SegmentsTotal)
	if result.Degraded() {
		fmt.Printf("Note:         record built from a subset of segments\n")
	}
	fmt.Printf("Fields:       %d\n", len(result.Fields))
	for _, name := range []string{"title", "doc_type", "language"} {
		if v, ok := result.Fields[name]; ok {
			fmt.Printf("  %-11s %v\n", name+":", v)
		}
	}
	fmt.Printf("\n")
}
