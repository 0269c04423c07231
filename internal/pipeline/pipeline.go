// Package pipeline composes segmentation, concurrent extraction and
// field-level reconciliation into the document processing pipeline.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/ppiankov/coalesce/internal/extract"
	"github.com/ppiankov/coalesce/internal/ingest"
	"github.com/ppiankov/coalesce/internal/merge"
	"github.com/ppiankov/coalesce/internal/model"
	"github.com/ppiankov/coalesce/internal/segment"
)

// Pipeline turns one long document into a single reconciled record:
// segment, fan out extraction, reconcile. A pipeline holds no per-run state
// and is safe to use from concurrent batch workers.
type Pipeline struct {
	segmenter   *segment.Segmenter
	coordinator *extract.Coordinator
	rules       []model.MergeRule
	recordType  string
	provider    string
	modelName   string
	verbose     bool
}

// NewPipeline assembles a pipeline. The extractor is the (possibly
// decorated) extraction backend; rules are the merge schema for recordType.
func NewPipeline(cfg *model.Config, extractor extract.Extractor, recordType string, rules []model.MergeRule) *Pipeline {
	return &Pipeline{
		segmenter:   segment.NewSegmenter(cfg.Segmenter),
		coordinator: extract.NewCoordinator(extractor, cfg.Concurrency.MaxInFlight),
		rules:       rules,
		recordType:  recordType,
		provider:    cfg.LLM.Provider,
		modelName:   cfg.LLM.Model,
		verbose:     cfg.Output.Verbose,
	}
}

// Process reconciles a document's text into a single record. The caller
// observes either a complete MergedResult (possibly built from a subset of
// segments, with counts saying how many contributed) or an error; there is
// no partial-success signal beyond those counts.
func (p *Pipeline) Process(ctx context.Context, documentText string) (*model.MergedResult, error) {
	segments := p.segmenter.Split(documentText)
	if p.verbose {
		fmt.Fprintf(os.Stderr, "Segmented %d chars into %d segment(s)\n", len(documentText), len(segments))
	}

	outcomes, err := p.coordinator.ExtractAll(ctx, segments)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	// Reconciliation is order-sensitive: re-establish ascending segment
	// order before merging, regardless of completion order.
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].Index < outcomes[j].Index })

	partials := make([]model.PartialResult, 0, len(outcomes))
	var failed []int
	for _, o := range outcomes {
		if o.Err != nil {
			failed = append(failed, o.Index)
			continue
		}
		partials = append(partials, o.Fields)
	}

	fields := merge.Merge(partials, p.rules)

	return &model.MergedResult{
		RecordType:        p.recordType,
		Fields:            fields,
		SegmentsTotal:     len(segments),
		SegmentsSucceeded: len(partials),
		FailedSegments:    failed,
		Provider:          p.provider,
		Model:             p.modelName,
		ProcessedAt:       time.Now().UTC(),
	}, nil
}

// Run loads a document from disk and processes it. This is the entry point
// batch workers use.
func (p *Pipeline) Run(ctx context.Context, path string) (*model.MergedResult, error) {
	text, err := ingest.Load(path)
	if err != nil {
		return nil, fmt.Errorf("ingest %s: %w", path, err)
	}

	result, err := p.Process(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("process %s: %w", path, err)
	}
	result.SourcePath = path
	return result, nil
}
