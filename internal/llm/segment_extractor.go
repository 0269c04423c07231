package llm

import (
	"context"
	"fmt"

	"github.com/ppiankov/coalesce/internal/model"
)

// SegmentExtractor adapts a Provider to the pipeline's per-segment
// extraction interface, binding the record type and field list once.
type SegmentExtractor struct {
	provider   Provider
	recordType string
	fields     []string
	model      string
	maxTokens  int
}

// NewSegmentExtractor creates an extractor bound to one record schema
func NewSegmentExtractor(provider Provider, recordType string, fields []string, modelName string, maxTokens int) *SegmentExtractor {
	return &SegmentExtractor{
		provider:   provider,
		recordType: recordType,
		fields:     fields,
		model:      modelName,
		maxTokens:  maxTokens,
	}
}

// Extract produces a partial record for one segment of text
func (e *SegmentExtractor) Extract(ctx context.Context, segmentText string) (model.PartialResult, error) {
	resp, err := e.provider.ExtractRecord(ctx, ExtractRequest{
		SegmentText: segmentText,
		RecordType:  e.recordType,
		Fields:      e.fields,
		Model:       e.model,
		MaxTokens:   e.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", e.provider.Name(), err)
	}
	return resp.Fields, nil
}
