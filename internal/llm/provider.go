// Package llm implements the extraction backends: LLM providers that turn a
// segment of document text into a structured JSON record.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/coalesce/internal/model"
)

// Provider is an LLM backend capable of structured record extraction
type Provider interface {
	// Name returns the provider name
	Name() string

	// ExtractRecord extracts a structured record from one segment of text
	ExtractRecord(ctx context.Context, req ExtractRequest) (*ExtractResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// ExtractRequest is the input for one segment extraction
type ExtractRequest struct {
	// SegmentText is the document slice to extract from
	SegmentText string

	// RecordType names the schema being filled (e.g. "document")
	RecordType string

	// Fields is the ordered list of field names the record may contain,
	// taken from the merge schema
	Fields []string

	// Prompt is an optional custom prompt (if empty, use the default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// ExtractResponse is a provider's output for one segment
type ExtractResponse struct {
	// Fields is the parsed record
	Fields model.PartialResult

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests, in seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "",
		Model:     "",
		Timeout:   60,
		MaxTokens: 2000,
	}
}

// BuildPrompt constructs the default extraction prompt. The model sees one
// segment of a larger document; reconciliation across segments happens
// downstream, so the prompt asks only for what this segment supports.
func BuildPrompt(req ExtractRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are extracting structured data from ONE segment of a longer document.
The segment may start or end mid-sentence; other segments are processed separately.

Return a single JSON object describing this %s. Rules:
1. Use ONLY these field names: %s
2. Omit any field this segment gives no evidence for. Never invent values.
3. For list fields, include one entry per distinct item found in this segment.
4. Where a "confidence" field is available, score 0.0-1.0 how certain you are.
5. Return raw JSON only - no prose, no code fences.

Segment:
---
%s
---`, req.RecordType, strings.Join(req.Fields, ", "), req.SegmentText)

	return b.String()
}

// systemPrompt is shared by chat-style providers
const systemPrompt = "You extract structured JSON records from document fragments. You respond with a single valid JSON object and nothing else."
