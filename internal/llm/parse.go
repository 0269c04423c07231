package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ppiankov/coalesce/internal/model"
)

// ParseRecordJSON leniently parses a model response into a record. Models
// occasionally wrap JSON in code fences or lead with prose; this strips the
// wrapping and decodes the outermost object.
func ParseRecordJSON(raw string) (model.PartialResult, error) {
	cleaned := strings.TrimSpace(raw)

	// Strip markdown code fences.
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		if idx := strings.LastIndex(cleaned, "```"); idx >= 0 {
			cleaned = cleaned[:idx]
		}
		cleaned = strings.TrimSpace(cleaned)
	}

	// Narrow to the outermost object when the model added prose around it.
	start := strings.IndexByte(cleaned, '{')
	end := strings.LastIndexByte(cleaned, '}')
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON object in response")
	}
	cleaned = cleaned[start : end+1]

	var fields model.PartialResult
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		return nil, fmt.Errorf("decode record JSON: %w", err)
	}
	return fields, nil
}
