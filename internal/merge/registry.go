package merge

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/coalesce/internal/model"
)

// DefaultRecordType is the built-in schema used when the caller names none
const DefaultRecordType = "document"

// Registry maps record-type names to their ordered merge rules. A registry
// is assembled once per pipeline configuration and read-only afterwards.
type Registry struct {
	schemas map[string][]model.MergeRule
}

// NewRegistry creates a registry seeded with the built-in document schema
func NewRegistry() *Registry {
	r := &Registry{schemas: make(map[string][]model.MergeRule)}
	r.schemas[DefaultRecordType] = documentRules()
	return r
}

// Rules returns the ordered rules for a record type
func (r *Registry) Rules(recordType string) ([]model.MergeRule, bool) {
	rules, ok := r.schemas[recordType]
	return rules, ok
}

// Types lists registered record types in sorted order
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		types = append(types, name)
	}
	sort.Strings(types)
	return types
}

// Register adds or replaces a record type after validating its rules
func (r *Registry) Register(name string, rules []model.MergeRule) error {
	if name == "" {
		return fmt.Errorf("record type name is required")
	}
	if len(rules) == 0 {
		return fmt.Errorf("record type %q has no rules", name)
	}
	seen := make(map[string]bool, len(rules))
	for _, rule := range rules {
		if rule.Field == "" {
			return fmt.Errorf("record type %q: rule with empty field", name)
		}
		if !rule.Strategy.Valid() {
			return fmt.Errorf("record type %q, field %q: unknown strategy %q", name, rule.Field, rule.Strategy)
		}
		if seen[rule.Field] {
			return fmt.Errorf("record type %q: duplicate rule for field %q", name, rule.Field)
		}
		seen[rule.Field] = true
	}
	r.schemas[name] = rules
	return nil
}

// LoadFile reads record-type schemas from a YAML file and registers them.
// The file maps record-type names to ordered rule lists:
//
//	invoice:
//	  - field: vendor
//	    strategy: first_non_null
//	  - field: line_items
//	    strategy: concat_dedupe
//	    dedup_key: description
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read schema file: %w", err)
	}

	var schemas map[string][]model.MergeRule
	if err := yaml.Unmarshal(data, &schemas); err != nil {
		return fmt.Errorf("parse schema file %s: %w", path, err)
	}
	for name, rules := range schemas {
		if err := r.Register(name, rules); err != nil {
			return fmt.Errorf("schema file %s: %w", path, err)
		}
	}
	return nil
}

// FieldNames returns the ordered field names a schema declares, used to
// steer the extraction prompt.
func FieldNames(rules []model.MergeRule) []string {
	names := make([]string, 0, len(rules))
	for _, rule := range rules {
		names = append(names, rule.Field)
	}
	return names
}

// documentRules is the built-in schema for generic long-form documents
func documentRules() []model.MergeRule {
	return []model.MergeRule{
		{Field: "title", Strategy: model.StrategyFirstNonNull},
		{Field: "doc_type", Strategy: model.StrategyMostCommon},
		{Field: "language", Strategy: model.StrategyMostCommon},
		{Field: "summary", Strategy: model.StrategyHighestConfidence, ConfidenceField: "confidence"},
		{Field: "authors", Strategy: model.StrategyConcatDedupe, DedupKey: "name", ConfidenceField: "confidence"},
		{Field: "organizations", Strategy: model.StrategyConcatDedupe, DedupKey: "name", ConfidenceField: "confidence"},
		{Field: "keywords", Strategy: model.StrategyConcatDedupe},
		{Field: "dates", Strategy: model.StrategyConcatDedupe},
		{Field: "page_count", Strategy: model.StrategyMax},
		{Field: "table_count", Strategy: model.StrategySum},
		{Field: "confidence", Strategy: model.StrategyAverage},
		{Field: "metadata", Strategy: model.StrategyMergeRecords},
	}
}
