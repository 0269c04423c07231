package merge

import (
	"reflect"
	"testing"

	"github.com/ppiankov/coalesce/internal/model"
)

func rules(field string, strategy model.Strategy) []model.MergeRule {
	return []model.MergeRule{{Field: field, Strategy: strategy}}
}

func TestMerge_Empty(t *testing.T) {
	got := Merge(nil, rules("title", model.StrategyFirstNonNull))
	if len(got) != 0 {
		t.Errorf("expected empty record, got %v", got)
	}
}

func TestMerge_SingleInputUnchanged(t *testing.T) {
	// A single input passes through whole, including fields no rule declares.
	in := model.PartialResult{
		"title":    "Annual Report",
		"surprise": []any{"kept", "as-is"},
	}
	got := Merge([]model.PartialResult{in}, rules("title", model.StrategyFirstNonNull))

	if !reflect.DeepEqual(got, map[string]any(in)) {
		t.Errorf("single input must be returned unchanged: got %v", got)
	}
}

func TestMerge_UndeclaredFieldsOmitted(t *testing.T) {
	results := []model.PartialResult{
		{"title": "A", "stray": 1},
		{"title": "B", "stray": 2},
	}
	got := Merge(results, rules("title", model.StrategyFirstNonNull))

	if _, ok := got["stray"]; ok {
		t.Errorf("field without a rule leaked into the merged record: %v", got)
	}
	if got["title"] != "A" {
		t.Errorf("expected title A, got %v", got["title"])
	}
}

func TestMerge_FirstAndLastNonNull(t *testing.T) {
	results := []model.PartialResult{
		{"title": nil},
		{"title": "From Segment 1"},
		{"title": "From Segment 2"},
		{},
	}

	got := Merge(results, rules("title", model.StrategyFirstNonNull))
	if got["title"] != "From Segment 1" {
		t.Errorf("first_non_null: got %v", got["title"])
	}

	got = Merge(results, rules("title", model.StrategyLastNonNull))
	if got["title"] != "From Segment 2" {
		t.Errorf("last_non_null: got %v", got["title"])
	}
}

func TestMerge_AbsentEverywhere(t *testing.T) {
	results := []model.PartialResult{
		{"other": "x"},
		{"other": "y"},
	}
	got := Merge(results, rules("title", model.StrategyFirstNonNull))
	if _, ok := got["title"]; ok {
		t.Errorf("field absent from every input must be omitted, got %v", got["title"])
	}
}

func TestMerge_HighestConfidence(t *testing.T) {
	results := []model.PartialResult{
		{"summary": "weak", "confidence": 0.4},
		{"summary": "strong", "confidence": 0.9},
		{"summary": "middling", "confidence": 0.6},
	}
	got := Merge(results, rules("summary", model.StrategyHighestConfidence))
	if got["summary"] != "strong" {
		t.Errorf("expected highest-confidence value, got %v", got["summary"])
	}
}

func TestMerge_HighestConfidenceTieKeepsFirst(t *testing.T) {
	results := []model.PartialResult{
		{"summary": "earlier", "confidence": 0.8},
		{"summary": "later", "confidence": 0.8},
	}
	got := Merge(results, rules("summary", model.StrategyHighestConfidence))
	if got["summary"] != "earlier" {
		t.Errorf("ties must keep the first-seen value, got %v", got["summary"])
	}
}

func TestMerge_HighestConfidenceEmbedded(t *testing.T) {
	// Confidence carried inside the value itself wins over the zero default.
	results := []model.PartialResult{
		{"total": map[string]any{"amount": 10.0, "confidence": 0.2}},
		{"total": map[string]any{"amount": 99.0, "confidence": 0.95}},
	}
	got := Merge(results, rules("total", model.StrategyHighestConfidence))
	rec, ok := got["total"].(map[string]any)
	if !ok || rec["amount"] != 99.0 {
		t.Errorf("expected embedded-confidence winner, got %v", got["total"])
	}
}

func TestMerge_ConcatDedupeScalars(t *testing.T) {
	results := []model.PartialResult{
		{"keywords": []any{"alpha", "beta"}},
		{"keywords": []any{"beta", "gamma"}},
		{"keywords": "delta"}, // Scalar tolerated for a list field
	}
	got := Merge(results, rules("keywords", model.StrategyConcatDedupe))

	want := []any{"alpha", "beta", "gamma", "delta"}
	if !reflect.DeepEqual(got["keywords"], want) {
		t.Errorf("expected %v, got %v", want, got["keywords"])
	}
}

func TestMerge_ConcatDedupeKeyed(t *testing.T) {
	r := []model.MergeRule{{
		Field:    "authors",
		Strategy: model.StrategyConcatDedupe,
		DedupKey: "name",
	}}
	results := []model.PartialResult{
		{"authors": []any{
			map[string]any{"name": "Jane Doe", "confidence": 0.5, "role": "editor"},
		}},
		{"authors": []any{
			map[string]any{"name": "  jane doe ", "confidence": 0.9, "role": "author"},
			map[string]any{"name": "Sam Roe", "confidence": 0.7},
		}},
	}
	got := Merge(results, r)

	list, ok := got["authors"].([]any)
	if !ok || len(list) != 2 {
		t.Fatalf("expected 2 deduplicated authors, got %v", got["authors"])
	}
	// Group order follows first appearance; the higher-confidence duplicate
	// replaces the element in place.
	first := list[0].(map[string]any)
	if first["role"] != "author" {
		t.Errorf("higher-confidence duplicate must win, got %v", first)
	}
	second := list[1].(map[string]any)
	if second["name"] != "Sam Roe" {
		t.Errorf("expected Sam Roe second, got %v", second)
	}
}

func TestMerge_ConcatDedupeKeyedTieKeepsFirst(t *testing.T) {
	r := []model.MergeRule{{
		Field:    "orgs",
		Strategy: model.StrategyConcatDedupe,
		DedupKey: "name",
	}}
	results := []model.PartialResult{
		{"orgs": []any{map[string]any{"name": "Acme", "confidence": 0.5, "seen": "first"}}},
		{"orgs": []any{map[string]any{"name": "ACME", "confidence": 0.5, "seen": "second"}}},
	}
	got := Merge(results, r)

	list := got["orgs"].([]any)
	if len(list) != 1 {
		t.Fatalf("expected 1 org, got %d", len(list))
	}
	if list[0].(map[string]any)["seen"] != "first" {
		t.Errorf("equal confidence must keep the first-seen element, got %v", list[0])
	}
}

func TestMerge_Sum(t *testing.T) {
	results := []model.PartialResult{
		{"table_count": 2},
		{"table_count": "not a number"},
		{"table_count": 3.0},
	}
	got := Merge(results, rules("table_count", model.StrategySum))
	if got["table_count"] != 5.0 {
		t.Errorf("expected 5.0, got %v", got["table_count"])
	}
}

func TestMerge_MaxKeepsRawValue(t *testing.T) {
	results := []model.PartialResult{
		{"page_count": 12},
		{"page_count": 40},
		{"page_count": 7},
	}
	got := Merge(results, rules("page_count", model.StrategyMax))
	if got["page_count"] != 40 {
		t.Errorf("max must return the original value, got %v (%T)", got["page_count"], got["page_count"])
	}
}

func TestMerge_Min(t *testing.T) {
	results := []model.PartialResult{
		{"offset": 9.0},
		{"offset": 3.0},
		{"offset": 5.0},
	}
	got := Merge(results, rules("offset", model.StrategyMin))
	if got["offset"] != 3.0 {
		t.Errorf("expected 3.0, got %v", got["offset"])
	}
}

func TestMerge_Average(t *testing.T) {
	results := []model.PartialResult{
		{"confidence": 0.5},
		{"confidence": 1.5},
		{"confidence": "n/a"},
	}
	got := Merge(results, rules("confidence", model.StrategyAverage))
	if got["confidence"] != 1.0 {
		t.Errorf("expected 1.0 ignoring non-numerics, got %v", got["confidence"])
	}
}

func TestMerge_NumericNoneNumeric(t *testing.T) {
	results := []model.PartialResult{
		{"count": "many"},
		{"count": "few"},
	}
	got := Merge(results, rules("count", model.StrategySum))
	if _, ok := got["count"]; ok {
		t.Errorf("no numeric candidates must omit the field, got %v", got["count"])
	}
}

func TestMerge_MostCommon(t *testing.T) {
	results := []model.PartialResult{
		{"language": "en"},
		{"language": "de"},
		{"language": "en"},
		{"language": "en"},
	}
	got := Merge(results, rules("language", model.StrategyMostCommon))
	if got["language"] != "en" {
		t.Errorf("expected modal value en, got %v", got["language"])
	}
}

func TestMerge_MostCommonTieKeepsFirst(t *testing.T) {
	results := []model.PartialResult{
		{"doc_type": "invoice"},
		{"doc_type": "report"},
		{"doc_type": "report"},
		{"doc_type": "invoice"},
	}
	got := Merge(results, rules("doc_type", model.StrategyMostCommon))
	if got["doc_type"] != "invoice" {
		t.Errorf("tie must keep the first-seen value, got %v", got["doc_type"])
	}
}

func TestMerge_MergeRecords(t *testing.T) {
	results := []model.PartialResult{
		{"metadata": map[string]any{"source": "scan", "pages": 3}},
		{"metadata": "not a record"},
		{"metadata": map[string]any{"pages": 5, "lang": "en"}},
	}
	got := Merge(results, rules("metadata", model.StrategyMergeRecords))

	want := map[string]any{"source": "scan", "pages": 5, "lang": "en"}
	if !reflect.DeepEqual(got["metadata"], want) {
		t.Errorf("expected %v, got %v", want, got["metadata"])
	}
}

func TestMerge_OrderSensitivity(t *testing.T) {
	a := model.PartialResult{"title": "A"}
	b := model.PartialResult{"title": "B"}
	r := rules("title", model.StrategyFirstNonNull)

	forward := Merge([]model.PartialResult{a, b}, r)
	reversed := Merge([]model.PartialResult{b, a}, r)

	if forward["title"] == reversed["title"] {
		t.Errorf("order-sensitive strategy must depend on input order")
	}
}

func TestToFloat(t *testing.T) {
	tests := []struct {
		in   any
		want float64
		ok   bool
	}{
		{3.5, 3.5, true},
		{7, 7, true},
		{int64(9), 9, true},
		{"  2.25 ", 2.25, true},
		{"abc", 0, false},
		{nil, 0, false},
		{[]any{1}, 0, false},
	}
	for _, tt := range tests {
		got, ok := toFloat(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("toFloat(%v) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
