package merge

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/coalesce/internal/model"
)

func TestNewRegistry_BuiltinSchema(t *testing.T) {
	r := NewRegistry()

	rules, ok := r.Rules(DefaultRecordType)
	if !ok {
		t.Fatalf("built-in %q schema missing", DefaultRecordType)
	}
	if len(rules) == 0 {
		t.Fatalf("built-in schema has no rules")
	}
	if rules[0].Field != "title" {
		t.Errorf("expected title first, got %q", rules[0].Field)
	}

	if _, ok := r.Rules("no-such-type"); ok {
		t.Errorf("unknown record type should not resolve")
	}
}

func TestRegister_Validation(t *testing.T) {
	valid := []model.MergeRule{{Field: "vendor", Strategy: model.StrategyFirstNonNull}}

	tests := []struct {
		name    string
		typ     string
		rules   []model.MergeRule
		wantErr string
	}{
		{"valid", "invoice", valid, ""},
		{"empty name", "", valid, "name is required"},
		{"no rules", "invoice", nil, "no rules"},
		{"empty field", "invoice", []model.MergeRule{{Field: "", Strategy: model.StrategySum}}, "empty field"},
		{"bad strategy", "invoice", []model.MergeRule{{Field: "x", Strategy: "pick_best"}}, "unknown strategy"},
		{"duplicate field", "invoice", []model.MergeRule{
			{Field: "x", Strategy: model.StrategySum},
			{Field: "x", Strategy: model.StrategyMax},
		}, "duplicate rule"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRegistry().Register(tt.typ, tt.rules)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRegister_ReplacesExisting(t *testing.T) {
	r := NewRegistry()
	custom := []model.MergeRule{{Field: "title", Strategy: model.StrategyLastNonNull}}
	if err := r.Register(DefaultRecordType, custom); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rules, _ := r.Rules(DefaultRecordType)
	if len(rules) != 1 || rules[0].Strategy != model.StrategyLastNonNull {
		t.Errorf("registration must replace the existing schema, got %v", rules)
	}
}

func TestLoadFile(t *testing.T) {
	schema := `invoice:
  - field: vendor
    strategy: first_non_null
  - field: line_items
    strategy: concat_dedupe
    dedup_key: description
  - field: total
    strategy: max
contract:
  - field: parties
    strategy: concat_dedupe
    dedup_key: name
    confidence_field: score
`
	path := filepath.Join(t.TempDir(), "schemas.yaml")
	if err := os.WriteFile(path, []byte(schema), 0o644); err != nil {
		t.Fatalf("write schema file: %v", err)
	}

	r := NewRegistry()
	if err := r.LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	rules, ok := r.Rules("invoice")
	if !ok || len(rules) != 3 {
		t.Fatalf("expected 3 invoice rules, got %v", rules)
	}
	if rules[1].DedupKey != "description" {
		t.Errorf("dedup_key not parsed: %v", rules[1])
	}

	contract, ok := r.Rules("contract")
	if !ok || contract[0].ConfidenceField != "score" {
		t.Errorf("confidence_field not parsed: %v", contract)
	}

	types := r.Types()
	want := []string{"contract", DefaultRecordType, "invoice"}
	if len(types) != len(want) {
		t.Fatalf("expected types %v, got %v", want, types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("types[%d] = %q, want %q", i, types[i], want[i])
		}
	}
}

func TestLoadFile_Errors(t *testing.T) {
	r := NewRegistry()
	if err := r.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("expected error for missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("invoice:\n  - field: x\n    strategy: bogus\n"), 0o644); err != nil {
		t.Fatalf("write schema file: %v", err)
	}
	if err := r.LoadFile(bad); err == nil || !strings.Contains(err.Error(), "unknown strategy") {
		t.Errorf("expected strategy validation error, got %v", err)
	}
}

func TestFieldNames(t *testing.T) {
	rules := []model.MergeRule{
		{Field: "a", Strategy: model.StrategySum},
		{Field: "b", Strategy: model.StrategyMin},
	}
	names := FieldNames(rules)
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("expected [a b], got %v", names)
	}
}
