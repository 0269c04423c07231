package model

// Strategy identifies how one field is reconciled across segment results
type Strategy string

const (
	StrategyFirstNonNull      Strategy = "first_non_null"     // Earliest segment that produced a value wins
	StrategyLastNonNull       Strategy = "last_non_null"      // Latest segment that produced a value wins
	StrategyHighestConfidence Strategy = "highest_confidence" // Candidate with the highest confidence score wins
	StrategyConcatDedupe      Strategy = "concat_dedupe"      // Flatten list values and deduplicate elements
	StrategySum               Strategy = "sum"                // Numeric sum over all values
	StrategyMax               Strategy = "max"                // Numeric maximum
	StrategyMin               Strategy = "min"                // Numeric minimum
	StrategyAverage           Strategy = "average"            // Numeric mean
	StrategyMostCommon        Strategy = "most_common"        // Modal value, first-seen wins ties
	StrategyMergeRecords      Strategy = "merge_records"      // Shallow-merge nested records in order
)

// Strategies lists every reconciliation strategy in declaration order
func Strategies() []Strategy {
	return []Strategy{
		StrategyFirstNonNull,
		StrategyLastNonNull,
		StrategyHighestConfidence,
		StrategyConcatDedupe,
		StrategySum,
		StrategyMax,
		StrategyMin,
		StrategyAverage,
		StrategyMostCommon,
		StrategyMergeRecords,
	}
}

// Valid reports whether s names a known strategy
func (s Strategy) Valid() bool {
	for _, known := range Strategies() {
		if s == known {
			return true
		}
	}
	return false
}

// MergeRule declares how one field of a record type is reconciled across
// partial results. Rules are pure data: declared once per schema and never
// mutated during a run.
type MergeRule struct {
	Field    string   `json:"field" yaml:"field"`       // Field name in the extracted record
	Strategy Strategy `json:"strategy" yaml:"strategy"` // Reconciliation strategy

	// DedupKey names the element field used to group list elements for
	// concat_dedupe; when empty, elements are deduplicated by equality.
	DedupKey string `json:"dedup_key,omitempty" yaml:"dedup_key,omitempty"`

	// ConfidenceField names the field carrying a confidence score, used by
	// highest_confidence and by keyed concat_dedupe to break duplicates.
	ConfidenceField string `json:"confidence_field,omitempty" yaml:"confidence_field,omitempty"`
}
