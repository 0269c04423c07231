// Package merge reconciles per-segment partial results into a single record,
// field by field, according to declared rules.
package merge

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ppiankov/coalesce/internal/model"
)

// defaultConfidenceField is used by keyed list deduplication when a rule
// does not name one.
const defaultConfidenceField = "confidence"

// Merge reconciles ordered partial results into one record. The operation is
// pure and total: it performs no I/O and cannot fail on well-typed input.
//
// Input order matters and must reflect ascending segment index; callers are
// responsible for re-establishing document order before calling. Given a
// single input, the result is that record unchanged. Fields absent from every
// input are omitted, never fabricated.
func Merge(results []model.PartialResult, rules []model.MergeRule) map[string]any {
	merged := make(map[string]any)
	if len(results) == 0 {
		return merged
	}
	if len(results) == 1 {
		for k, v := range results[0] {
			merged[k] = v
		}
		return merged
	}

	for _, rule := range rules {
		cands := collect(results, rule.Field)
		if len(cands) == 0 {
			continue
		}
		if value, ok := apply(rule, cands); ok {
			merged[rule.Field] = value
		}
	}
	return merged
}

// candidate is one non-null value for a field, paired with the record it
// came from so sibling confidence fields stay reachable.
type candidate struct {
	value  any
	source model.PartialResult
}

// collect gathers the non-null values for field across results, in order
func collect(results []model.PartialResult, field string) []candidate {
	var cands []candidate
	for _, r := range results {
		v, ok := r[field]
		if !ok || v == nil {
			continue
		}
		cands = append(cands, candidate{value: v, source: r})
	}
	return cands
}

func apply(rule model.MergeRule, cands []candidate) (any, bool) {
	switch rule.Strategy {
	case model.StrategyFirstNonNull:
		return cands[0].value, true
	case model.StrategyLastNonNull:
		return cands[len(cands)-1].value, true
	case model.StrategyHighestConfidence:
		return highestConfidence(cands, rule.ConfidenceField), true
	case model.StrategyConcatDedupe:
		return concatDedupe(cands, rule), true
	case model.StrategySum, model.StrategyMax, model.StrategyMin, model.StrategyAverage:
		return reduceNumeric(rule.Strategy, cands)
	case model.StrategyMostCommon:
		return mostCommon(cands), true
	case model.StrategyMergeRecords:
		return mergeRecords(cands), true
	default:
		// Unknown strategies are filtered out at registry load time; fall
		// back to the earliest value rather than dropping data.
		return cands[0].value, true
	}
}

// highestConfidence picks the candidate with the strictly highest confidence
// score, keeping the first seen on ties. Candidates without a score count
// as zero.
func highestConfidence(cands []candidate, confField string) any {
	if confField == "" {
		confField = defaultConfidenceField
	}
	best := cands[0]
	bestScore := confidenceOf(best, confField)
	for _, c := range cands[1:] {
		if score := confidenceOf(c, confField); score > bestScore {
			best, bestScore = c, score
		}
	}
	return best.value
}

// confidenceOf reads a candidate's confidence: from the value itself when it
// is a record carrying the field, otherwise from the sibling field of the
// partial result it came from.
func confidenceOf(c candidate, confField string) float64 {
	if m, ok := c.value.(map[string]any); ok {
		if score, ok := toFloat(m[confField]); ok {
			return score
		}
	}
	if score, ok := toFloat(c.source[confField]); ok {
		return score
	}
	return 0
}

// concatDedupe flattens all list values into one sequence and deduplicates.
// With a DedupKey, record elements are grouped by the trimmed, case-folded
// key value and the highest-confidence element per group survives (first
// seen on ties). Without one, elements are deduplicated by equality in
// first-seen order.
func concatDedupe(cands []candidate, rule model.MergeRule) []any {
	confField := rule.ConfidenceField
	if confField == "" {
		confField = defaultConfidenceField
	}

	var flat []any
	for _, c := range cands {
		if list, ok := c.value.([]any); ok {
			flat = append(flat, list...)
		} else {
			// Tolerate scalar values for a list field.
			flat = append(flat, c.value)
		}
	}

	var order []string
	kept := make(map[string]any)
	score := make(map[string]float64)

	for _, elem := range flat {
		rec, isRecord := elem.(map[string]any)
		if rule.DedupKey != "" && isRecord {
			key := "k:" + strings.ToLower(strings.TrimSpace(stringify(rec[rule.DedupKey])))
			conf, _ := toFloat(rec[confField])
			if _, seen := kept[key]; !seen {
				order = append(order, key)
				kept[key] = elem
				score[key] = conf
				continue
			}
			if conf > score[key] {
				kept[key] = elem
				score[key] = conf
			}
			continue
		}
		key := "e:" + canonical(elem)
		if _, seen := kept[key]; seen {
			continue
		}
		order = append(order, key)
		kept[key] = elem
	}

	out := make([]any, 0, len(order))
	for _, key := range order {
		out = append(out, kept[key])
	}
	return out
}

// reduceNumeric applies sum/max/min/average over the numeric values,
// ignoring anything non-numeric. It reports false when no value is numeric.
func reduceNumeric(strategy model.Strategy, cands []candidate) (any, bool) {
	var nums []float64
	var raw []any
	for _, c := range cands {
		if f, ok := toFloat(c.value); ok {
			nums = append(nums, f)
			raw = append(raw, c.value)
		}
	}
	if len(nums) == 0 {
		return nil, false
	}

	switch strategy {
	case model.StrategySum:
		total := 0.0
		for _, f := range nums {
			total += f
		}
		return total, true
	case model.StrategyAverage:
		total := 0.0
		for _, f := range nums {
			total += f
		}
		return total / float64(len(nums)), true
	case model.StrategyMax:
		best := 0
		for i := range nums {
			if nums[i] > nums[best] {
				best = i
			}
		}
		return raw[best], true
	default: // model.StrategyMin
		best := 0
		for i := range nums {
			if nums[i] < nums[best] {
				best = i
			}
		}
		return raw[best], true
	}
}

// mostCommon returns the modal value; ties keep the first-seen candidate
func mostCommon(cands []candidate) any {
	counts := make(map[string]int)
	first := make(map[string]int)
	var keys []string
	for i, c := range cands {
		key := canonical(c.value)
		if _, seen := counts[key]; !seen {
			first[key] = i
			keys = append(keys, key)
		}
		counts[key]++
	}

	bestKey := keys[0]
	for _, key := range keys[1:] {
		if counts[key] > counts[bestKey] {
			bestKey = key
		}
	}
	return cands[first[bestKey]].value
}

// mergeRecords shallow-merges record values in order; later values
// overwrite earlier ones for the same key.
func mergeRecords(cands []candidate) map[string]any {
	out := make(map[string]any)
	for _, c := range cands {
		rec, ok := c.value.(map[string]any)
		if !ok {
			continue
		}
		for k, v := range rec {
			out[k] = v
		}
	}
	return out
}

// toFloat coerces JSON-shaped numeric values, including numeric strings
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// canonical produces a comparable identity for arbitrary JSON-shaped values
func canonical(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
