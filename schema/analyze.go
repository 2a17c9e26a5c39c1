package schema

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/crosstab-org/crosstab/pivot"
)

// ============================================================================
// FIELD ANALYSIS
// ============================================================================
// Pure and side-effect-free: records are never mutated. Sampling walks the
// record prefix and stops once SampleSize non-null values are seen.
// ============================================================================

// AnalyzeFields classifies every field present across the records.
// Returns an empty slice for an empty dataset. Fields are listed in sorted
// name order so repeated analysis of the same data lines up.
func AnalyzeFields(records []pivot.Record) []FieldStats {
	if len(records) == 0 {
		return []FieldStats{}
	}

	var order []string
	seen := make(map[string]bool)
	for _, r := range records {
		for k := range r {
			if !seen[k] {
				seen[k] = true
				order = append(order, k)
			}
		}
	}
	// Map iteration order is random per record; keep the overall listing
	// deterministic.
	sort.Strings(order)

	stats := make([]FieldStats, 0, len(order))
	for _, field := range order {
		stats = append(stats, AnalyzeField(records, field))
	}
	return stats
}

// AnalyzeField classifies a single field from a bounded sample of its
// non-null, non-blank values.
func AnalyzeField(records []pivot.Record, field string) FieldStats {
	stats := FieldStats{Field: field, Type: TypeString}

	samples := make([]any, 0, SampleSize)
	unique := make(map[string]bool)

	for _, r := range records {
		if len(samples) >= SampleSize {
			break
		}
		raw, ok := r[field]
		if !ok || raw == nil {
			continue
		}
		if s, isStr := raw.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		samples = append(samples, raw)
		unique[fmt.Sprintf("%v", raw)] = true
	}

	stats.UniqueCount = len(unique)
	if len(samples) == 0 {
		return stats
	}

	numCount, boolCount, dateCount := 0, 0, 0
	for _, raw := range samples {
		if _, ok := raw.(bool); ok {
			boolCount++
			continue
		}
		if _, ok := pivot.ParseNumeric(raw); ok {
			numCount++
		} else if s, isStr := raw.(string); isStr && isDate(s) {
			dateCount++
		}
	}

	// Ratio compare, not a truncated integer cutoff: 2 of 3 is 66.7% and
	// must not classify as numeric.
	n := float64(len(samples))
	meets := func(count int) bool {
		return float64(count)/n >= numericThreshold
	}

	switch {
	case meets(boolCount):
		stats.Type = TypeBoolean
	case meets(numCount):
		stats.Type = TypeNumber
		stats.IsNumeric = true
	case meets(dateCount):
		stats.Type = TypeDate
	default:
		stats.Type = TypeString
	}

	return stats
}

// FieldNames returns just the field names, for storage keys and
// configuration compatibility checks.
func FieldNames(stats []FieldStats) []string {
	names := make([]string, len(stats))
	for i, s := range stats {
		names[i] = s.Field
	}
	return names
}

var dateFormats = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"Jan-2006",
	"January 2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

func isDate(s string) bool {
	s = strings.TrimSpace(s)
	for _, layout := range dateFormats {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
