package pivot

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// ============================================================================
// AGGREGATORS — Strategy Dispatch over Numeric Buckets
// ============================================================================
// Aggregate is a pure function: bucket in, (value, ok) out. ok=false means
// null — the bucket had no eligible input, or the strategy could not produce
// a finite result. Nothing here ever returns an error or panics outward.
// ============================================================================

// AggregateInput carries the optional inputs some strategies need.
type AggregateInput struct {
	GrandTotal *float64  // dataset-wide total, required by percentOfTotal
	Custom     Strategy  // resolved strategy when fn is "custom"
	AllValues  []float64 // the value field's full dataset values, passed to Custom
}

// Aggregate applies the named aggregation to a bucket of numeric values.
// ok is false when the result is null: empty input (except "custom"),
// percentOfTotal without a usable grand total, or a failed custom strategy.
// An unrecognized selector falls back to "sum".
func Aggregate(values []float64, fn string, in AggregateInput) (result float64, ok bool) {
	if fn == AggCustom {
		return runCustom(values, in)
	}

	if len(values) == 0 {
		return 0, false
	}

	switch fn {
	case AggSum:
		return sum(values), true
	case AggAvg:
		return sum(values) / float64(len(values)), true
	case AggMin:
		m := values[0]
		for _, v := range values[1:] {
			if v < m {
				m = v
			}
		}
		return m, true
	case AggMax:
		m := values[0]
		for _, v := range values[1:] {
			if v > m {
				m = v
			}
		}
		return m, true
	case AggCount:
		return float64(len(values)), true
	case AggCountDistinct:
		seen := make(map[float64]bool, len(values))
		for _, v := range values {
			seen[v] = true
		}
		return float64(len(seen)), true
	case AggMedian:
		return median(values), true
	case AggStdDev:
		return stdDev(values), true
	case AggPercentOfTotal:
		if in.GrandTotal == nil || *in.GrandTotal == 0 {
			return 0, false
		}
		return sum(values) / *in.GrandTotal * 100, true
	default:
		return sum(values), true
	}
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

// median returns the sorted-array midpoint; for even length, the average of
// the two middle elements. Sorts a copy — never the caller's bucket.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// stdDev returns the population standard deviation (not sample-corrected).
func stdDev(values []float64) float64 {
	mean := sum(values) / float64(len(values))
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)))
}

// runCustom invokes a host strategy. Unlike built-ins, it runs even on an
// empty bucket — the strategy owns its own empty-input policy. Panics and
// errors resolve to null.
func runCustom(values []float64, in AggregateInput) (result float64, ok bool) {
	if in.Custom == nil {
		return 0, false
	}
	defer func() {
		if r := recover(); r != nil {
			result, ok = 0, false
		}
	}()

	v, err := in.Custom(values, in.AllValues)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ============================================================================
// VALUE FORMATTING
// ============================================================================

// FormatAggregatedValue renders an aggregated value for display.
// Null renders as "-". Counts render as grouped integers, percentOfTotal as
// a one-decimal percentage, and everything else as a grouped number — two
// decimals for magnitudes ≥1000, four below.
func FormatAggregatedValue(v *float64, fn string) string {
	if v == nil {
		return "-"
	}

	switch fn {
	case AggCount, AggCountDistinct:
		return formatGrouped(*v, 0)
	case AggPercentOfTotal:
		return fmt.Sprintf("%.1f%%", *v)
	default:
		if math.Abs(*v) >= 1000 {
			return formatGrouped(*v, 2)
		}
		return formatGrouped(*v, 4)
	}
}

// FormatCalculatedValue renders a calculated-field result using the
// definition's display format and decimal precision.
func FormatCalculatedValue(v *float64, format string, decimals int) string {
	if v == nil {
		return "-"
	}
	if decimals < 0 {
		decimals = 2
	}

	switch format {
	case "percent":
		return fmt.Sprintf("%.*f%%", decimals, *v)
	case "currency":
		return "$" + formatGrouped(*v, decimals)
	default: // "number"
		return formatGrouped(*v, decimals)
	}
}

// formatGrouped formats a number with comma thousand separators and a fixed
// number of decimal places.
func formatGrouped(v float64, decimals int) string {
	s := fmt.Sprintf("%.*f", decimals, v)

	negative := strings.HasPrefix(s, "-")
	if negative {
		s = s[1:]
	}

	intPart := s
	decPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, decPart = s[:i], s[i:]
	}

	if len(intPart) > 3 {
		var parts []string
		for len(intPart) > 3 {
			parts = append([]string{intPart[len(intPart)-3:]}, parts...)
			intPart = intPart[:len(intPart)-3]
		}
		parts = append([]string{intPart}, parts...)
		intPart = strings.Join(parts, ",")
	}

	out := intPart + decPart
	if negative {
		out = "-" + out
	}
	return out
}

// AggregationLabel returns a human-readable label for an aggregation selector.
func AggregationLabel(fn string) string {
	switch fn {
	case AggSum:
		return "Sum"
	case AggAvg:
		return "Average"
	case AggMin:
		return "Min"
	case AggMax:
		return "Max"
	case AggCount:
		return "Count"
	case AggCountDistinct:
		return "Distinct"
	case AggMedian:
		return "Median"
	case AggStdDev:
		return "Std Dev"
	case AggPercentOfTotal:
		return "% of Total"
	case AggCustom:
		return "Custom"
	default:
		return "Sum"
	}
}
