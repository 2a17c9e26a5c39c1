package pivot

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ============================================================================
// ROW-LEVEL FORMULAS — Per-Record Derived Measures
// ============================================================================
// "sales / units" computes a virtual measure per record before aggregation.
// Identifiers are bare field names resolved case-insensitively against the
// record. A missing, blank, or non-numeric referenced field nulls the row —
// it simply contributes nothing to the bucket.
// ============================================================================

var identPattern = regexp.MustCompile(`\b[A-Za-z_][A-Za-z0-9_]*\b`)

// Literal keywords that are never treated as field references.
var formulaKeywords = map[string]bool{
	"true":  true,
	"false": true,
	"null":  true,
}

// ParseSimpleFormula extracts bare field-name identifiers from a row-level
// formula, in order of appearance, deduplicated.
func ParseSimpleFormula(formula string) []string {
	matches := identPattern.FindAllString(formula, -1)
	if len(matches) == 0 {
		return nil
	}

	var fields []string
	seen := make(map[string]bool)
	for _, m := range matches {
		lower := strings.ToLower(m)
		if formulaKeywords[lower] || seen[lower] {
			continue
		}
		seen[lower] = true
		fields = append(fields, m)
	}
	return fields
}

// EvaluateSimpleFormula resolves each identifier against the record
// (case-insensitive), substitutes the numeric values, and evaluates the
// arithmetic. ok is false when any referenced field is missing, blank, or
// non-numeric for this record, or the expression is unsafe or non-finite.
func EvaluateSimpleFormula(formula string, rec Record) (float64, bool) {
	if strings.TrimSpace(formula) == "" || containsStatementBreak(formula) {
		return 0, false
	}

	fields := ParseSimpleFormula(formula)
	if len(fields) == 0 {
		return 0, false
	}

	// Longest identifiers substitute first so "unit" never clobbers "units".
	ordered := make([]string, len(fields))
	copy(ordered, fields)
	sort.Slice(ordered, func(i, j int) bool { return len(ordered[i]) > len(ordered[j]) })

	expr := formula
	for _, field := range ordered {
		raw, found := resolveField(rec, field)
		if !found {
			return 0, false
		}
		v, numeric := ParseNumeric(raw)
		if !numeric {
			return 0, false
		}
		pat := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(field) + `\b`)
		expr = pat.ReplaceAllString(expr, formatOperand(v))
	}

	v, err := evalArithmetic(expr)
	if err != nil {
		return 0, false
	}
	return v, isFinite(v)
}

// resolveField looks up a field on the record by case-insensitive name.
// An exact match wins over a case-folded one.
func resolveField(rec Record, name string) (any, bool) {
	if v, ok := rec[name]; ok {
		return v, true
	}
	lower := strings.ToLower(name)
	for k, v := range rec {
		if strings.ToLower(k) == lower {
			return v, true
		}
	}
	return nil, false
}

// ValidateSimpleFormula statically checks a row-level formula against the
// known field set, mirroring ValidateFormula for the aggregate grammar.
func ValidateSimpleFormula(formula string, fields []string) error {
	if strings.TrimSpace(formula) == "" {
		return ErrEmptyFormula
	}
	if containsStatementBreak(formula) {
		return ErrUnsafeFormula
	}

	refs := ParseSimpleFormula(formula)
	if len(refs) == 0 {
		return fmt.Errorf("%w: expected bare field names", ErrNoReferences)
	}

	known := make(map[string]bool, len(fields))
	for _, f := range fields {
		known[strings.ToLower(f)] = true
	}
	for _, ref := range refs {
		if !known[strings.ToLower(ref)] {
			return fmt.Errorf("%w: %q", ErrUnknownField, ref)
		}
	}

	// Dry run: every reference becomes 1.
	dummy := Record{}
	for _, ref := range refs {
		dummy[ref] = 1.0
	}
	if _, ok := EvaluateSimpleFormula(formula, dummy); !ok {
		return ErrUnsafeFormula
	}
	return nil
}
