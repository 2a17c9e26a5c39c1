package pivot

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
)

// ============================================================================
// AGGREGATE-LEVEL FORMULAS — Calculated Fields over Aggregated Results
// ============================================================================
// "SUM(revenue) / SUM(units) * 100" composes already-aggregated values.
// ParseFormula extracts the FN(field) references; EvaluateFormula substitutes
// each with its precomputed aggregate and hands the rest to evalArithmetic.
// A null input anywhere nulls the whole expression.
// ============================================================================

// Formula reference functions recognized by ParseFormula.
var formulaFuncs = []string{"SUM", "AVG", "COUNT", "MIN", "MAX"}

var formulaRefPattern = regexp.MustCompile(`(?i)\b(SUM|AVG|COUNT|MIN|MAX)\s*\(\s*([^()]+?)\s*\)`)

// FormulaRef is one aggregate reference extracted from a formula.
type FormulaRef struct {
	Fn    string // canonical upper-case function name, e.g. "SUM"
	Field string // referenced field name, e.g. "revenue"
}

// Key returns the canonical substitution key, e.g. "SUM(revenue)".
func (r FormulaRef) Key() string {
	return r.Fn + "(" + r.Field + ")"
}

// Validation errors reported by ValidateFormula and ValidateSimpleFormula.
var (
	ErrEmptyFormula  = errors.New("pivot: formula is empty")
	ErrNoReferences  = errors.New("pivot: formula contains no recognized references")
	ErrUnknownField  = errors.New("pivot: formula references unknown field")
	ErrUnsafeFormula = errors.New("pivot: formula contains unsupported syntax")
)

// ParseFormula extracts aggregate references from a formula, in order of
// appearance, deduplicated.
func ParseFormula(formula string) []FormulaRef {
	matches := formulaRefPattern.FindAllStringSubmatch(formula, -1)
	if len(matches) == 0 {
		return nil
	}

	refs := make([]FormulaRef, 0, len(matches))
	seen := make(map[string]bool)
	for _, m := range matches {
		ref := FormulaRef{Fn: strings.ToUpper(m[1]), Field: m[2]}
		if !seen[ref.Key()] {
			seen[ref.Key()] = true
			refs = append(refs, ref)
		}
	}
	return refs
}

// EvaluateFormula substitutes aggregated values into a formula and evaluates
// the resulting arithmetic. values is keyed by FormulaRef.Key (exact
// "FN(field)" spelling). ok is false when any referenced aggregate is nil,
// missing, or the expression is unsafe or non-finite.
func EvaluateFormula(formula string, values map[string]*float64) (float64, bool) {
	if strings.TrimSpace(formula) == "" || containsStatementBreak(formula) {
		return 0, false
	}

	refs := ParseFormula(formula)
	if len(refs) == 0 {
		return 0, false
	}

	expr := substituteRefs(formula, refs, values)
	if expr == "" {
		return 0, false
	}

	v, err := evalArithmetic(expr)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// substituteRefs replaces each reference occurrence with its numeric value.
// Longer keys substitute first so "SUM(ab)" never clobbers "SUM(abc)".
// Returns "" when any referenced value is absent or nil.
func substituteRefs(formula string, refs []FormulaRef, values map[string]*float64) string {
	ordered := make([]FormulaRef, len(refs))
	copy(ordered, refs)
	sort.Slice(ordered, func(i, j int) bool {
		return len(ordered[i].Key()) > len(ordered[j].Key())
	})

	expr := formula
	for _, ref := range ordered {
		v, present := values[ref.Key()]
		if !present || v == nil {
			return ""
		}
		// Re-match this specific reference case-insensitively, tolerating
		// whitespace variants of the same spelling.
		pat := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(ref.Fn) + `\s*\(\s*` + regexp.QuoteMeta(ref.Field) + `\s*\)`)
		expr = pat.ReplaceAllString(expr, formatOperand(*v))
	}
	return expr
}

// ValidateFormula statically checks a calculated-field formula against the
// known field set: non-empty, at least one recognized reference, every
// referenced field resolvable (case-insensitive), and a dry-run evaluation
// with all references set to 1 must succeed.
func ValidateFormula(formula string, fields []string) error {
	if strings.TrimSpace(formula) == "" {
		return ErrEmptyFormula
	}
	if containsStatementBreak(formula) {
		return ErrUnsafeFormula
	}

	refs := ParseFormula(formula)
	if len(refs) == 0 {
		return fmt.Errorf("%w: expected %s(field)", ErrNoReferences, strings.Join(formulaFuncs, "/"))
	}

	known := make(map[string]bool, len(fields))
	for _, f := range fields {
		known[strings.ToLower(f)] = true
	}
	for _, ref := range refs {
		if !known[strings.ToLower(ref.Field)] {
			return fmt.Errorf("%w: %q", ErrUnknownField, ref.Field)
		}
	}

	// Dry run with dummy values.
	dummy := make(map[string]*float64, len(refs))
	one := 1.0
	for _, ref := range refs {
		dummy[ref.Key()] = &one
	}
	if _, ok := EvaluateFormula(formula, dummy); !ok {
		return ErrUnsafeFormula
	}
	return nil
}
