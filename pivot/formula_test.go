package pivot

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// ============================================================================
// AGGREGATE-LEVEL FORMULAS
// ============================================================================

func TestParseFormula(t *testing.T) {
	refs := ParseFormula("SUM(revenue) / SUM(units)")
	require.Equal(t, []FormulaRef{
		{Fn: "SUM", Field: "revenue"},
		{Fn: "SUM", Field: "units"},
	}, refs)
}

func TestParseFormulaDeduplicatesAndUppercases(t *testing.T) {
	refs := ParseFormula("sum(a) + AVG(b) - Sum(a)")
	require.Equal(t, []FormulaRef{
		{Fn: "SUM", Field: "a"},
		{Fn: "AVG", Field: "b"},
	}, refs)
}

func TestParseFormulaNoReferences(t *testing.T) {
	require.Nil(t, ParseFormula("1 + 2"))
	require.Nil(t, ParseFormula("TOTAL(x)"))
}

func TestEvaluateFormula(t *testing.T) {
	a, b := 100.0, 4.0
	got, ok := EvaluateFormula("SUM(a)/SUM(b)", map[string]*float64{
		"SUM(a)": &a,
		"SUM(b)": &b,
	})
	require.True(t, ok)
	require.Equal(t, 25.0, got)
}

func TestEvaluateFormulaNullPropagates(t *testing.T) {
	a := 100.0
	_, ok := EvaluateFormula("SUM(a)/SUM(b)", map[string]*float64{
		"SUM(a)": &a,
		"SUM(b)": nil,
	})
	require.False(t, ok, "a null aggregate nulls the whole expression")

	_, ok = EvaluateFormula("SUM(a)/SUM(b)", map[string]*float64{"SUM(a)": &a})
	require.False(t, ok, "a missing aggregate nulls the whole expression")
}

func TestEvaluateFormulaNonFiniteIsNull(t *testing.T) {
	a, zero := 100.0, 0.0
	_, ok := EvaluateFormula("SUM(a)/SUM(b)", map[string]*float64{
		"SUM(a)": &a,
		"SUM(b)": &zero,
	})
	require.False(t, ok)
}

func TestEvaluateFormulaNegativeSubstitution(t *testing.T) {
	a, b := -50.0, 2.0
	got, ok := EvaluateFormula("SUM(a) * SUM(b)", map[string]*float64{
		"SUM(a)": &a,
		"SUM(b)": &b,
	})
	require.True(t, ok)
	require.Equal(t, -100.0, got)
}

func TestEvaluateFormulaSimilarFieldNames(t *testing.T) {
	ab, abc := 2.0, 30.0
	got, ok := EvaluateFormula("SUM(abc) / SUM(ab)", map[string]*float64{
		"SUM(abc)": &abc,
		"SUM(ab)":  &ab,
	})
	require.True(t, ok)
	require.Equal(t, 15.0, got)
}

func TestEvaluateFormulaRejectsStatements(t *testing.T) {
	a := 1.0
	vals := map[string]*float64{"SUM(a)": &a}
	_, ok := EvaluateFormula("SUM(a); SUM(a)", vals)
	require.False(t, ok)
	_, ok = EvaluateFormula("SUM(a)\nSUM(a)", vals)
	require.False(t, ok)
}

func TestValidateFormula(t *testing.T) {
	fields := []string{"revenue", "units"}

	require.NoError(t, ValidateFormula("SUM(revenue) / SUM(units) * 100", fields))
	require.NoError(t, ValidateFormula("avg(Revenue)", fields), "field matching is case-insensitive")

	require.ErrorIs(t, ValidateFormula("", fields), ErrEmptyFormula)
	require.ErrorIs(t, ValidateFormula("   ", fields), ErrEmptyFormula)
	require.ErrorIs(t, ValidateFormula("revenue + units", fields), ErrNoReferences)
	require.ErrorIs(t, ValidateFormula("SUM(x)", []string{"y"}), ErrUnknownField)
	require.ErrorIs(t, ValidateFormula("SUM(revenue) ^ 2", fields), ErrUnsafeFormula)
}
