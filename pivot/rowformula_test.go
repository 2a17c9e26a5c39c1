package pivot

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// ============================================================================
// ROW-LEVEL FORMULAS
// ============================================================================

func TestParseSimpleFormula(t *testing.T) {
	require.Equal(t, []string{"sales", "units"}, ParseSimpleFormula("sales / units"))
	require.Equal(t, []string{"a", "b", "c"}, ParseSimpleFormula("(a + b) * c"))
}

func TestParseSimpleFormulaExcludesKeywords(t *testing.T) {
	require.Equal(t, []string{"flag"}, ParseSimpleFormula("flag + true - false + null"))
}

func TestParseSimpleFormulaDeduplicates(t *testing.T) {
	require.Equal(t, []string{"x"}, ParseSimpleFormula("x * x + X"))
}

func TestEvaluateSimpleFormula(t *testing.T) {
	rec := Record{"sales": 120.0, "units": 4.0}
	got, ok := EvaluateSimpleFormula("sales / units", rec)
	require.True(t, ok)
	require.Equal(t, 30.0, got)
}

func TestEvaluateSimpleFormulaCaseInsensitiveFields(t *testing.T) {
	rec := Record{"Sales": 120.0, "UNITS": "4"}
	got, ok := EvaluateSimpleFormula("sales / units", rec)
	require.True(t, ok)
	require.Equal(t, 30.0, got)
}

func TestEvaluateSimpleFormulaNullRows(t *testing.T) {
	formula := "sales / units"

	cases := []Record{
		{"sales": 120.0},                     // missing field
		{"sales": 120.0, "units": nil},       // null field
		{"sales": 120.0, "units": ""},        // blank field
		{"sales": 120.0, "units": "n/a"},     // non-numeric field
		{"sales": 120.0, "units": true},      // boolean is not numeric
	}
	for _, rec := range cases {
		_, ok := EvaluateSimpleFormula(formula, rec)
		require.False(t, ok, "record %v should yield null", rec)
	}
}

func TestEvaluateSimpleFormulaSimilarFieldNames(t *testing.T) {
	rec := Record{"unit": 100.0, "units": 5.0}
	got, ok := EvaluateSimpleFormula("unit / units", rec)
	require.True(t, ok)
	require.Equal(t, 20.0, got)
}

func TestValidateSimpleFormula(t *testing.T) {
	fields := []string{"sales", "units"}

	require.NoError(t, ValidateSimpleFormula("sales / units", fields))
	require.NoError(t, ValidateSimpleFormula("SALES * 2", fields))

	require.ErrorIs(t, ValidateSimpleFormula("", fields), ErrEmptyFormula)
	require.ErrorIs(t, ValidateSimpleFormula("1 + 2", fields), ErrNoReferences)
	require.ErrorIs(t, ValidateSimpleFormula("sales / missing", fields), ErrUnknownField)
	require.ErrorIs(t, ValidateSimpleFormula("sales; units", fields), ErrUnsafeFormula)
}
