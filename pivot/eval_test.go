package pivot

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvalArithmetic(t *testing.T) {
	tests := []struct {
		expr string
		want float64
	}{
		{"1 + 2", 3},
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"100 / 4 / 5", 5},
		{"10 - 4 - 3", 3},
		{"-3 + 5", 2},
		{"2 * (3 + (4 - 1))", 12},
		{"  7  ", 7},
		{"0.5 * 4", 2},
		{"(0-3.5) * 2", -7},
	}
	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			got, err := evalArithmetic(tc.expr)
			require.NoError(t, err)
			require.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestEvalArithmeticRejectsUnsafeInput(t *testing.T) {
	bad := []string{
		"1 + x",
		"len(3)",
		"1; 2",
		"2 ** 3",
		"",
		"(1 + 2",
		"1 + ",
		"3 4",
		`"abc"`,
	}
	for _, expr := range bad {
		t.Run(expr, func(t *testing.T) {
			_, err := evalArithmetic(expr)
			require.Error(t, err)
		})
	}
}

func TestEvalArithmeticDivisionByZeroIsInfinite(t *testing.T) {
	got, err := evalArithmetic("1 / 0")
	require.NoError(t, err)
	require.False(t, isFinite(got), "callers reject non-finite results")
}
