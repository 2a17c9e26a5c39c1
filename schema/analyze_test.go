package schema

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crosstab-org/crosstab/pivot"
)

func TestAnalyzeFieldsEmptyDataset(t *testing.T) {
	stats := AnalyzeFields(nil)
	require.NotNil(t, stats)
	require.Empty(t, stats)
}

func TestAnalyzeFieldsOrdering(t *testing.T) {
	records := []pivot.Record{
		{"zeta": 1.0, "alpha": "x"},
		{"mid": true},
	}
	stats := AnalyzeFields(records)
	require.Equal(t, []string{"alpha", "mid", "zeta"}, FieldNames(stats))
}

func TestAnalyzeFieldTypes(t *testing.T) {
	records := []pivot.Record{
		{"amount": 10.0, "name": "widget", "active": true, "shipped": "2024-01-15"},
		{"amount": "12.5", "name": "gadget", "active": false, "shipped": "2024-02-20"},
		{"amount": 7, "name": "gizmo", "active": true, "shipped": "2024-03-01"},
	}

	byName := map[string]FieldStats{}
	for _, s := range AnalyzeFields(records) {
		byName[s.Field] = s
	}

	require.Equal(t, TypeNumber, byName["amount"].Type)
	require.True(t, byName["amount"].IsNumeric)
	require.Equal(t, TypeString, byName["name"].Type)
	require.False(t, byName["name"].IsNumeric)
	require.Equal(t, TypeBoolean, byName["active"].Type)
	require.Equal(t, TypeDate, byName["shipped"].Type)
}

func TestAnalyzeFieldNumericThreshold(t *testing.T) {
	// 8 of 10 numeric meets the 80% threshold; 7 of 10 does not.
	mostlyNumeric := make([]pivot.Record, 0, 10)
	for i := 0; i < 8; i++ {
		mostlyNumeric = append(mostlyNumeric, pivot.Record{"v": float64(i)})
	}
	mostlyNumeric = append(mostlyNumeric, pivot.Record{"v": "n/a"}, pivot.Record{"v": "?"})
	require.Equal(t, TypeNumber, AnalyzeField(mostlyNumeric, "v").Type)

	mixed := make([]pivot.Record, 0, 10)
	for i := 0; i < 7; i++ {
		mixed = append(mixed, pivot.Record{"v": float64(i)})
	}
	mixed = append(mixed, pivot.Record{"v": "a"}, pivot.Record{"v": "b"}, pivot.Record{"v": "c"})
	require.Equal(t, TypeString, AnalyzeField(mixed, "v").Type)
}

func TestAnalyzeFieldThresholdIsRatioBased(t *testing.T) {
	// Sample sizes not divisible by 5 must not round the cutoff down:
	// 2 of 3 (66.7%) and 7 of 9 (77.8%) are both below 80%.
	twoOfThree := []pivot.Record{{"v": 1.0}, {"v": 2.0}, {"v": "oops"}}
	stats := AnalyzeField(twoOfThree, "v")
	require.Equal(t, TypeString, stats.Type)
	require.False(t, stats.IsNumeric)

	sevenOfNine := make([]pivot.Record, 0, 9)
	for i := 0; i < 7; i++ {
		sevenOfNine = append(sevenOfNine, pivot.Record{"v": float64(i)})
	}
	sevenOfNine = append(sevenOfNine, pivot.Record{"v": "x"}, pivot.Record{"v": "y"})
	require.Equal(t, TypeString, AnalyzeField(sevenOfNine, "v").Type)

	// 4 of 5 (80%) sits exactly on the threshold and qualifies.
	fourOfFive := []pivot.Record{
		{"v": 1.0}, {"v": 2.0}, {"v": 3.0}, {"v": 4.0}, {"v": "oops"},
	}
	require.Equal(t, TypeNumber, AnalyzeField(fourOfFive, "v").Type)
}

func TestAnalyzeFieldSkipsNullsAndBlanks(t *testing.T) {
	records := []pivot.Record{
		{"v": nil},
		{"v": "   "},
		{},
		{"v": 42.0},
	}
	stats := AnalyzeField(records, "v")
	require.Equal(t, TypeNumber, stats.Type)
	require.Equal(t, 1, stats.UniqueCount)
}

func TestAnalyzeFieldAllNull(t *testing.T) {
	records := []pivot.Record{{"v": nil}, {"v": ""}}
	stats := AnalyzeField(records, "v")
	require.Equal(t, TypeString, stats.Type, "no usable samples defaults to string")
	require.Zero(t, stats.UniqueCount)
}

func TestAnalyzeFieldSampleBound(t *testing.T) {
	records := make([]pivot.Record, 0, SampleSize+50)
	for i := 0; i < SampleSize+50; i++ {
		records = append(records, pivot.Record{"id": fmt.Sprintf("row-%d", i)})
	}
	stats := AnalyzeField(records, "id")
	require.Equal(t, SampleSize, stats.UniqueCount, "sampling stops at the cap")
}
