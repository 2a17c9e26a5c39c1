package helpers

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crosstab-org/crosstab/pivot"
)

func TestParseCSV(t *testing.T) {
	data := []byte("region, sales ,note\nNorth,100,ok\nSouth,,skip me not\nEast,abc,\n")

	records, err := ParseCSV(data)
	require.NoError(t, err)
	require.Len(t, records, 3)

	require.Equal(t, "North", records[0]["region"])
	require.Equal(t, 100.0, records[0]["sales"], "numeric cells parse to float64")
	require.Equal(t, "ok", records[0]["note"])

	require.Nil(t, records[1]["sales"], "blank cells become nil")
	require.Equal(t, "abc", records[2]["sales"], "non-numeric cells stay strings")
	require.Nil(t, records[2]["note"])
}

func TestParseCSVSkipsMalformedRows(t *testing.T) {
	data := []byte("a,b\n1,2\n5,6,7\n3,4\n")

	records, err := ParseCSV(data)
	require.NoError(t, err)
	require.Len(t, records, 2, "the row with a stray extra field is dropped")
	require.Equal(t, 1.0, records[0]["a"])
	require.Equal(t, 3.0, records[1]["a"])
}

func TestParseCSVEmptyInput(t *testing.T) {
	_, err := ParseCSV(nil)
	require.Error(t, err, "a missing header row is an error")
}

func TestResultToCSV(t *testing.T) {
	records := []pivot.Record{
		{"region": "North", "quarter": "Q1", "sales": 100.0},
		{"region": "North", "quarter": "Q2", "sales": 200.0},
		{"region": "South", "quarter": "Q1", "sales": 50.0},
	}
	cfg := pivot.NewConfig()
	cfg.AddRowField("region")
	cfg.AddColumnField("quarter")
	cfg.AddValueField(pivot.ValueField{Field: "sales", Aggregation: pivot.AggSum})

	res := pivot.ComputePivot(records, cfg)
	require.NotNil(t, res)

	rows := ResultToCSV(res)
	require.Equal(t, [][]string{
		{"", "Q1", "Q2", "Total"},
		{"North", "100.0000", "200.0000", "300.0000"},
		{"South", "50.0000", "-", "50.0000"},
		{"Total", "150.0000", "200.0000", "350.0000"},
	}, rows)

	width := len(rows[0])
	for _, row := range rows {
		require.Len(t, row, width, "export is rectangular")
	}
}

func TestResultToCSVWithoutTotals(t *testing.T) {
	records := []pivot.Record{
		{"region": "North", "sales": 100.0},
		{"region": "South", "sales": 50.0},
	}
	cfg := pivot.NewConfig()
	cfg.ShowRowTotals = false
	cfg.ShowColumnTotals = false
	cfg.AddRowField("region")
	cfg.AddValueField(pivot.ValueField{Field: "sales", Aggregation: pivot.AggSum})

	res := pivot.ComputePivot(records, cfg)
	rows := ResultToCSV(res)
	require.Equal(t, [][]string{
		{"", "sales (Sum)"},
		{"North", "100.0000"},
		{"South", "50.0000"},
	}, rows)
}

func TestResultToCSVNilResult(t *testing.T) {
	require.Nil(t, ResultToCSV(nil))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, [][]string{{"a", "b"}, {"1", "2"}}))
	require.Equal(t, "a,b\n1,2\n", buf.String())
}
