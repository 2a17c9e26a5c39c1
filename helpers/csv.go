package helpers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/crosstab-org/crosstab/pivot"
)

// ============================================================================
// CSV HELPERS — Raw Bytes ↔ Records / Results
// ============================================================================
// The consumer reads the CSV from wherever it lives (file, S3, clipboard).
// ParseCSV converts the raw bytes into generic Records; ResultToCSV flattens
// a computed pivot back into rows for export.
// ============================================================================

// ParseCSV parses CSV bytes into Records. The first row names the fields.
// Numeric-looking cells are stored as float64, blank cells as nil, and
// everything else as the raw string — the engine re-parses per value field
// anyway, so this is a convenience, not a contract.
func ParseCSV(data []byte) ([]pivot.Record, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	var records []pivot.Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // skip malformed rows
		}

		rec := make(pivot.Record, len(headers))
		for i, h := range headers {
			if i >= len(row) || h == "" {
				continue
			}
			cell := strings.TrimSpace(row[i])
			if cell == "" {
				rec[h] = nil
				continue
			}
			if f, err := strconv.ParseFloat(cell, 64); err == nil {
				rec[h] = f
				continue
			}
			rec[h] = cell
		}
		records = append(records, rec)
	}

	return records, nil
}

// ResultToCSV flattens a pivot result into CSV rows: header levels first
// (padded past the row-header columns), then one row per row key with its
// formatted cells, then totals where present.
func ResultToCSV(res *pivot.Result) [][]string {
	if res == nil {
		return nil
	}

	rowHeaderWidth := 1
	if len(res.RowHeaders) > 0 {
		rowHeaderWidth = len(res.RowHeaders[0])
	}
	hasRowTotals := len(res.RowTotals) > 0

	var out [][]string

	for _, level := range res.Headers {
		row := make([]string, 0, rowHeaderWidth+len(level)+1)
		for i := 0; i < rowHeaderWidth; i++ {
			row = append(row, "")
		}
		row = append(row, level...)
		if hasRowTotals {
			row = append(row, "Total")
		}
		out = append(out, row)
	}

	for i, cells := range res.Data {
		row := make([]string, 0, rowHeaderWidth+len(cells)+1)
		row = append(row, res.RowHeaders[i]...)
		for _, c := range cells {
			row = append(row, c.Formatted)
		}
		if hasRowTotals {
			row = append(row, res.RowTotals[i].Formatted)
		}
		out = append(out, row)
	}

	if len(res.ColumnTotals) > 0 {
		row := make([]string, 0, rowHeaderWidth+len(res.ColumnTotals)+1)
		row = append(row, "Total")
		for i := 1; i < rowHeaderWidth; i++ {
			row = append(row, "")
		}
		for _, c := range res.ColumnTotals {
			row = append(row, c.Formatted)
		}
		// The grand total sits in the row-totals column, when there is one.
		if hasRowTotals && res.GrandTotal != nil {
			row = append(row, res.GrandTotal.Formatted)
		}
		out = append(out, row)
	}

	return out
}

// WriteCSV writes rows to w in CSV encoding.
func WriteCSV(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
