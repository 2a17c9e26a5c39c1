package pivot

// ============================================================================
// PIVOT ENGINE TYPES — Cross-Tabulation over Flat Records
// ============================================================================
// Record is a raw field→value map; the engine never mutates it.
// Config declares the cross-tabulation; Result is the render-ready output.
// The engine has no I/O — consumers feed records in and read Result out.
// ============================================================================

// Record is a single flat data row. Values may be numbers (float64, int),
// strings, booleans, or nil. Absent fields are simply missing keys.
type Record map[string]any

// Aggregation selectors recognized by Aggregate.
const (
	AggSum            = "sum"
	AggAvg            = "avg"
	AggMin            = "min"
	AggMax            = "max"
	AggCount          = "count"
	AggCountDistinct  = "countDistinct"
	AggMedian         = "median"
	AggStdDev         = "stdDev"
	AggPercentOfTotal = "percentOfTotal"
	AggCustom         = "custom"
)

// CalcPrefix marks a value-field reference into the calculated-field
// namespace: "calc:<id>".
const CalcPrefix = "calc:"

// keySep joins constituent field values into a composite grouping key.
// The unit separator cannot appear in ordinary field text.
const keySep = "\x1f"

// Sentinel key and label used for an axis with no grouping fields.
const (
	sentinelKey   = "all"
	sentinelLabel = "Total"
)

// ============================================================================
// CONFIGURATION VALUE OBJECTS
// ============================================================================

// ValueField pairs a field reference with an aggregation selector.
// Field may reference a calculated field via the "calc:" prefix.
// When Aggregation is "custom", CustomName selects a strategy registered
// through WithCustomAggregation, and Label/Symbol control display.
type ValueField struct {
	Field       string `json:"field"`
	Aggregation string `json:"aggregation"`
	CustomName  string `json:"customName,omitempty"`
	Label       string `json:"label,omitempty"`
	Symbol      string `json:"symbol,omitempty"`
}

// CalculatedField is a named formula deriving a measure from other fields.
// Row-level formulas ("sales/units") feed the grouping stage per record;
// aggregate-level formulas ("SUM(revenue)/SUM(units)*100") are evaluated
// against aggregated bucket results.
type CalculatedField struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Formula  string `json:"formula"`
	Format   string `json:"format"`   // "number", "percent", "currency"
	Decimals int    `json:"decimals"` // display precision
}

// ============================================================================
// RESULT TYPES
// ============================================================================

// Cell is a single aggregated grid entry. Value is nil exactly when the
// underlying aggregation had no eligible numeric input.
type Cell struct {
	Value     *float64 `json:"value"`
	Count     int      `json:"count"`
	Formatted string   `json:"formattedValue"`
}

// Result is the fully materialized cross-tabulation.
//
// Structural invariant: Data is rectangular. len(Data) == len(RowHeaders),
// and every row holds len(ColKeys) * number-of-value-fields cells aligned
// with the flattened header grid.
type Result struct {
	Headers    [][]string `json:"headers"`
	RowHeaders [][]string `json:"rowHeaders"`
	Data       [][]Cell   `json:"data"`

	RowTotals    []Cell `json:"rowTotals,omitempty"`
	ColumnTotals []Cell `json:"columnTotals,omitempty"`
	GrandTotal   *Cell  `json:"grandTotal,omitempty"`

	// Sorted composite keys backing the grid, for consumers that need to
	// map cells back to groupings (drill-down, export).
	RowKeys []string `json:"rowKeys"`
	ColKeys []string `json:"colKeys"`
}
