// Package crosstab provides a pivot-table computation engine.
// Flat records in, fully materialized cross-tabulation out.
//
// Usage:
//
//	import "github.com/crosstab-org/crosstab/pivot"
//
//	cfg := pivot.NewConfig()
//	cfg.AddRowField("region")
//	cfg.AddColumnField("month")
//	cfg.AddValueField(pivot.ValueField{Field: "sales", Aggregation: pivot.AggSum})
//
//	result := pivot.ComputePivot(records, cfg)
//
// The engine takes a Config (built by a host UI or CLI flags) and records
// (flat field→value maps), and returns multi-level column headers, row
// headers, a rectangular grid of aggregated cells, and row/column/grand
// totals. All computation is local and pure — no I/O, no shared state.
//
// Field classification lives in the schema package, configuration
// persistence in the store package.
package crosstab
