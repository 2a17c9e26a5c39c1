package pivot

import (
	"log"
)

// ============================================================================
// PIVOT — Entry Point
// ============================================================================
// Pipeline:
//   1. Gate: records present, config ready — otherwise nil ("nothing to
//      render"), never an error.
//   2. Group records into (rowKey, colKey) buckets per value field.
//   3. Assemble headers, grid, and totals.
//
// The whole computation is a pure in-memory transform: no I/O, no shared
// state, safe to call concurrently with different inputs.
// ============================================================================

// ComputePivot computes a cross-tabulation of records per the configuration.
// Returns nil when records is empty or the configuration has no grouping
// axis or no value fields.
func ComputePivot(records []Record, cfg Config, opts ...Option) *Result {
	if len(records) == 0 {
		return nil
	}
	return ComputePivotView(NewSliceView(records), cfg, opts...)
}

// ComputePivotView is ComputePivot over any Dataset implementation —
// typically a DomainAdapter binding for typed structs.
func ComputePivotView(ds Dataset, cfg Config, opts ...Option) *Result {
	if ds == nil || ds.Len() == 0 || !cfg.IsReady() {
		return nil
	}

	engineCfg := applyOptions(opts)

	log.Printf("🔧 Crosstab: pivoting %d records — rows=%v, cols=%v, values=%d",
		ds.Len(), cfg.RowFields, cfg.ColumnFields, len(cfg.ValueFields))

	g := groupRecords(ds, cfg, engineCfg)
	return buildResult(g, cfg)
}
