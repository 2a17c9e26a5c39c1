package pivot

// ============================================================================
// RESULT BUILDER — Buckets → Materialized Cross-Tab
// ============================================================================
// Builds the header matrix, row headers, the rectangular cell grid, and the
// row/column/grand totals from grouped buckets. Stateless pure transform.
//
// Header construction: one level per column field, each entry repeated per
// value field so header cells align with the flattened data columns. A
// trailing level names the value fields whenever more than one is
// configured, or no column fields exist to carry a header at all.
//
// Totals use only the FIRST configured value field's aggregation, applied to
// the union of that field's raw bucket values. Secondary value fields get
// cells but no totals.
// ============================================================================

func buildResult(g *grouped, cfg Config) *Result {
	nv := len(g.plans)

	res := &Result{
		RowKeys: g.rowKeys,
		ColKeys: g.colKeys,
	}

	res.Headers = buildHeaders(g, cfg)
	res.RowHeaders = buildRowHeaders(g, cfg)

	// Cell grid: sorted row keys × sorted column keys × value fields.
	res.Data = make([][]Cell, 0, len(g.rowKeys))
	for _, rowKey := range g.rowKeys {
		row := make([]Cell, 0, len(g.colKeys)*nv)
		for _, colKey := range g.colKeys {
			for p := range g.plans {
				row = append(row, makeCell(g, p, rowKey, colKey))
			}
		}
		res.Data = append(res.Data, row)
	}

	// Row totals: first value field only, and only when a row actually
	// spans more than one column.
	if cfg.ShowRowTotals && len(g.colKeys) > 1 {
		res.RowTotals = make([]Cell, 0, len(g.rowKeys))
		for _, rowKey := range g.rowKeys {
			res.RowTotals = append(res.RowTotals, aggregateCell(g, 0, g.rowUnion(0, rowKey)))
		}
	}

	// Column totals mirror row totals: one cell per (column key, value-field
	// slot) in the header grid, every slot carrying the first value field's
	// aggregation over that column's union.
	if cfg.ShowColumnTotals && len(g.rowKeys) > 1 {
		res.ColumnTotals = make([]Cell, 0, len(g.colKeys)*nv)
		for _, colKey := range g.colKeys {
			total := aggregateCell(g, 0, g.colUnion(0, colKey))
			for range g.plans {
				res.ColumnTotals = append(res.ColumnTotals, total)
			}
		}
	}

	if cfg.ShowRowTotals && cfg.ShowColumnTotals {
		grand := aggregateCell(g, 0, g.allValues[0])
		res.GrandTotal = &grand
	}

	return res
}

// ============================================================================
// HEADERS
// ============================================================================

func buildHeaders(g *grouped, cfg Config) [][]string {
	nv := len(g.plans)
	var headers [][]string

	for level := range cfg.ColumnFields {
		entries := make([]string, 0, len(g.colKeys)*nv)
		for _, colKey := range g.colKeys {
			segs := splitKey(colKey)
			seg := ""
			if level < len(segs) {
				seg = segs[level]
			}
			repeat := 1
			if nv > 1 {
				repeat = nv
			}
			for n := 0; n < repeat; n++ {
				entries = append(entries, seg)
			}
		}
		headers = append(headers, entries)
	}

	if nv > 1 || len(cfg.ColumnFields) == 0 {
		entries := make([]string, 0, len(g.colKeys)*nv)
		for range g.colKeys {
			for p := range g.plans {
				entries = append(entries, valueFieldLabel(g.plans[p]))
			}
		}
		headers = append(headers, entries)
	}

	return headers
}

func buildRowHeaders(g *grouped, cfg Config) [][]string {
	out := make([][]string, 0, len(g.rowKeys))
	for _, rowKey := range g.rowKeys {
		if len(cfg.RowFields) == 0 {
			out = append(out, []string{sentinelLabel})
			continue
		}
		out = append(out, splitKey(rowKey))
	}
	return out
}

// valueFieldLabel renders "<display name> (<aggregation label>)".
// Calculated references resolve to their configured display name; custom
// aggregations prefer the value field's injected label.
func valueFieldLabel(p valuePlan) string {
	name := p.vf.Field
	if p.isCalc && p.calc.Name != "" {
		name = p.calc.Name
	}

	agg := AggregationLabel(p.vf.Aggregation)
	if p.vf.Aggregation == AggCustom && p.vf.Label != "" {
		agg = p.vf.Label
	}
	return name + " (" + agg + ")"
}

// ============================================================================
// CELLS
// ============================================================================

// makeCell materializes one grid cell for plan p at (rowKey, colKey).
func makeCell(g *grouped, p int, rowKey, colKey string) Cell {
	plan := g.plans[p]

	if plan.isCalc && len(plan.aggRefs) > 0 {
		return makeCalculatedCell(g, p, rowKey, colKey)
	}

	return aggregateCell(g, p, g.bucket(p, rowKey, colKey))
}

// aggregateCell runs a plan's aggregation over a bucket and formats it.
func aggregateCell(g *grouped, p int, values []float64) Cell {
	plan := g.plans[p]

	in := AggregateInput{
		GrandTotal: g.grandTotals[p],
		Custom:     plan.strategy,
		AllValues:  g.allValues[p],
	}
	v, ok := Aggregate(values, plan.vf.Aggregation, in)

	cell := Cell{Count: len(values)}
	if ok {
		cell.Value = &v
	}
	cell.Formatted = formatCell(plan, cell.Value)
	return cell
}

// makeCalculatedCell evaluates an aggregate-level formula for one bucket:
// each FN(field) reference aggregates the field's raw values collected for
// this bucket, then the arithmetic combines them.
func makeCalculatedCell(g *grouped, p int, rowKey, colKey string) Cell {
	plan := g.plans[p]

	values := make(map[string]*float64, len(plan.aggRefs))
	for _, ref := range plan.aggRefs {
		bucket := g.refBucket(p, ref.Key(), rowKey, colKey)
		if v, ok := Aggregate(bucket, refAggregation(ref.Fn), AggregateInput{}); ok {
			values[ref.Key()] = &v
		} else {
			values[ref.Key()] = nil
		}
	}

	count := 0
	if cols, ok := g.bucketCounts[p][rowKey]; ok {
		count = cols[colKey]
	}

	cell := Cell{Count: count}
	if v, ok := EvaluateFormula(plan.calc.Formula, values); ok {
		cell.Value = &v
	}
	cell.Formatted = formatCell(plan, cell.Value)
	return cell
}

// refAggregation maps a formula function name to an aggregation selector.
func refAggregation(fn string) string {
	switch fn {
	case "SUM":
		return AggSum
	case "AVG":
		return AggAvg
	case "COUNT":
		return AggCount
	case "MIN":
		return AggMin
	case "MAX":
		return AggMax
	default:
		return AggSum
	}
}

// formatCell picks the display format for a cell: calculated fields use
// their configured format/precision, custom aggregations carry their symbol,
// everything else follows the aggregation's default formatting.
func formatCell(plan valuePlan, v *float64) string {
	if plan.isCalc {
		return FormatCalculatedValue(v, plan.calc.Format, plan.calc.Decimals)
	}

	formatted := FormatAggregatedValue(v, plan.vf.Aggregation)
	if v != nil && plan.vf.Aggregation == AggCustom && plan.vf.Symbol != "" {
		formatted = plan.vf.Symbol + formatted
	}
	return formatted
}
