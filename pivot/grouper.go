package pivot

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ============================================================================
// GROUPING ENGINE — Records → Buckets
// ============================================================================
// One pass over the dataset partitions every record into a (rowKey, colKey)
// bucket per configured value field. Buckets hold raw numeric values;
// aggregation happens later in the result builder.
//
// Per value field, per record:
//   - "calc:" references evaluate their row-level formula against the
//     record; null results contribute nothing.
//   - calculated fields written against aggregates ("SUM(a)/SUM(b)") instead
//     collect the referenced raw fields per bucket, for evaluation after
//     aggregation.
//   - plain fields parse numerically; on failure the record is skipped for
//     that value field, unless the aggregation is count/countDistinct, in
//     which case a placeholder 1 keeps non-numeric columns countable.
//
// Keys are deduplicated and sorted with the natural comparator, so output
// ordering is stable regardless of record input order.
// ============================================================================

// valuePlan is one value field resolved against the configuration.
type valuePlan struct {
	vf        ValueField
	calc      CalculatedField // resolved definition when vf.Field is "calc:"-namespaced
	isCalc    bool
	aggRefs   []FormulaRef // non-empty when the calc formula composes aggregates
	rowVirt   bool         // calc formula is a row-level derived measure
	strategy  Strategy     // resolved custom strategy, may be nil
	countLike bool         // count/countDistinct fallback applies
}

// grouped is the intermediate bucketed form consumed by the result builder.
type grouped struct {
	rowKeys []string
	colKeys []string
	plans   []valuePlan

	// buckets[p][rowKey][colKey] — raw values for plan p.
	buckets []map[string]map[string][]float64

	// refBuckets[p][refKey][rowKey][colKey] — raw values per aggregate
	// reference, only populated for aggregate-calculated plans.
	refBuckets []map[string]map[string]map[string][]float64

	// bucketCounts[p][rowKey][colKey] — records seen per bucket, used for
	// cell counts on aggregate-calculated plans.
	bucketCounts []map[string]map[string]int

	// Dataset-wide values and totals per plan, computed once to support
	// percentOfTotal and custom strategies without per-cell rescans.
	allValues   [][]float64
	grandTotals []*float64
}

// buildPlans resolves the configuration's value fields against calculated
// field definitions and the custom-strategy registry.
func buildPlans(cfg Config, engineCfg *config) []valuePlan {
	plans := make([]valuePlan, 0, len(cfg.ValueFields))
	for _, vf := range cfg.ValueFields {
		p := valuePlan{
			vf:        vf,
			countLike: vf.Aggregation == AggCount || vf.Aggregation == AggCountDistinct,
		}
		if strings.HasPrefix(vf.Field, CalcPrefix) {
			if cf, found := cfg.calculatedByRef(vf.Field); found {
				p.calc = cf
				p.isCalc = true
				if refs := ParseFormula(cf.Formula); len(refs) > 0 {
					p.aggRefs = refs
				} else {
					p.rowVirt = true
				}
			}
			// Unresolvable calc refs keep an empty plan: every bucket stays
			// empty and the column renders as null cells.
		}
		if vf.Aggregation == AggCustom && engineCfg.Strategies != nil {
			p.strategy = engineCfg.Strategies[vf.CustomName]
		}
		plans = append(plans, p)
	}
	return plans
}

// groupRecords partitions the dataset into buckets per the configuration.
func groupRecords(ds Dataset, cfg Config, engineCfg *config) *grouped {
	plans := buildPlans(cfg, engineCfg)

	g := &grouped{
		plans:        plans,
		buckets:      make([]map[string]map[string][]float64, len(plans)),
		refBuckets:   make([]map[string]map[string]map[string][]float64, len(plans)),
		bucketCounts: make([]map[string]map[string]int, len(plans)),
		allValues:    make([][]float64, len(plans)),
		grandTotals:  make([]*float64, len(plans)),
	}
	for p := range plans {
		g.buckets[p] = make(map[string]map[string][]float64)
		g.bucketCounts[p] = make(map[string]map[string]int)
		if len(plans[p].aggRefs) > 0 {
			g.refBuckets[p] = make(map[string]map[string]map[string][]float64)
		}
	}

	rowSeen := make(map[string]bool)
	colSeen := make(map[string]bool)

	// Row-level formulas resolve fields case-insensitively, so they read
	// through a materialized Record rather than the Dataset interface.
	needsRecord := false
	for _, p := range plans {
		if p.rowVirt {
			needsRecord = true
		}
	}
	fields := ds.Fields()

	for i := 0; i < ds.Len(); i++ {
		rowKey := compositeKey(ds, i, cfg.RowFields)
		colKey := compositeKey(ds, i, cfg.ColumnFields)

		if !rowSeen[rowKey] {
			rowSeen[rowKey] = true
			g.rowKeys = append(g.rowKeys, rowKey)
		}
		if !colSeen[colKey] {
			colSeen[colKey] = true
			g.colKeys = append(g.colKeys, colKey)
		}

		var rec Record
		if needsRecord {
			rec = recordAt(ds, i, fields)
		}

		for p, plan := range plans {
			switch {
			case plan.isCalc && plan.rowVirt:
				v, ok := EvaluateSimpleFormula(plan.calc.Formula, rec)
				if !ok {
					continue // null rows contribute nothing
				}
				g.push(p, rowKey, colKey, v)

			case plan.isCalc && len(plan.aggRefs) > 0:
				g.countBucket(p, rowKey, colKey)
				for _, ref := range plan.aggRefs {
					v, ok := ParseNumeric(ds.Value(i, ref.Field))
					if !ok {
						continue
					}
					g.pushRef(p, ref.Key(), rowKey, colKey, v)
				}

			case plan.isCalc:
				// Dangling calc reference — nothing to collect.

			default:
				v, ok := ParseNumeric(ds.Value(i, plan.vf.Field))
				if !ok {
					if !plan.countLike {
						continue
					}
					v = 1 // placeholder keeps non-numeric columns countable
				}
				g.push(p, rowKey, colKey, v)
			}
		}
	}

	sort.Slice(g.rowKeys, func(i, j int) bool { return naturalLess(g.rowKeys[i], g.rowKeys[j]) })
	sort.Slice(g.colKeys, func(i, j int) bool { return naturalLess(g.colKeys[i], g.colKeys[j]) })

	// Grand totals: once per value field, over the entire dataset.
	for p := range plans {
		if len(g.allValues[p]) == 0 {
			continue
		}
		total := sum(g.allValues[p])
		g.grandTotals[p] = &total
	}

	return g
}

func (g *grouped) push(p int, rowKey, colKey string, v float64) {
	cols := g.buckets[p][rowKey]
	if cols == nil {
		cols = make(map[string][]float64)
		g.buckets[p][rowKey] = cols
	}
	cols[colKey] = append(cols[colKey], v)
	g.allValues[p] = append(g.allValues[p], v)
}

func (g *grouped) pushRef(p int, refKey, rowKey, colKey string, v float64) {
	rows := g.refBuckets[p][refKey]
	if rows == nil {
		rows = make(map[string]map[string][]float64)
		g.refBuckets[p][refKey] = rows
	}
	cols := rows[rowKey]
	if cols == nil {
		cols = make(map[string][]float64)
		rows[rowKey] = cols
	}
	cols[colKey] = append(cols[colKey], v)
}

func (g *grouped) countBucket(p int, rowKey, colKey string) {
	cols := g.bucketCounts[p][rowKey]
	if cols == nil {
		cols = make(map[string]int)
		g.bucketCounts[p][rowKey] = cols
	}
	cols[colKey]++
}

// bucket returns the raw values for one (plan, rowKey, colKey) combination.
func (g *grouped) bucket(p int, rowKey, colKey string) []float64 {
	if cols, ok := g.buckets[p][rowKey]; ok {
		return cols[colKey]
	}
	return nil
}

// refBucket returns the raw values of one aggregate reference in one bucket.
func (g *grouped) refBucket(p int, refKey, rowKey, colKey string) []float64 {
	if rows, ok := g.refBuckets[p][refKey]; ok {
		if cols, ok := rows[rowKey]; ok {
			return cols[colKey]
		}
	}
	return nil
}

// rowUnion returns the union of a plan's values across all columns of a row.
func (g *grouped) rowUnion(p int, rowKey string) []float64 {
	var out []float64
	for _, colKey := range g.colKeys {
		out = append(out, g.bucket(p, rowKey, colKey)...)
	}
	return out
}

// colUnion returns the union of a plan's values across all rows of a column.
func (g *grouped) colUnion(p int, colKey string) []float64 {
	var out []float64
	for _, rowKey := range g.rowKeys {
		out = append(out, g.bucket(p, rowKey, colKey)...)
	}
	return out
}

// ============================================================================
// COMPOSITE KEYS
// ============================================================================

// compositeKey joins the record's values for the given fields into a
// grouping identity, or the sentinel when the axis has no fields.
func compositeKey(ds Dataset, i int, fields []string) string {
	if len(fields) == 0 {
		return sentinelKey
	}
	parts := make([]string, len(fields))
	for n, f := range fields {
		parts[n] = keyPart(ds.Value(i, f))
	}
	return strings.Join(parts, keySep)
}

// splitKey decomposes a composite key into its display segments.
func splitKey(key string) []string {
	return strings.Split(key, keySep)
}

// keyPart renders one raw value as a key segment.
func keyPart(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return strings.ReplaceAll(fmt.Sprintf("%v", raw), keySep, " ")
	}
}

// recordAt materializes a Record from a dataset row. Only used when a
// row-level formula needs case-insensitive field resolution.
func recordAt(ds Dataset, i int, fields []string) Record {
	rec := make(Record, len(fields))
	for _, f := range fields {
		if v := ds.Value(i, f); v != nil {
			rec[f] = v
		}
	}
	return rec
}
