package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crosstab-org/crosstab/helpers"
	"github.com/crosstab-org/crosstab/pivot"
	"github.com/crosstab-org/crosstab/schema"
	"github.com/crosstab-org/crosstab/store"
)

const version = "0.1.0"

var (
	cfgFile string
	cfg     *cliConfig

	flagFile      string
	flagRows      []string
	flagCols      []string
	flagValues    string
	flagRowTotals bool
	flagColTotals bool
	flagFormat    string
	flagOut       string
)

var rootCmd = &cobra.Command{
	Use:     "crosstab",
	Short:   "Crosstab: pivot tables for any CSV",
	Version: version,
	Long: `Crosstab computes pivot tables from flat CSV data: group rows and
columns by any fields, aggregate any numeric fields, and export the
materialized grid with totals.`,
	Example: `  crosstab --file sales.csv --rows region --cols month --values sales:sum
  crosstab --file sales.csv --rows region,product --values "sales:sum,units:avg" --format csv
  crosstab --file sales.csv --rows region --values "calc:Margin" --format text`,
	RunE: runCompute,
}

// Execute is the CLI entry point called by main.main().
func Execute() {
	cobra.OnInitialize(initConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.crosstab/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagFile, "file", "", "path to CSV data file (required)")

	rootCmd.Flags().StringSliceVar(&flagRows, "rows", nil, "fields grouping rows, e.g. region,product")
	rootCmd.Flags().StringSliceVar(&flagCols, "cols", nil, "fields grouping columns, e.g. month")
	rootCmd.Flags().StringVar(&flagValues, "values", "", `value fields as field:aggregation pairs, e.g. "sales:sum,units:avg"`)
	rootCmd.Flags().BoolVar(&flagRowTotals, "row-totals", true, "include per-row totals")
	rootCmd.Flags().BoolVar(&flagColTotals, "col-totals", true, "include per-column totals")
	rootCmd.Flags().StringVar(&flagFormat, "format", "", "output format: text, csv, json, pretty (default from config)")
	rootCmd.Flags().StringVar(&flagOut, "out", "", "write output to file instead of stdout")
}

func initConfig() {
	c, err := loadCLIConfig(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = &cliConfig{Format: "text", StorePath: ""}
	}
	cfg = c
}

// ============================================================================
// COMPUTE
// ============================================================================

func runCompute(cmd *cobra.Command, args []string) error {
	records, stats, err := loadDataset()
	if err != nil {
		return err
	}

	key := store.GenerateStorageKey(schema.FieldNames(stats))
	calcStore, _ := store.NewCalculatedFieldStore(cfg.StorePath)
	defs, _, err := calcStore.LoadCalculatedFields(key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load calculated fields: %v\n", err)
	}

	pcfg := pivot.NewConfig()
	pcfg.RowFields = flagRows
	pcfg.ColumnFields = flagCols
	pcfg.ShowRowTotals = flagRowTotals
	pcfg.ShowColumnTotals = flagColTotals
	pcfg.CalculatedFields = defs

	values, err := parseValueSpecs(flagValues, defs)
	if err != nil {
		return err
	}
	pcfg.ValueFields = values

	result := pivot.ComputePivot(records, pcfg)
	if result == nil {
		return fmt.Errorf("nothing to compute: configure at least one of --rows/--cols plus --values, against a non-empty file")
	}

	return writeOutput(result)
}

func loadDataset() ([]pivot.Record, []schema.FieldStats, error) {
	if flagFile == "" {
		return nil, nil, fmt.Errorf("--file is required")
	}
	data, err := os.ReadFile(flagFile)
	if err != nil {
		return nil, nil, fmt.Errorf("read data file: %w", err)
	}
	records, err := helpers.ParseCSV(data)
	if err != nil {
		return nil, nil, fmt.Errorf("parse CSV: %w", err)
	}
	return records, schema.AnalyzeFields(records), nil
}

// parseValueSpecs parses "field:aggregation" pairs. "calc:<name>" references
// a stored calculated field by name or ID.
func parseValueSpecs(spec string, defs []pivot.CalculatedField) ([]pivot.ValueField, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, nil
	}

	var out []pivot.ValueField
	for _, item := range strings.Split(spec, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		parts := strings.Split(item, ":")

		var field, agg string
		if strings.EqualFold(parts[0], "calc") {
			if len(parts) < 2 {
				return nil, fmt.Errorf("invalid value spec %q: expected calc:<name>", item)
			}
			def, found := findCalculatedField(defs, parts[1])
			if !found {
				return nil, fmt.Errorf("unknown calculated field %q — define it with 'crosstab calc add' first", parts[1])
			}
			field = pivot.CalcPrefix + def.ID
			agg = pivot.AggSum
			if len(parts) > 2 {
				agg = parts[2]
			}
		} else {
			field = parts[0]
			agg = pivot.AggSum
			if len(parts) > 1 {
				agg = parts[1]
			}
		}

		out = append(out, pivot.ValueField{Field: field, Aggregation: agg})
	}
	return out, nil
}

func findCalculatedField(defs []pivot.CalculatedField, nameOrID string) (pivot.CalculatedField, bool) {
	for _, d := range defs {
		if d.ID == nameOrID || strings.EqualFold(d.Name, nameOrID) {
			return d, true
		}
	}
	return pivot.CalculatedField{}, false
}

// ============================================================================
// OUTPUT
// ============================================================================

func writeOutput(result *pivot.Result) error {
	format := flagFormat
	if format == "" {
		format = cfg.Format
	}

	out := os.Stdout
	if flagOut != "" {
		f, err := os.Create(flagOut)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch format {
	case "json":
		return json.NewEncoder(out).Encode(result)
	case "pretty":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "csv":
		return helpers.WriteCSV(out, helpers.ResultToCSV(result))
	case "text", "":
		return renderText(out, result)
	default:
		return fmt.Errorf("unknown format %q: expected text, csv, json, or pretty", format)
	}
}

// renderText prints the pivot as a fixed-width table.
func renderText(out *os.File, result *pivot.Result) error {
	rows := helpers.ResultToCSV(result)
	if len(rows) == 0 {
		return nil
	}

	widths := make([]int, 0)
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	for _, row := range rows {
		var b strings.Builder
		for i, cell := range row {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(fmt.Sprintf("%-*s", widths[i], cell))
		}
		if _, err := fmt.Fprintln(out, strings.TrimRight(b.String(), " ")); err != nil {
			return err
		}
	}
	return nil
}
