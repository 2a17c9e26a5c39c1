package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crosstab-org/crosstab/pivot"
	"github.com/crosstab-org/crosstab/schema"
	"github.com/crosstab-org/crosstab/store"
)

// ============================================================================
// CALCULATED FIELD MANAGEMENT
// ============================================================================
// Definitions are stored durably, keyed by the dataset's field-name set, so
// the same CSV shape sees the same calculated fields across sessions.
// ============================================================================

var (
	flagCalcName     string
	flagCalcFormula  string
	flagCalcFormat   string
	flagCalcDecimals int
)

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Manage calculated fields for a dataset shape",
}

var calcAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Define a calculated field",
	Long: `Add validates the formula against the dataset's fields and stores the
definition. Aggregate formulas compose SUM/AVG/COUNT/MIN/MAX references,
e.g. "SUM(profit) / SUM(revenue) * 100"; row-level formulas use bare field
names, e.g. "sales / units".`,
	Example: `  crosstab calc add --file sales.csv --name Margin \
      --formula "SUM(profit) / SUM(revenue) * 100" --fmt percent --decimals 1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagCalcName == "" || flagCalcFormula == "" {
			return fmt.Errorf("--name and --formula are required")
		}

		_, stats, err := loadDataset()
		if err != nil {
			return err
		}
		fieldNames := schema.FieldNames(stats)

		// Accept either formula grammar; report the aggregate-level error
		// when neither fits, since that is the common case.
		aggErr := pivot.ValidateFormula(flagCalcFormula, fieldNames)
		if aggErr != nil {
			if rowErr := pivot.ValidateSimpleFormula(flagCalcFormula, fieldNames); rowErr != nil {
				return fmt.Errorf("invalid formula: %w", aggErr)
			}
		}

		key := store.GenerateStorageKey(fieldNames)
		calcStore, durable := store.NewCalculatedFieldStore(cfg.StorePath)
		defs, _, err := calcStore.LoadCalculatedFields(key)
		if err != nil {
			return fmt.Errorf("load calculated fields: %w", err)
		}

		if _, exists := findCalculatedField(defs, flagCalcName); exists {
			return fmt.Errorf("calculated field %q already exists for this dataset shape", flagCalcName)
		}

		def := pivot.NewCalculatedField(flagCalcName, flagCalcFormula, flagCalcFormat, flagCalcDecimals)
		defs = append(defs, def)
		if err := calcStore.SaveCalculatedFields(key, defs); err != nil {
			return fmt.Errorf("save calculated fields: %w", err)
		}

		if !durable {
			fmt.Println("⚠ Stored in memory only — set store_path in the config to persist across sessions.")
		}
		fmt.Printf("✓ Added calculated field %q (%s)\n", def.Name, def.ID)
		return nil
	},
}

var calcListCmd = &cobra.Command{
	Use:   "list",
	Short: "List calculated fields for a dataset shape",
	RunE: func(cmd *cobra.Command, args []string) error {
		defs, err := loadDefs()
		if err != nil {
			return err
		}
		if len(defs) == 0 {
			fmt.Println("No calculated fields defined for this dataset shape.")
			return nil
		}
		for _, d := range defs {
			fmt.Printf("%-20s %s\n", d.Name, d.Formula)
		}
		return nil
	},
}

var calcRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a calculated field",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, stats, err := loadDataset()
		if err != nil {
			return err
		}
		key := store.GenerateStorageKey(schema.FieldNames(stats))
		calcStore, _ := store.NewCalculatedFieldStore(cfg.StorePath)
		defs, _, err := calcStore.LoadCalculatedFields(key)
		if err != nil {
			return fmt.Errorf("load calculated fields: %w", err)
		}

		kept := defs[:0]
		removed := false
		for _, d := range defs {
			if strings.EqualFold(d.Name, args[0]) || d.ID == args[0] {
				removed = true
				continue
			}
			kept = append(kept, d)
		}
		if !removed {
			return fmt.Errorf("no calculated field named %q", args[0])
		}
		if err := calcStore.SaveCalculatedFields(key, kept); err != nil {
			return fmt.Errorf("save calculated fields: %w", err)
		}
		fmt.Printf("✓ Removed %q\n", args[0])
		return nil
	},
}

func loadDefs() ([]pivot.CalculatedField, error) {
	_, stats, err := loadDataset()
	if err != nil {
		return nil, err
	}
	key := store.GenerateStorageKey(schema.FieldNames(stats))
	calcStore, _ := store.NewCalculatedFieldStore(cfg.StorePath)
	defs, _, err := calcStore.LoadCalculatedFields(key)
	if err != nil {
		return nil, fmt.Errorf("load calculated fields: %w", err)
	}
	return defs, nil
}

func init() {
	calcAddCmd.Flags().StringVar(&flagCalcName, "name", "", "display name of the calculated field")
	calcAddCmd.Flags().StringVar(&flagCalcFormula, "formula", "", "formula text")
	calcAddCmd.Flags().StringVar(&flagCalcFormat, "fmt", "number", "display format: number, percent, currency")
	calcAddCmd.Flags().IntVar(&flagCalcDecimals, "decimals", 2, "display decimal precision")

	calcCmd.AddCommand(calcAddCmd, calcListCmd, calcRemoveCmd)
	rootCmd.AddCommand(calcCmd)
}
