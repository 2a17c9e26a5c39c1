package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Classify the fields of a CSV file",
	Long: `Analyze samples the dataset and classifies each field: its type, how
many distinct values it carries, and whether it is numeric enough to
aggregate. Use it to decide which fields to put on which pivot axis.`,
	Example: `  crosstab analyze --file sales.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, stats, err := loadDataset()
		if err != nil {
			return err
		}

		if len(stats) == 0 {
			fmt.Println("No fields found — is the file empty?")
			return nil
		}

		fmt.Printf("%-30s %-10s %8s  %s\n", "FIELD", "TYPE", "UNIQUE", "NUMERIC")
		for _, s := range stats {
			numeric := ""
			if s.IsNumeric {
				numeric = "✓"
			}
			fmt.Printf("%-30s %-10s %8d  %s\n", s.Field, s.Type, s.UniqueCount, numeric)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}
