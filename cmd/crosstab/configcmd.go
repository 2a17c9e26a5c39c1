package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file to ~/.crosstab/config.yaml",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := &cliConfig{
			Format:    "text",
			StorePath: "~/.crosstab/crosstab.db",
		}
		if err := saveCLIConfig(c, cfgFile); err != nil {
			return err
		}
		fmt.Println("✓ Wrote default configuration.")
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("format:     %s\n", cfg.Format)
		fmt.Printf("store_path: %s\n", cfg.StorePath)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}
