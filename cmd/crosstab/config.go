package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// CLI configuration, loaded from file, environment, and defaults.
type cliConfig struct {
	Format    string `mapstructure:"format" yaml:"format"`         // default output format
	StorePath string `mapstructure:"store_path" yaml:"store_path"` // calculated-field database
}

// loadCLIConfig loads configuration with precedence: env > config file > defaults.
func loadCLIConfig(cfgFile string) (*cliConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("CROSSTAB")
	v.AutomaticEnv()

	v.SetDefault("format", "text")
	v.SetDefault("store_path", "~/.crosstab/crosstab.db")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".crosstab"))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// A missing config file is fine — defaults apply.
	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound && cfgFile != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c cliConfig
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &c, nil
}

// saveCLIConfig writes the configuration to ~/.crosstab/config.yaml
// (or cfgFile when given).
func saveCLIConfig(c *cliConfig, cfgFile string) error {
	path := cfgFile
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".crosstab")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}

	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
