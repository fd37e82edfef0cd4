// Package config provides configuration management for the signal engine.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"smc-trader/internal/models"
)

// Config holds all application configuration.
type Config struct {
	Data    DataConfig         `mapstructure:"data"`
	Agent   AgentParams        `mapstructure:"agent"`
	Weights map[string]float64 `mapstructure:"weights"`
	Store   StoreConfig        `mapstructure:"store"`
	Logging LoggingConfig      `mapstructure:"logging"`
}

// DataConfig selects and configures the bar provider.
type DataConfig struct {
	Source    string  `mapstructure:"source"` // "csv", "synthetic"
	CSVPath   string  `mapstructure:"csv_path"`
	Symbol    string  `mapstructure:"symbol"`
	BasePrice float64 `mapstructure:"base_price"`
}

// AgentParams holds the structure agent tuning knobs.
type AgentParams struct {
	Timeframe      string  `mapstructure:"timeframe"`
	Lookback       int     `mapstructure:"lookback"`
	SwingWindow    int     `mapstructure:"swing_window"`
	SMCPivotWindow int     `mapstructure:"smc_pivot_window"`
	RetestBars     int     `mapstructure:"retest_bars"`
	ATRPeriod      int     `mapstructure:"atr_period"`
	SLMult         float64 `mapstructure:"sl_mult"`
	TPMult         float64 `mapstructure:"tp_mult"`
	SMCEnabled     bool    `mapstructure:"smc_enabled"`
	SMCFVGTol      float64 `mapstructure:"smc_fvg_tolerance"`
	SMCEqTolerance float64 `mapstructure:"smc_eq_tolerance"`
}

// StoreConfig configures the decision journal.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	FileEnabled bool   `mapstructure:"file_enabled"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/smc-trader"
	}
	return filepath.Join(home, ".config", "smc-trader")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config.toml: %w", err)
		}
		if err := createTemplateConfig(configDir); err != nil {
			return nil, fmt.Errorf("creating config template: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data.source", "synthetic")
	v.SetDefault("data.csv_path", "")
	v.SetDefault("data.symbol", "EURUSD")
	v.SetDefault("data.base_price", 100.0)

	v.SetDefault("agent.timeframe", "M15")
	v.SetDefault("agent.lookback", 300)
	v.SetDefault("agent.swing_window", 20)
	v.SetDefault("agent.smc_pivot_window", 0)
	v.SetDefault("agent.retest_bars", 3)
	v.SetDefault("agent.atr_period", 14)
	v.SetDefault("agent.sl_mult", 1.5)
	v.SetDefault("agent.tp_mult", 2.5)
	v.SetDefault("agent.smc_enabled", true)
	v.SetDefault("agent.smc_fvg_tolerance", 0.0)
	v.SetDefault("agent.smc_eq_tolerance", 0.001)

	v.SetDefault("weights", map[string]float64{})

	v.SetDefault("store.path", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file_enabled", true)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SMC_TRADER_SYMBOL"); v != "" {
		cfg.Data.Symbol = v
	}
	if v := os.Getenv("SMC_TRADER_CSV_PATH"); v != "" {
		cfg.Data.CSVPath = v
		cfg.Data.Source = "csv"
	}
	if v := os.Getenv("SMC_TRADER_TIMEFRAME"); v != "" {
		cfg.Agent.Timeframe = v
	}
	if v := os.Getenv("SMC_TRADER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks configuration for consistency.
func (c *Config) Validate() error {
	switch c.Data.Source {
	case "csv":
		if c.Data.CSVPath == "" {
			return fmt.Errorf("data source csv requires data.csv_path")
		}
	case "synthetic":
	default:
		return fmt.Errorf("unknown data source %q", c.Data.Source)
	}
	if c.Data.Symbol == "" {
		return fmt.Errorf("data.symbol must be set")
	}

	tf := models.Timeframe(strings.ToUpper(c.Agent.Timeframe))
	valid := false
	for _, known := range models.TimeframeOrder {
		if tf == known {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("unknown timeframe %q", c.Agent.Timeframe)
	}

	if c.Agent.Lookback <= 0 {
		return fmt.Errorf("agent.lookback must be positive")
	}
	if c.Agent.ATRPeriod < 2 {
		return fmt.Errorf("agent.atr_period must be at least 2")
	}
	if c.Agent.SLMult <= 0 || c.Agent.TPMult <= 0 {
		return fmt.Errorf("agent.sl_mult and agent.tp_mult must be positive")
	}
	for name, w := range c.Weights {
		if w < 0 {
			return fmt.Errorf("weights.%s must be non-negative", name)
		}
	}
	return nil
}

// Timeframe returns the configured timeframe, normalized.
func (c *Config) Timeframe() models.Timeframe {
	return models.Timeframe(strings.ToUpper(c.Agent.Timeframe))
}
