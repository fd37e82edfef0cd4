package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"smc-trader/internal/models"
)

func TestLoadCreatesTemplate(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Data.Source != "synthetic" || cfg.Data.Symbol != "EURUSD" {
		t.Fatalf("unexpected defaults %+v", cfg.Data)
	}
	if cfg.Agent.Lookback != 300 || cfg.Agent.SwingWindow != 20 || !cfg.Agent.SMCEnabled {
		t.Fatalf("unexpected agent defaults %+v", cfg.Agent)
	}
	if cfg.Timeframe() != models.TimeframeM15 {
		t.Fatalf("unexpected timeframe %v", cfg.Timeframe())
	}

	if _, err := os.Stat(filepath.Join(dir, "config.toml")); err != nil {
		t.Fatalf("expected template config written: %v", err)
	}
}

func TestLoadReadsFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[data]
source = "synthetic"
symbol = "GBPUSD"

[agent]
timeframe = "h1"
lookback = 200

[weights]
bos = 3.0
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Data.Symbol != "GBPUSD" || cfg.Agent.Lookback != 200 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Timeframe() != models.TimeframeH1 {
		t.Fatalf("expected timeframe normalized to H1, got %v", cfg.Timeframe())
	}
	if cfg.Weights["bos"] != 3.0 {
		t.Fatalf("weights not applied: %+v", cfg.Weights)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Agent.ATRPeriod != 14 {
		t.Fatalf("defaults not merged: %+v", cfg.Agent)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SMC_TRADER_SYMBOL", "USDJPY")
	t.Setenv("SMC_TRADER_TIMEFRAME", "H4")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Data.Symbol != "USDJPY" {
		t.Fatalf("symbol override not applied: %+v", cfg.Data)
	}
	if cfg.Timeframe() != models.TimeframeH4 {
		t.Fatalf("timeframe override not applied: %v", cfg.Timeframe())
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Data:  DataConfig{Source: "synthetic", Symbol: "EURUSD"},
			Agent: AgentParams{Timeframe: "M15", Lookback: 300, ATRPeriod: 14, SLMult: 1.5, TPMult: 2.5},
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown source", func(c *Config) { c.Data.Source = "kafka" }, "unknown data source"},
		{"csv without path", func(c *Config) { c.Data.Source = "csv" }, "csv_path"},
		{"missing symbol", func(c *Config) { c.Data.Symbol = "" }, "symbol"},
		{"bad timeframe", func(c *Config) { c.Agent.Timeframe = "M2" }, "timeframe"},
		{"bad lookback", func(c *Config) { c.Agent.Lookback = 0 }, "lookback"},
		{"bad atr period", func(c *Config) { c.Agent.ATRPeriod = 1 }, "atr_period"},
		{"bad multiplier", func(c *Config) { c.Agent.TPMult = 0 }, "must be positive"},
		{"negative weight", func(c *Config) { c.Weights = map[string]float64{"bos": -1} }, "non-negative"},
	}
	for _, tc := range cases {
		cfg := valid()
		tc.mutate(cfg)
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: expected error containing %q, got %v", tc.name, tc.want, err)
		}
	}
}
