package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# SMC Trader Configuration

[data]
# Bar source: "csv" or "synthetic"
source = "synthetic"
# Path to a CSV bar file with time,open,high,low,close columns
csv_path = ""
# Instrument symbol
symbol = "EURUSD"
# Base price for the synthetic generator
base_price = 100.0

[agent]
# Analysis timeframe: M1, M5, M15, M30, H1, H4, D1
timeframe = "M15"
# Bars requested per analysis pass
lookback = 300
# Pivot half-window for the swing break check
swing_window = 20
# Pivot half-window for the pattern vote (0 = swing_window / 2)
smc_pivot_window = 0
# Bars inspected by the false-breakout filter
retest_bars = 3
# ATR period
atr_period = 14
# Stop-loss ATR multiple (fallback when no structural stop exists)
sl_mult = 1.5
# Take-profit reward multiple
tp_mult = 2.5
# Enable the SMC pattern vote
smc_enabled = true
# Absolute tolerance for fair value gap detection
smc_fvg_tolerance = 0.0
# Absolute tolerance for equal highs/lows clustering
smc_eq_tolerance = 0.001

# Vote weight overrides; omitted detectors keep their defaults.
[weights]
# bos = 2.0
# choch = 2.0
# breaker_blocks = 1.5
# order_blocks = 1.0
# fvg = 0.75
# eqh = 0.5
# eql = 0.5
# inducement = 2.5
# liquidity_sweep = 2.0
# mitigation_block = 1.5

[store]
# SQLite decision journal; empty disables persistence
path = ""

[logging]
# Log level: trace, debug, info, warn, error
level = "info"
# Also write logs to a rotated file under the config directory
file_enabled = true
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return os.WriteFile(path, []byte(configTemplate), 0o644)
}
