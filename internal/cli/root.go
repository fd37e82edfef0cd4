package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"smc-trader/internal/config"
	"smc-trader/internal/logging"
)

// Version information
const (
	Version = "0.1.0"
)

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	rootCmd := &cobra.Command{
		Use:   "smc-trader",
		Short: "Market structure signal engine",
		Long: `smc-trader analyzes a candle series for market structure patterns
(swing pivots, breaks of structure, liquidity patterns, imbalances) and
produces a directional decision with entry, stop-loss and take-profit.

Use 'smc-trader help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/smc-trader)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newSignalCmd(app))
	rootCmd.AddCommand(newJournalCmd(app))

	return rootCmd
}

// Execute loads configuration, builds the logger and runs the CLI.
func Execute() error {
	configDir := os.Getenv("SMC_TRADER_CONFIG_DIR")
	cfg, err := config.Load(configDir)
	if err != nil {
		return err
	}

	logCfg := logging.DefaultLogConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.File = cfg.Logging.FileEnabled
	logger := logging.NewLoggerWithConfig(logCfg)

	return NewRootCmd(cfg, logger).Execute()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"version": Version})
				return
			}
			output.Printf("smc-trader v%s\n", Version)
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			output.Info("Data")
			output.Printf("  source:     %s\n", app.Config.Data.Source)
			output.Printf("  symbol:     %s\n", app.Config.Data.Symbol)
			if app.Config.Data.CSVPath != "" {
				output.Printf("  csv_path:   %s\n", app.Config.Data.CSVPath)
			}
			output.Info("Agent")
			output.Printf("  timeframe:     %s\n", app.Config.Agent.Timeframe)
			output.Printf("  lookback:      %d\n", app.Config.Agent.Lookback)
			output.Printf("  swing_window:  %d\n", app.Config.Agent.SwingWindow)
			output.Printf("  atr_period:    %d\n", app.Config.Agent.ATRPeriod)
			output.Printf("  smc_enabled:   %v\n", app.Config.Agent.SMCEnabled)
			if len(app.Config.Weights) > 0 {
				output.Info("Weight overrides")
				for name, w := range app.Config.Weights {
					output.Printf("  %s = %.2f\n", name, w)
				}
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the configuration directory",
		Run: func(cmd *cobra.Command, args []string) {
			NewOutput(cmd).Println(config.DefaultConfigDir())
		},
	})

	return cmd
}
