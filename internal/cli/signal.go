package cli

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"smc-trader/internal/agents"
	"smc-trader/internal/analysis/scoring"
	"smc-trader/internal/broker"
	"smc-trader/internal/config"
	"smc-trader/internal/models"
	"smc-trader/internal/store"
)

func newSignalCmd(app *App) *cobra.Command {
	var (
		symbol    string
		timeframe string
		csvPath   string
		save      bool
	)

	cmd := &cobra.Command{
		Use:   "signal",
		Short: "Run one analysis pass and print the decision",
		Long: `Runs the structure agent over the configured bar source and prints
the resulting decision. Use --json for the full wire payload.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			if symbol == "" {
				symbol = app.Config.Data.Symbol
			}
			tf := app.Config.Timeframe()
			if timeframe != "" {
				tf = models.Timeframe(strings.ToUpper(timeframe))
			}

			provider, err := buildProvider(app.Config, csvPath)
			if err != nil {
				return err
			}

			params := agentParams(app.Config)
			agent := agents.NewStructureAgent(symbol, provider, params, app.Logger)

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			decision, err := agent.GenerateSignal(ctx, tf)
			if err != nil {
				return err
			}

			if save && app.Config.Store.Path != "" {
				journal, err := store.NewSQLiteStore(app.Config.Store.Path)
				if err != nil {
					app.Logger.Warn().Err(err).Msg("journal unavailable")
				} else {
					defer journal.Close()
					if err := journal.SaveDecision(ctx, decision); err != nil {
						app.Logger.Warn().Err(err).Msg("failed to persist decision")
					}
				}
			}

			if output.IsJSON() {
				return output.JSON(decision)
			}
			printDecision(output, decision)
			return nil
		},
	}

	cmd.Flags().StringVarP(&symbol, "symbol", "s", "", "instrument symbol (default from config)")
	cmd.Flags().StringVarP(&timeframe, "timeframe", "t", "", "timeframe: M1, M5, M15, M30, H1, H4, D1")
	cmd.Flags().StringVar(&csvPath, "csv", "", "CSV bar file (overrides the configured source)")
	cmd.Flags().BoolVar(&save, "save", false, "persist the decision to the journal")

	return cmd
}

// buildProvider selects the bar provider: an explicit CSV path wins, then
// the configured source.
func buildProvider(cfg *config.Config, csvPath string) (broker.RateProvider, error) {
	if csvPath != "" {
		return broker.NewCSVProvider(csvPath), nil
	}
	switch cfg.Data.Source {
	case "csv":
		return broker.NewCSVProvider(cfg.Data.CSVPath), nil
	default:
		return broker.NewSyntheticProvider(cfg.Data.BasePrice), nil
	}
}

// agentParams maps the configuration onto agent parameters.
func agentParams(cfg *config.Config) agents.Params {
	params := agents.Params{
		Lookback:       cfg.Agent.Lookback,
		SwingWindow:    cfg.Agent.SwingWindow,
		SMCPivotWindow: cfg.Agent.SMCPivotWindow,
		RetestBars:     cfg.Agent.RetestBars,
		ATRPeriod:      cfg.Agent.ATRPeriod,
		SLMult:         cfg.Agent.SLMult,
		TPMult:         cfg.Agent.TPMult,
		SMCEnabled:     cfg.Agent.SMCEnabled,
		SMCFVGTol:      cfg.Agent.SMCFVGTol,
		SMCEqTolerance: cfg.Agent.SMCEqTolerance,
		Timeframe:      cfg.Timeframe(),
	}
	if len(cfg.Weights) > 0 {
		weights := scoring.DefaultWeights()
		for name, w := range cfg.Weights {
			weights[name] = w
		}
		params.Weights = weights
	}
	return params
}

func printDecision(output *Output, d *models.Decision) {
	output.Printf("%s %s  %s\n", d.Symbol, d.Timeframe, output.SignalText(string(d.Signal)))
	if d.Reason != "" {
		output.Dim("reason: %s", d.Reason)
		return
	}
	if d.Price != nil {
		output.Printf("  entry: %.5f\n", *d.Price)
	}
	if d.StopLoss != nil {
		output.Printf("  sl:    %.5f\n", *d.StopLoss)
	}
	if d.TakeProfit != nil {
		output.Printf("  tp:    %.5f\n", *d.TakeProfit)
	}
	if d.SMCMeta != nil {
		output.Printf("  vote:  %s (long %.3f / short %.3f)\n",
			string(d.SMCSignal), d.SMCMeta.LongScore, d.SMCMeta.ShortScore)
	}
	if d.ATR != nil {
		output.Dim("  atr:   %.5f", *d.ATR)
	}
}
