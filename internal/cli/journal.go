package cli

import (
	"github.com/spf13/cobra"

	"smc-trader/internal/store"
)

func newJournalCmd(app *App) *cobra.Command {
	var (
		symbol    string
		timeframe string
		signal    string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "List stored decisions",
		Long:  "Lists decisions persisted by 'signal --save', most recent first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			if app.Config.Store.Path == "" {
				output.Warning("no journal configured; set store.path in config.toml")
				return nil
			}

			journal, err := store.NewSQLiteStore(app.Config.Store.Path)
			if err != nil {
				return err
			}
			defer journal.Close()

			records, err := journal.ListDecisions(cmd.Context(), store.DecisionFilter{
				Symbol:    symbol,
				Timeframe: timeframe,
				Signal:    signal,
				Limit:     limit,
			})
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(records)
			}
			if len(records) == 0 {
				output.Dim("no decisions recorded")
				return nil
			}
			for _, r := range records {
				output.Printf("%s  %-10s %-4s %s",
					r.Timestamp.Format("2006-01-02 15:04"),
					r.Symbol, r.Timeframe, output.SignalText(r.Signal))
				if r.Price != nil {
					output.Printf("  entry %.5f", *r.Price)
				}
				if r.StopLoss != nil {
					output.Printf("  sl %.5f", *r.StopLoss)
				}
				if r.TakeProfit != nil {
					output.Printf("  tp %.5f", *r.TakeProfit)
				}
				if r.Reason != "" {
					output.Printf("  (%s)", r.Reason)
				}
				output.Printf("\n")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&symbol, "symbol", "s", "", "filter by symbol")
	cmd.Flags().StringVarP(&timeframe, "timeframe", "t", "", "filter by timeframe")
	cmd.Flags().StringVar(&signal, "signal", "", "filter by signal: LONG, SHORT, WAIT")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum rows")

	return cmd
}
