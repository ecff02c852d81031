package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alexmartinsgomes/equity-analysis/internal/export"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [SYMBOL]",
	Short: "List stored analyses",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		symbol := ""
		if len(args) == 1 {
			symbol = strings.ToUpper(args[0])
		}
		rec := openRecorder(cfg.Database.SQLitePath)
		defer rec.Close()

		runs, err := rec.RecentRuns(symbol, historyLimit)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "Recorded\tSymbol\tWindow\tCAGR\tVolatility\tSharpe\tMax DD")
		for _, r := range runs {
			fmt.Fprintf(tw, "%s\t%s\t%s..%s\t%s\t%s\t%.2f\t%s\n",
				r.RecordedAt.Format("2006-01-02 15:04"), r.Symbol,
				r.Begin.Format("2006-01-02"), r.End.Format("2006-01-02"),
				export.Percent(r.CAGR), export.Percent(r.Volatility), r.Sharpe, export.Percent(r.MaxDrawdown))
		}
		return tw.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to show")
}
