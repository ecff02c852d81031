package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/alexmartinsgomes/equity-analysis/internal/calculator"
	"github.com/alexmartinsgomes/equity-analysis/internal/collector"
	"github.com/alexmartinsgomes/equity-analysis/internal/export"
	"github.com/alexmartinsgomes/equity-analysis/internal/model"
)

var (
	analyzeBegin    string
	analyzeEnd      string
	analyzePeriod   string
	analyzeFormat   string
	analyzeOut      string
	analyzeLogSpace bool
	analyzeRecord   bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze SYMBOL",
	Short: "Compute total returns and risk metrics for one symbol",
	Example: "  analyzer analyze AAPL --begin 2020-01-01 --end 2024-12-31 --period quarterly\n" +
		"  analyzer analyze MSFT.US --format csv --out msft.csv",
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeBegin, "begin", "", "first day YYYY-MM-DD (default: lookback before end)")
	analyzeCmd.Flags().StringVar(&analyzeEnd, "end", "", "last day YYYY-MM-DD (default: today)")
	analyzeCmd.Flags().StringVar(&analyzePeriod, "period", "", "monthly, quarterly or yearly (default from config)")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "text", "output format: text, json or csv")
	analyzeCmd.Flags().StringVarP(&analyzeOut, "out", "o", "", "write output to file instead of stdout")
	analyzeCmd.Flags().BoolVar(&analyzeLogSpace, "log-space", false, "compound in log space")
	analyzeCmd.Flags().BoolVar(&analyzeRecord, "record", false, "store the result in the SQLite history")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	symbol := strings.ToUpper(args[0])

	period := cfg.DefaultPeriod()
	if analyzePeriod != "" {
		p, err := model.ParsePeriod(analyzePeriod)
		if err != nil {
			return err
		}
		period = p
	}
	switch analyzeFormat {
	case "text", "json", "csv":
	default:
		return fmt.Errorf("unsupported format %q", analyzeFormat)
	}

	begin, end, err := collector.ResolveWindow(analyzeBegin, analyzeEnd, cfg.Analysis.LookbackDays, time.Now())
	if err != nil {
		return fmt.Errorf("%s: %w", calculator.Describe(err), err)
	}

	fetcher, err := collector.NewFetcher(cfg.DataSource.Provider, cfg.DataSource.APIKey,
		cfg.DataSource.BaseURL, cfg.Proxy, cfg.DataSource.RateLimit)
	if err != nil {
		return err
	}
	col := collector.NewCollector(fetcher, nil)
	if analyzeLogSpace || cfg.Analysis.LogSpace {
		col.Compounding = calculator.LogSpaceCompounding
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()
	a, err := col.Analyze(ctx, "cli", symbol, begin, end, period)
	if err != nil {
		return fmt.Errorf("%s: %w", calculator.Describe(err), err)
	}

	if analyzeRecord {
		rec := openRecorder(cfg.Database.SQLitePath)
		defer rec.Close()
		if id, err := rec.RecordAnalysis(a); err != nil {
			log.Warn().Err(err).Msg("record analysis")
		} else if id != "" {
			log.Info().Str("run_id", id).Msg("analysis recorded")
		}
	}

	var w io.Writer = cmd.OutOrStdout()
	if analyzeOut != "" {
		f, err := os.Create(analyzeOut)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch analyzeFormat {
	case "json":
		return export.WriteJSON(w, a)
	case "csv":
		return export.WriteCSV(w, a.Daily)
	default:
		return export.WriteText(w, a, period)
	}
}
