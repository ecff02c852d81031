package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/alexmartinsgomes/equity-analysis/internal/api"
	"github.com/alexmartinsgomes/equity-analysis/internal/calculator"
	"github.com/alexmartinsgomes/equity-analysis/internal/collector"
	"github.com/alexmartinsgomes/equity-analysis/internal/metrics"
	"github.com/alexmartinsgomes/equity-analysis/internal/notifier"
	"github.com/alexmartinsgomes/equity-analysis/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, the daily watchlist schedule and the Telegram bot",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	log.Info().Str("version", version).Msg("equity analyzer starting")

	fetcher, err := collector.NewFetcher(cfg.DataSource.Provider, cfg.DataSource.APIKey,
		cfg.DataSource.BaseURL, cfg.Proxy, cfg.DataSource.RateLimit)
	if err != nil {
		return err
	}
	log.Info().Str("provider", fetcher.Name()).Msg("data source ready")

	reg := metrics.NewRegistry()
	col := collector.NewCollector(fetcher, reg)
	if cfg.Analysis.LogSpace {
		col.Compounding = calculator.LogSpaceCompounding
	}

	rec := openRecorder(cfg.Database.SQLitePath)
	defer rec.Close()

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var sender scheduler.Sender
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		sender = tn
	} else {
		log.Warn().Msg("telegram not configured, notifications disabled")
	}

	sched := scheduler.NewScheduler(ctx, col, sender, rec, reg)
	sched.Symbols = cfg.Analysis.Symbols
	sched.Lookback = cfg.Analysis.LookbackDays
	sched.Period = cfg.DefaultPeriod()
	if err := sched.RegisterAll(cfg.Schedule.DailyCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, executing watchlist analysis now")
		go sched.RunNow()
	}

	srv := api.NewServer(api.Config{
		Addr:          cfg.Server.Addr,
		LookbackDays:  cfg.Analysis.LookbackDays,
		DefaultPeriod: cfg.DefaultPeriod(),
	}, col, rec, reg)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	log.Info().Msg("equity analyzer is running, press Ctrl+C to stop")
	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received, stopping")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	log.Info().Msg("equity analyzer stopped")
	return nil
}
