package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/alexmartinsgomes/equity-analysis/internal/collector"
	"github.com/alexmartinsgomes/equity-analysis/internal/metrics"
	"github.com/alexmartinsgomes/equity-analysis/internal/model"
	"github.com/alexmartinsgomes/equity-analysis/internal/notifier"
	"github.com/alexmartinsgomes/equity-analysis/internal/recorder"
)

// Analyzer runs one analysis. *collector.Collector satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, source, symbol string, begin, end time.Time, period model.Period) (*model.Analysis, error)
}

// Sender delivers a formatted message. *notifier.TelegramNotifier satisfies it.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs the watchlist analysis on a cron schedule and answers bot
// commands.
type Scheduler struct {
	Cron     *cron.Cron
	Analyzer Analyzer
	Notifier Sender // nil disables notifications
	Recorder recorder.Recorder
	Metrics  *metrics.Registry
	Symbols  []string
	Lookback int
	Period   model.Period
	Ctx      context.Context

	now func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, an Analyzer, tn Sender, rec recorder.Recorder, reg *metrics.Registry) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Analyzer: an,
		Notifier: tn,
		Recorder: rec,
		Metrics:  reg,
		Lookback: 365,
		Period:   model.Monthly,
		Ctx:      ctx,
		now:      time.Now,
	}
}

// RegisterAll registers the daily watchlist task.
func (s *Scheduler) RegisterAll(dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("symbols", len(s.Symbols)).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunNow executes the daily task immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.dailyTask()
}

func (s *Scheduler) dailyTask() {
	log.Info().Strs("symbols", s.Symbols).Msg("running daily watchlist analysis")
	begin, end, err := collector.ResolveWindow("", "", s.Lookback, s.now())
	if err != nil {
		log.Error().Err(err).Msg("resolve window")
		return
	}
	for _, symbol := range s.Symbols {
		if s.Ctx.Err() != nil {
			return
		}
		a, err := s.analyze(s.Ctx, "cron", symbol, begin, end, s.Period)
		if err != nil {
			s.trySend(notifier.FormatError(symbol, err))
			continue
		}
		s.trySend(notifier.FormatReport(a, s.Period))
	}
}

// analyze runs and records one analysis.
func (s *Scheduler) analyze(ctx context.Context, source, symbol string, begin, end time.Time, period model.Period) (*model.Analysis, error) {
	a, err := s.Analyzer.Analyze(ctx, source, symbol, begin, end, period)
	if err != nil {
		log.Error().Str("symbol", symbol).Err(err).Msg("analysis failed")
		if rerr := s.Recorder.RecordFailure(&recorder.Failure{
			Symbol: symbol,
			Source: source,
			Kind:   metrics.ErrorKind(err),
			Detail: err.Error(),
		}); rerr != nil {
			log.Error().Err(rerr).Msg("record failure")
		}
		return nil, err
	}
	if _, err := s.Recorder.RecordAnalysis(a); err != nil {
		log.Error().Str("symbol", symbol).Err(err).Msg("record analysis")
	}
	return a, nil
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	// "/analyze@my_bot" in group chats
	name := strings.SplitN(strings.ToLower(fields[0]), "@", 2)[0]
	args := fields[1:]

	switch name {
	case "/analyze":
		return s.handleAnalyze(ctx, args)
	case "/periodic":
		return s.handlePeriodic(ctx, args)
	case "/history":
		symbol := ""
		if len(args) > 0 {
			symbol = strings.ToUpper(args[0])
		}
		runs, err := s.Recorder.RecentRuns(symbol, 10)
		if err != nil {
			log.Error().Err(err).Msg("load history")
			return "⚠️ history unavailable"
		}
		return notifier.FormatHistory(symbol, runs)
	case "/watchlist":
		if len(s.Symbols) == 0 {
			return "watchlist is empty"
		}
		return "👀 " + strings.Join(s.Symbols, ", ")
	default:
		return notifier.FormatHelp()
	}
}

// handleAnalyze accepts SYMBOL [BEGIN] [END] [PERIOD]; the period may appear
// in any position after the symbol.
func (s *Scheduler) handleAnalyze(ctx context.Context, args []string) string {
	if len(args) == 0 {
		return "usage: /analyze SYMBOL [BEGIN] [END] [PERIOD]"
	}
	symbol := strings.ToUpper(args[0])
	period := s.Period
	var dates []string
	for _, a := range args[1:] {
		if p, err := model.ParsePeriod(a); err == nil {
			period = p
			continue
		}
		dates = append(dates, a)
	}
	if len(dates) > 2 {
		return "usage: /analyze SYMBOL [BEGIN] [END] [PERIOD]"
	}
	var beginStr, endStr string
	if len(dates) > 0 {
		beginStr = dates[0]
	}
	if len(dates) > 1 {
		endStr = dates[1]
	}

	begin, end, err := collector.ResolveWindow(beginStr, endStr, s.Lookback, s.now())
	if err != nil {
		return notifier.FormatError(symbol, err)
	}
	a, err := s.analyze(ctx, "bot", symbol, begin, end, period)
	if err != nil {
		return notifier.FormatError(symbol, err)
	}
	return notifier.FormatReport(a, period)
}

func (s *Scheduler) handlePeriodic(ctx context.Context, args []string) string {
	if len(args) < 2 {
		return "usage: /periodic SYMBOL monthly|quarterly|yearly"
	}
	symbol := strings.ToUpper(args[0])
	period, err := model.ParsePeriod(args[1])
	if err != nil {
		return "⚠️ " + err.Error()
	}
	begin, end, err := collector.ResolveWindow("", "", s.Lookback, s.now())
	if err != nil {
		return notifier.FormatError(symbol, err)
	}
	a, err := s.analyze(ctx, "bot", symbol, begin, end, period)
	if err != nil {
		return notifier.FormatError(symbol, err)
	}
	return notifier.FormatPeriodic(a, period, 0)
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	err := s.Notifier.SendWithRetry(s.Ctx, text, 3)
	s.Metrics.ObserveNotification(err)
	if err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}
