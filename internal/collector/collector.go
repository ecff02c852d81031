package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/alexmartinsgomes/equity-analysis/internal/calculator"
	"github.com/alexmartinsgomes/equity-analysis/internal/metrics"
	"github.com/alexmartinsgomes/equity-analysis/internal/model"
	"github.com/alexmartinsgomes/equity-analysis/internal/trace"
)

// Collector fetches price history and runs the return pipeline on it.
type Collector struct {
	Fetcher     Fetcher
	Metrics     *metrics.Registry
	Compounding calculator.CompoundingMode
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, reg *metrics.Registry) *Collector {
	return &Collector{Fetcher: fetcher, Metrics: reg}
}

// Analyze fetches bars for symbol over [begin, end] and returns the full
// analysis. source labels the caller in metrics ("cli", "api", "cron", "bot").
func (c *Collector) Analyze(ctx context.Context, source, symbol string, begin, end time.Time, period model.Period) (*model.Analysis, error) {
	if model.Day(begin).After(model.Day(end)) {
		err := fmt.Errorf("analyze %s: %w", symbol, calculator.ErrInvalidRange)
		c.Metrics.ObserveAnalysis(source, 0, err)
		return nil, err
	}

	ctx, span := trace.StartSpan(ctx, "collector.Analyze", symbol)
	defer span.End()

	bars, err := c.fetch(ctx, symbol, begin, end)
	if err != nil {
		trace.RecordError(span, err)
		c.Metrics.ObserveAnalysis(source, 0, err)
		return nil, err
	}

	_, calcSpan := trace.StartSpan(ctx, "calculator.Analyze", symbol)
	start := time.Now()
	a, err := calculator.Analyze(symbol, bars, calculator.Request{
		Begin:       begin,
		End:         end,
		Period:      period,
		Compounding: c.Compounding,
	})
	elapsed := time.Since(start)
	trace.RecordError(calcSpan, err)
	calcSpan.End()
	c.Metrics.ObserveAnalysis(source, elapsed, err)
	if err != nil {
		log.Warn().Str("symbol", symbol).Err(err).Msg("analysis failed")
		return nil, fmt.Errorf("analyze %s: %w", symbol, err)
	}

	log.Info().
		Str("symbol", symbol).
		Int("bars", len(a.Daily)).
		Float64("cagr", a.Summary.CAGR).
		Dur("elapsed", elapsed).
		Msg("analysis complete")
	return a, nil
}

func (c *Collector) fetch(ctx context.Context, symbol string, begin, end time.Time) ([]model.RawBar, error) {
	ctx, span := trace.StartSpan(ctx, "fetcher."+c.Fetcher.Name(), symbol)
	defer span.End()

	start := time.Now()
	bars, err := c.Fetcher.FetchDailyBars(ctx, symbol, begin, end)
	c.Metrics.ObserveFetch(c.Fetcher.Name(), time.Since(start), len(bars), err)
	if err != nil {
		trace.RecordError(span, err)
		log.Error().Str("symbol", symbol).Str("provider", c.Fetcher.Name()).Err(err).Msg("fetch daily bars failed")
		return nil, &FetchError{Symbol: symbol, Provider: c.Fetcher.Name(), Err: err}
	}
	log.Debug().Str("symbol", symbol).Int("bars", len(bars)).Msg("fetched daily bars")
	return bars, nil
}

// FetchError wraps a failure of the data provider, as opposed to a failure
// of the return pipeline.
type FetchError struct {
	Symbol   string
	Provider string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s from %s: %v", e.Symbol, e.Provider, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// NewFetcher builds the configured provider wrapped in a circuit breaker.
func NewFetcher(provider, apiKey, baseURL, proxy string, rateLimit int) (Fetcher, error) {
	var f Fetcher
	switch provider {
	case "", "yahoo":
		y := NewYahooFetcher(proxy)
		if baseURL != "" {
			y.BaseURL = baseURL
		}
		f = y
	case "eodhd":
		opts := []EODHDOption{WithRateLimit(rateLimit), WithHTTPClient(newHTTPClient(proxy))}
		if baseURL != "" {
			opts = append(opts, WithBaseURL(baseURL))
		}
		f = NewEODHDFetcher(apiKey, opts...)
	case "mock":
		return &MockFetcher{Price: 100}, nil
	default:
		return nil, fmt.Errorf("unknown data provider %q", provider)
	}
	return NewBreakerFetcher(f, 5, time.Minute), nil
}
