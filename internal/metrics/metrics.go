package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alexmartinsgomes/equity-analysis/internal/calculator"
)

// Registry holds the Prometheus metrics of the analyzer.
type Registry struct {
	reg *prometheus.Registry

	Analyses         *prometheus.CounterVec
	AnalysisErrors   *prometheus.CounterVec
	AnalysisDuration prometheus.Histogram
	FetchDuration    *prometheus.HistogramVec
	BarsFetched      *prometheus.CounterVec
	Notifications    *prometheus.CounterVec
}

// NewRegistry creates and registers all metrics on a private registry.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		Analyses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "equity_analyses_total",
				Help: "Total number of analyses by source and status",
			},
			[]string{"source", "status"},
		),
		AnalysisErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "equity_analysis_errors_total",
				Help: "Total number of failed analyses by error kind",
			},
			[]string{"kind"},
		),
		AnalysisDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "equity_analysis_duration_seconds",
				Help:    "Duration of the return pipeline in seconds",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
		),
		FetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "equity_fetch_duration_seconds",
				Help:    "Duration of price history fetches by provider",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"provider", "result"},
		),
		BarsFetched: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "equity_bars_fetched_total",
				Help: "Total number of daily bars received by provider",
			},
			[]string{"provider"},
		),
		Notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "equity_notifications_total",
				Help: "Total number of notifications sent by status",
			},
			[]string{"status"},
		),
	}
	r.reg.MustRegister(
		r.Analyses,
		r.AnalysisErrors,
		r.AnalysisDuration,
		r.FetchDuration,
		r.BarsFetched,
		r.Notifications,
		collectors.NewGoCollector(),
	)
	return r
}

// Handler exposes the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Gatherer returns the underlying registry for tests and custom exporters.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// ObserveFetch records one provider fetch.
func (r *Registry) ObserveFetch(provider string, d time.Duration, bars int, err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.FetchDuration.WithLabelValues(provider, result).Observe(d.Seconds())
	r.BarsFetched.WithLabelValues(provider).Add(float64(bars))
}

// ObserveAnalysis records the outcome of one analysis.
func (r *Registry) ObserveAnalysis(source string, d time.Duration, err error) {
	if r == nil {
		return
	}
	r.AnalysisDuration.Observe(d.Seconds())
	if err != nil {
		r.Analyses.WithLabelValues(source, "error").Inc()
		r.AnalysisErrors.WithLabelValues(ErrorKind(err)).Inc()
		return
	}
	r.Analyses.WithLabelValues(source, "ok").Inc()
}

// ObserveNotification records a notification attempt.
func (r *Registry) ObserveNotification(err error) {
	if r == nil {
		return
	}
	if err != nil {
		r.Notifications.WithLabelValues("error").Inc()
		return
	}
	r.Notifications.WithLabelValues("ok").Inc()
}

// ErrorKind maps an error to a low-cardinality label.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, calculator.ErrInvalidRange):
		return "invalid_range"
	case errors.Is(err, calculator.ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, calculator.ErrUndefinedRatio):
		return "undefined_ratio"
	case errors.Is(err, calculator.ErrDivisionByZero):
		return "division_by_zero"
	default:
		return "fetch"
	}
}
