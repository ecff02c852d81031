package recorder

import (
	"time"

	"github.com/alexmartinsgomes/equity-analysis/internal/model"
)

// Run is a stored analysis summary.
type Run struct {
	ID          string    `json:"id"`
	Symbol      string    `json:"symbol"`
	Begin       time.Time `json:"begin"`
	End         time.Time `json:"end"`
	CAGR        float64   `json:"cagr"`
	Volatility  float64   `json:"volatility"`
	Sharpe      float64   `json:"sharpe"`
	MaxDrawdown float64   `json:"max_drawdown"`
	TotalReturn float64   `json:"total_return"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// Failure records an analysis that did not produce results.
type Failure struct {
	Symbol string
	Source string
	Kind   string
	Detail string
}

// Recorder persists analysis history.
type Recorder interface {
	RecordAnalysis(a *model.Analysis) (runID string, err error)
	RecordFailure(f *Failure) error
	RecentRuns(symbol string, limit int) ([]Run, error)
	Close() error
}
