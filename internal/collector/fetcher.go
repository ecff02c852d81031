package collector

import (
	"context"
	"time"

	"github.com/alexmartinsgomes/equity-analysis/internal/model"
)

// Fetcher defines the interface for fetching daily price history.
// begin and end are inclusive calendar days.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, begin, end time.Time) ([]model.RawBar, error)
	Name() string
}
