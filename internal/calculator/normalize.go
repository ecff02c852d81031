package calculator

import (
	"fmt"
	"sort"
	"time"

	"github.com/alexmartinsgomes/equity-analysis/internal/model"
)

// Normalize turns raw source bars into a clean series for [begin, end].
//
// Bars with a non-positive close are dropped. The rest are sorted by day and
// duplicate days keep the last occurrence in input order. Prices and
// dividends before each split day are divided by the product of all later
// split factors in the window.
func Normalize(bars []model.RawBar, begin, end time.Time) ([]model.NormalizedBar, error) {
	begin, end = model.Day(begin), model.Day(end)
	if begin.After(end) {
		return nil, fmt.Errorf("normalize %s..%s: %w",
			begin.Format(dateLayout), end.Format(dateLayout), ErrInvalidRange)
	}

	byDay := make(map[time.Time]model.RawBar, len(bars))
	for _, b := range bars {
		if b.Close <= 0 {
			continue
		}
		day := model.Day(b.Date)
		if day.Before(begin) || day.After(end) {
			continue
		}
		b.Date = day
		byDay[day] = b
	}
	if len(byDay) < 2 {
		return nil, fmt.Errorf("normalize: %d bars in window: %w", len(byDay), ErrInsufficientData)
	}

	out := make([]model.NormalizedBar, 0, len(byDay))
	for _, b := range byDay {
		split := b.SplitFactor
		if split <= 0 {
			split = 1
		}
		div := b.Dividend
		if div < 0 {
			div = 0
		}
		out = append(out, model.NormalizedBar{
			Date:        b.Date,
			Close:       b.Close,
			Dividend:    div,
			SplitFactor: split,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	ratio := 1.0
	for i := len(out) - 1; i >= 0; i-- {
		out[i].AdjustedClose = out[i].Close / ratio
		out[i].Dividend /= ratio
		ratio *= out[i].SplitFactor
	}
	return out, nil
}

const dateLayout = "2006-01-02"
