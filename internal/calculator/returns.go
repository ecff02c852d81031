package calculator

import (
	"fmt"

	"github.com/alexmartinsgomes/equity-analysis/internal/model"
)

// DailyReturns computes price and total returns for each bar of a normalized
// series. The first record has no returns. Cumulative fields are left at zero
// until the records are passed through Compound.
func DailyReturns(bars []model.NormalizedBar) ([]model.DailyReturnRecord, error) {
	if len(bars) < 2 {
		return nil, fmt.Errorf("daily returns: %d bars: %w", len(bars), ErrInsufficientData)
	}

	records := make([]model.DailyReturnRecord, len(bars))
	for i, b := range bars {
		records[i] = model.DailyReturnRecord{
			Date:          b.Date,
			AdjustedClose: b.AdjustedClose,
			Dividend:      b.Dividend,
		}
		if i == 0 {
			continue
		}
		prev := bars[i-1].AdjustedClose
		if prev == 0 {
			return nil, fmt.Errorf("daily returns: prior close on %s: %w",
				bars[i-1].Date.Format(dateLayout), ErrDivisionByZero)
		}
		price := (b.AdjustedClose - prev) / prev
		total := (b.AdjustedClose - prev + b.Dividend) / prev
		records[i].PriceReturn = &price
		records[i].TotalReturn = &total
	}
	return records, nil
}

// TotalReturns extracts the defined total returns in order.
func TotalReturns(records []model.DailyReturnRecord) []float64 {
	out := make([]float64, 0, len(records))
	for _, r := range records {
		if r.TotalReturn != nil {
			out = append(out, *r.TotalReturn)
		}
	}
	return out
}

// PriceReturns extracts the defined price returns in order.
func PriceReturns(records []model.DailyReturnRecord) []float64 {
	out := make([]float64, 0, len(records))
	for _, r := range records {
		if r.PriceReturn != nil {
			out = append(out, *r.PriceReturn)
		}
	}
	return out
}
