package collector

import (
	"context"
	"math"
	"time"

	"github.com/alexmartinsgomes/equity-analysis/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price     float64
	DailyData []model.RawBar
	Err       error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, _ string, begin, end time.Time) ([]model.RawBar, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.DailyData != nil {
		return m.DailyData, nil
	}
	return generateMockBars(m.Price, begin, end), nil
}

// generateMockBars produces one bar per weekday with a gentle oscillating
// drift and a quarterly dividend on the first trading day of each quarter.
func generateMockBars(basePrice float64, begin, end time.Time) []model.RawBar {
	if basePrice <= 0 {
		basePrice = 100
	}
	var bars []model.RawBar
	p := basePrice
	i := 0
	lastQuarter := -1
	for d := model.Day(begin); !d.After(model.Day(end)); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		p *= 1 + 0.01*math.Sin(float64(i)/3) + 0.0003
		bar := model.RawBar{Date: d, Close: p, SplitFactor: 1}
		if q := int(d.Month()-1) / 3; q != lastQuarter {
			if lastQuarter >= 0 {
				bar.Dividend = p * 0.004
			}
			lastQuarter = q
		}
		bars = append(bars, bar)
		i++
	}
	return bars
}
