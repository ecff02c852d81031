package calculator

import (
	"math"
	"time"

	"github.com/alexmartinsgomes/equity-analysis/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// weekdayBars builds one bar per weekday starting at start.
func weekdayBars(start time.Time, closes ...float64) []model.RawBar {
	bars := make([]model.RawBar, 0, len(closes))
	d := start
	for _, c := range closes {
		for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			d = d.AddDate(0, 0, 1)
		}
		bars = append(bars, model.RawBar{Date: d, Close: c, SplitFactor: 1})
		d = d.AddDate(0, 0, 1)
	}
	return bars
}

// wavyCloses produces a deterministic non-trivial price path.
func wavyCloses(n int) []float64 {
	closes := make([]float64, n)
	p := 100.0
	for i := range closes {
		p *= 1 + 0.012*math.Sin(float64(i)*0.7) + 0.0004
		closes[i] = p
	}
	return closes
}

func span(bars []model.RawBar) (time.Time, time.Time) {
	return bars[0].Date, bars[len(bars)-1].Date
}
