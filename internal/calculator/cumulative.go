package calculator

import (
	"math"

	"github.com/alexmartinsgomes/equity-analysis/internal/model"
)

// CompoundingMode selects how running products are accumulated.
type CompoundingMode int

const (
	// DirectCompounding multiplies (1 + r) factors.
	DirectCompounding CompoundingMode = iota
	// LogSpaceCompounding sums log1p(r) and exponentiates, which drifts
	// less on very long series.
	LogSpaceCompounding
)

// Compound fills the cumulative price and total return fields in place.
// The first record is 1; records without a return carry the prior value.
func Compound(records []model.DailyReturnRecord, mode CompoundingMode) {
	var logPrice, logTotal float64
	price, total := 1.0, 1.0
	for i := range records {
		r := &records[i]
		if r.PriceReturn != nil {
			price *= 1 + *r.PriceReturn
			logPrice += math.Log1p(*r.PriceReturn)
		}
		if r.TotalReturn != nil {
			total *= 1 + *r.TotalReturn
			logTotal += math.Log1p(*r.TotalReturn)
		}
		if mode == LogSpaceCompounding {
			r.CumulativePriceReturn = math.Exp(logPrice)
			r.CumulativeTotalReturn = math.Exp(logTotal)
		} else {
			r.CumulativePriceReturn = price
			r.CumulativeTotalReturn = total
		}
	}
}

// CumulativeProduct returns the product of (1 + r) over returns.
func CumulativeProduct(returns []float64) float64 {
	p := 1.0
	for _, r := range returns {
		p *= 1 + r
	}
	return p
}
