package calculator

import (
	"github.com/alexmartinsgomes/equity-analysis/internal/model"
)

// Aggregate compounds daily total returns within each calendar period.
// Each period restarts from 1.0 and periods without returns are omitted.
func Aggregate(records []model.DailyReturnRecord, period model.Period) []model.PeriodicReturn {
	var out []model.PeriodicReturn
	for _, g := range Distribute(records, period) {
		out = append(out, model.PeriodicReturn{
			Label:                 g.Label,
			Start:                 g.Start,
			End:                   g.End,
			Observations:          len(g.Returns),
			CompoundedTotalReturn: CumulativeProduct(g.Returns) - 1,
		})
	}
	return out
}
