package calculator

import (
	"github.com/alexmartinsgomes/equity-analysis/internal/model"
)

// Distribute groups raw daily total returns by calendar period.
func Distribute(records []model.DailyReturnRecord, period model.Period) []model.DistributionGroup {
	var out []model.DistributionGroup
	for _, r := range records {
		if r.TotalReturn == nil {
			continue
		}
		label := period.Label(r.Date)
		if n := len(out); n == 0 || out[n-1].Label != label {
			out = append(out, model.DistributionGroup{
				Label: label,
				Start: period.Start(r.Date),
				End:   period.End(r.Date),
			})
		}
		g := &out[len(out)-1]
		g.Returns = append(g.Returns, *r.TotalReturn)
	}
	return out
}
