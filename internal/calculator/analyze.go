package calculator

import (
	"time"

	"github.com/alexmartinsgomes/equity-analysis/internal/model"
)

// Request describes one analysis window.
type Request struct {
	Begin       time.Time
	End         time.Time
	Period      model.Period // granularity of the distribution groups
	Compounding CompoundingMode
}

// Analyze runs the full pipeline over raw bars. It returns either a complete
// Analysis or an error; partial results are never returned.
func Analyze(symbol string, bars []model.RawBar, req Request) (*model.Analysis, error) {
	normalized, err := Normalize(bars, req.Begin, req.End)
	if err != nil {
		return nil, err
	}
	records, err := DailyReturns(normalized)
	if err != nil {
		return nil, err
	}
	Compound(records, req.Compounding)

	summary, err := Summarize(normalized, records)
	if err != nil {
		return nil, err
	}

	return &model.Analysis{
		Symbol:       symbol,
		Begin:        model.Day(req.Begin),
		End:          model.Day(req.End),
		Period:       req.Period,
		Daily:        records,
		Summary:      summary,
		Monthly:      Aggregate(records, model.Monthly),
		Quarterly:    Aggregate(records, model.Quarterly),
		Yearly:       Aggregate(records, model.Yearly),
		Distribution: Distribute(records, req.Period),
		GeneratedAt:  time.Now().UTC(),
	}, nil
}
