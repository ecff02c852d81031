package collector

import (
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/alexmartinsgomes/equity-analysis/internal/model"
)

// attachDividends books each dividend on the bar of its ex-date. When that
// day has no bar the dividend moves to the next trading day; a dividend
// after the last bar is dropped. Both cases are logged. bars must be sorted.
// It returns the number of dividends it could not book.
func attachDividends(provider, symbol string, bars []model.RawBar, divs map[time.Time]float64) int {
	days := make([]time.Time, 0, len(divs))
	for d := range divs {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	dropped := 0
	for _, d := range days {
		i := sort.Search(len(bars), func(i int) bool { return !bars[i].Date.Before(d) })
		if i == len(bars) {
			log.Warn().Str("provider", provider).Str("symbol", symbol).
				Str("ex_date", d.Format("2006-01-02")).Float64("amount", divs[d]).
				Msg("dividend after last bar dropped")
			dropped++
			continue
		}
		if !bars[i].Date.Equal(d) {
			log.Warn().Str("provider", provider).Str("symbol", symbol).
				Str("ex_date", d.Format("2006-01-02")).Str("booked", bars[i].Date.Format("2006-01-02")).
				Msg("dividend ex-date has no bar, booked on next trading day")
		}
		bars[i].Dividend += divs[d]
	}
	return dropped
}
