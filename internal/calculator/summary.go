package calculator

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/alexmartinsgomes/equity-analysis/internal/model"
)

// TradingDaysPerYear is the annualization factor for daily returns.
const TradingDaysPerYear = 252

// CAGR annualizes a final cumulative return over bars trading days.
// bars counts bars, not returns, so a 253-bar window spans one year.
func CAGR(finalCumulative float64, bars int) (float64, error) {
	if bars < 2 {
		return 0, fmt.Errorf("cagr: %d bars: %w", bars, ErrInsufficientData)
	}
	return math.Pow(finalCumulative, TradingDaysPerYear/float64(bars-1)) - 1, nil
}

// AnnualizedVolatility is the sample standard deviation of daily returns
// scaled by the square root of TradingDaysPerYear. A single return has no
// dispersion and yields zero.
func AnnualizedVolatility(returns []float64) (float64, error) {
	switch len(returns) {
	case 0:
		return 0, fmt.Errorf("volatility: no returns: %w", ErrInsufficientData)
	case 1:
		return 0, nil
	}
	return stat.StdDev(returns, nil) * math.Sqrt(TradingDaysPerYear), nil
}

// flatVolatility is the relative tolerance under which volatility is
// floating-point noise around zero.
const flatVolatility = 1e-12

// SharpeRatio annualizes mean daily return over volatility with a zero
// risk-free rate. Volatility within rounding noise of zero is undefined.
func SharpeRatio(returns []float64, volatility float64) (float64, error) {
	if len(returns) == 0 {
		return 0, fmt.Errorf("sharpe: %w", ErrInsufficientData)
	}
	mean := stat.Mean(returns, nil)
	floor := flatVolatility * math.Max(1, math.Abs(mean)) * math.Sqrt(TradingDaysPerYear)
	if math.IsNaN(volatility) || volatility <= floor {
		return 0, fmt.Errorf("sharpe: volatility %g: %w", volatility, ErrUndefinedRatio)
	}
	return mean * TradingDaysPerYear / volatility, nil
}

// Drawdown is the deepest peak-to-trough decline of a cumulative series.
type Drawdown struct {
	Depth float64 // <= 0
	Start time.Time
	End   time.Time
}

// MaxDrawdown scans cumulative total returns with a running peak. Ties keep
// the earliest trough. A series that never declines returns a zero Depth
// with Start and End on the first date.
func MaxDrawdown(records []model.DailyReturnRecord) Drawdown {
	if len(records) == 0 {
		return Drawdown{}
	}
	peak := records[0].CumulativeTotalReturn
	peakDate := records[0].Date
	dd := Drawdown{Start: peakDate, End: peakDate}
	for _, r := range records[1:] {
		if r.CumulativeTotalReturn > peak {
			peak = r.CumulativeTotalReturn
			peakDate = r.Date
			continue
		}
		depth := r.CumulativeTotalReturn/peak - 1
		if depth < dd.Depth {
			dd = Drawdown{Depth: depth, Start: peakDate, End: r.Date}
		}
	}
	return dd
}

// Summarize computes whole-window metrics from a normalized series and its
// compounded return records. Any undefined metric fails the whole summary.
func Summarize(bars []model.NormalizedBar, records []model.DailyReturnRecord) (model.SummaryMetrics, error) {
	var m model.SummaryMetrics
	if len(records) < 2 || len(records) != len(bars) {
		return m, fmt.Errorf("summary: %d records for %d bars: %w", len(records), len(bars), ErrInsufficientData)
	}

	last := records[len(records)-1]
	returns := TotalReturns(records)

	cagr, err := CAGR(last.CumulativeTotalReturn, len(bars))
	if err != nil {
		return m, err
	}
	vol, err := AnnualizedVolatility(returns)
	if err != nil {
		return m, err
	}
	sharpe, err := SharpeRatio(returns, vol)
	if err != nil {
		return m, err
	}
	dd := MaxDrawdown(records)

	m = model.SummaryMetrics{
		CAGR:                 cagr,
		AnnualizedVolatility: vol,
		SharpeRatio:          sharpe,
		MaxDrawdown:          dd.Depth,
		DrawdownStart:        dd.Start,
		DrawdownEnd:          dd.End,
		TotalReturn:          last.CumulativeTotalReturn - 1,
		TotalPriceReturn:     last.CumulativePriceReturn - 1,
		ArithmeticMeanReturn: stat.Mean(returns, nil),
		GeometricMeanReturn:  math.Pow(last.CumulativeTotalReturn, 1/float64(len(returns))) - 1,
		TradingDays:          len(bars),
	}
	for _, b := range bars[1:] {
		if b.Dividend > 0 {
			m.DividendCount++
			m.TotalDividends += b.Dividend
		}
	}
	return m, nil
}
