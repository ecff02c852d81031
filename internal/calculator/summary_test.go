package calculator

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCAGR(t *testing.T) {
	got, err := CAGR(1.20, 253)
	require.NoError(t, err)
	assert.InDelta(t, 0.20, got, 1e-12)

	got, err = CAGR(1.21, 505)
	require.NoError(t, err)
	assert.InDelta(t, 0.10, got, 1e-12)

	_, err = CAGR(1.1, 1)
	assert.True(t, errors.Is(err, ErrInsufficientData))
}

func TestAnnualizedVolatility(t *testing.T) {
	got, err := AnnualizedVolatility([]float64{0.01, -0.01, 0.01, -0.01})
	require.NoError(t, err)
	// sample std of +-0.01 alternating over 4 values is 0.01*sqrt(4/3)
	assert.InDelta(t, 0.01*math.Sqrt(4.0/3.0)*math.Sqrt(252), got, 1e-12)

	single, err := AnnualizedVolatility([]float64{0.01})
	require.NoError(t, err)
	assert.Equal(t, 0.0, single)

	_, err = AnnualizedVolatility(nil)
	assert.True(t, errors.Is(err, ErrInsufficientData))
}

func TestSharpeRatio(t *testing.T) {
	returns := []float64{0.02, 0.0, 0.01}
	vol, err := AnnualizedVolatility(returns)
	require.NoError(t, err)
	got, err := SharpeRatio(returns, vol)
	require.NoError(t, err)
	assert.InDelta(t, 0.01*252/vol, got, 1e-12)
}

func TestSharpeRatioDegenerate(t *testing.T) {
	_, err := SharpeRatio([]float64{0.01, 0.01}, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUndefinedRatio))
}

func TestSharpeRatioConstantReturn(t *testing.T) {
	// every step is +10%, so the sample deviation is only rounding noise
	records := compounded(t, weekdayBars(day(2024, time.January, 1), 100, 110, 121, 133.1, 146.41))
	returns := TotalReturns(records)
	vol, err := AnnualizedVolatility(returns)
	require.NoError(t, err)
	assert.InDelta(t, 0, vol, 1e-12)

	sharpe, err := SharpeRatio(returns, vol)
	assert.True(t, errors.Is(err, ErrUndefinedRatio), "got sharpe %g err %v", sharpe, err)
}

func TestMaxDrawdownScenario(t *testing.T) {
	records := compounded(t, weekdayBars(day(2024, time.January, 2), 100, 110, 99, 108.9))
	dd := MaxDrawdown(records)
	assert.InDelta(t, -0.10, dd.Depth, 1e-12)
	assert.Equal(t, day(2024, time.January, 3), dd.Start)
	assert.Equal(t, day(2024, time.January, 4), dd.End)
}

func TestMaxDrawdownTieKeepsEarliestTrough(t *testing.T) {
	records := compounded(t, weekdayBars(day(2024, time.January, 1), 100, 110, 100, 110, 100))
	dd := MaxDrawdown(records)
	assert.InDelta(t, 100.0/110.0-1, dd.Depth, 1e-12)
	assert.Equal(t, day(2024, time.January, 2), dd.Start)
	assert.Equal(t, day(2024, time.January, 3), dd.End)
}

func TestMaxDrawdownNonDecreasing(t *testing.T) {
	records := compounded(t, weekdayBars(day(2024, time.January, 1), 100, 100, 101, 105))
	dd := MaxDrawdown(records)
	assert.Equal(t, 0.0, dd.Depth)
	assert.Equal(t, day(2024, time.January, 1), dd.Start)
	assert.Equal(t, dd.Start, dd.End)
}

func TestMaxDrawdownBound(t *testing.T) {
	records := compounded(t, weekdayBars(day(2020, time.January, 1), wavyCloses(800)...))
	dd := MaxDrawdown(records)
	assert.LessOrEqual(t, dd.Depth, 0.0)
	assert.GreaterOrEqual(t, dd.Depth, -1.0)
	assert.False(t, dd.End.Before(dd.Start))
}

func TestSummarize(t *testing.T) {
	raw := weekdayBars(day(2024, time.January, 2), 100, 110, 99, 108.9)
	raw[2].Dividend = 0.5
	bars := normalized(t, raw)
	records, err := DailyReturns(bars)
	require.NoError(t, err)
	Compound(records, DirectCompounding)

	m, err := Summarize(bars, records)
	require.NoError(t, err)

	last := records[len(records)-1].CumulativeTotalReturn
	assert.InDelta(t, math.Pow(last, 252.0/3)-1, m.CAGR, 1e-9)
	assert.InDelta(t, last-1, m.TotalReturn, 1e-12)
	assert.InDelta(t, 0.089, m.TotalPriceReturn, 1e-12)
	assert.InDelta(t, math.Cbrt(last)-1, m.GeometricMeanReturn, 1e-12)
	assert.Equal(t, 1, m.DividendCount)
	assert.InDelta(t, 0.5, m.TotalDividends, 1e-12)
	assert.Equal(t, 4, m.TradingDays)
	assert.Less(t, m.MaxDrawdown, 0.0)
	assert.Greater(t, m.AnnualizedVolatility, 0.0)
	assert.False(t, math.IsNaN(m.SharpeRatio))
}

func TestSummarizeRejectsMismatchedInput(t *testing.T) {
	bars := normalized(t, weekdayBars(day(2024, time.January, 2), 100, 110, 99))
	records, err := DailyReturns(bars)
	require.NoError(t, err)
	_, err = Summarize(bars[:2], records)
	assert.True(t, errors.Is(err, ErrInsufficientData))
}
