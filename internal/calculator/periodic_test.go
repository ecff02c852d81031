package calculator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexmartinsgomes/equity-analysis/internal/model"
)

func compounded(t *testing.T, raw []model.RawBar) []model.DailyReturnRecord {
	t.Helper()
	records, err := DailyReturns(normalized(t, raw))
	require.NoError(t, err)
	Compound(records, DirectCompounding)
	return records
}

func TestAggregatePeriodicConsistency(t *testing.T) {
	records := compounded(t, weekdayBars(day(2023, time.January, 2), wavyCloses(520)...))

	yearly := Aggregate(records, model.Yearly)
	for _, p := range []model.Period{model.Monthly, model.Quarterly} {
		byYear := map[string]float64{}
		for _, r := range Aggregate(records, p) {
			y := r.Label[:4]
			if _, ok := byYear[y]; !ok {
				byYear[y] = 1
			}
			byYear[y] *= 1 + r.CompoundedTotalReturn
		}
		require.Len(t, byYear, len(yearly))
		for _, y := range yearly {
			assert.InEpsilon(t, 1+y.CompoundedTotalReturn, byYear[y.Label], 1e-9, "%s via %s", y.Label, p)
		}
	}
}

func TestAggregateRestartsEachPeriod(t *testing.T) {
	// Jan 30, Jan 31, Feb 1, Feb 2
	records := compounded(t, weekdayBars(day(2024, time.January, 30), 100, 110, 121, 133.1))
	got := Aggregate(records, model.Monthly)
	require.Len(t, got, 2)

	assert.Equal(t, "2024-01", got[0].Label)
	assert.Equal(t, 1, got[0].Observations, "first record has no return")
	assert.InDelta(t, 0.10, got[0].CompoundedTotalReturn, 1e-12)
	assert.Equal(t, day(2024, time.January, 1), got[0].Start)
	assert.Equal(t, day(2024, time.January, 31), got[0].End)

	assert.Equal(t, "2024-02", got[1].Label)
	assert.Equal(t, 2, got[1].Observations)
	assert.InDelta(t, 0.21, got[1].CompoundedTotalReturn, 1e-12)
}

func TestAggregateOmitsEmptyPeriods(t *testing.T) {
	raw := []model.RawBar{
		{Date: day(2024, time.January, 30), Close: 100},
		{Date: day(2024, time.January, 31), Close: 101},
		{Date: day(2024, time.March, 1), Close: 102},
	}
	records := compounded(t, raw)

	var labels []string
	for _, r := range Aggregate(records, model.Monthly) {
		labels = append(labels, r.Label)
	}
	assert.Equal(t, []string{"2024-01", "2024-03"}, labels)

	quarterly := Aggregate(records, model.Quarterly)
	require.Len(t, quarterly, 1)
	assert.Equal(t, "2024-Q1", quarterly[0].Label)
}

func TestAggregateFirstRecordAloneInPeriod(t *testing.T) {
	raw := []model.RawBar{
		{Date: day(2023, time.December, 29), Close: 100},
		{Date: day(2024, time.January, 2), Close: 105},
	}
	got := Aggregate(compounded(t, raw), model.Yearly)
	require.Len(t, got, 1)
	assert.Equal(t, "2024", got[0].Label)
	assert.InDelta(t, 0.05, got[0].CompoundedTotalReturn, 1e-12)
}

func TestDistribute(t *testing.T) {
	records := compounded(t, weekdayBars(day(2024, time.March, 28), 100, 110, 99, 108.9))
	// Mar 28, Mar 29, Apr 1, Apr 2
	got := Distribute(records, model.Quarterly)
	require.Len(t, got, 2)

	assert.Equal(t, "2024-Q1", got[0].Label)
	require.Len(t, got[0].Returns, 1)
	assert.InDelta(t, 0.10, got[0].Returns[0], 1e-12)

	assert.Equal(t, "2024-Q2", got[1].Label)
	require.Len(t, got[1].Returns, 2)
	assert.InDelta(t, -0.10, got[1].Returns[0], 1e-12)
	assert.InDelta(t, 0.10, got[1].Returns[1], 1e-12)
	assert.Equal(t, day(2024, time.June, 30), got[1].End)
}

func TestDistributeEmpty(t *testing.T) {
	assert.Empty(t, Distribute(nil, model.Monthly))
	assert.Empty(t, Aggregate(nil, model.Yearly))
}
