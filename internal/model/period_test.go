package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPeriodLabel(t *testing.T) {
	tests := []struct {
		period Period
		date   time.Time
		want   string
	}{
		{Monthly, date(2024, time.March, 15), "2024-03"},
		{Quarterly, date(2024, time.March, 31), "2024-Q1"},
		{Quarterly, date(2024, time.April, 1), "2024-Q2"},
		{Quarterly, date(2023, time.December, 29), "2023-Q4"},
		{Yearly, date(2022, time.July, 4), "2022"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.period.Label(tt.date))
		})
	}
}

func TestPeriodBounds(t *testing.T) {
	d := date(2024, time.February, 10)

	assert.Equal(t, date(2024, time.February, 1), Monthly.Start(d))
	assert.Equal(t, date(2024, time.February, 29), Monthly.End(d))
	assert.Equal(t, date(2024, time.January, 1), Quarterly.Start(d))
	assert.Equal(t, date(2024, time.March, 31), Quarterly.End(d))
	assert.Equal(t, date(2024, time.January, 1), Yearly.Start(d))
	assert.Equal(t, date(2024, time.December, 31), Yearly.End(d))
}

func TestParsePeriod(t *testing.T) {
	for in, want := range map[string]Period{
		"monthly":   Monthly,
		"Month":     Monthly,
		"quarterly": Quarterly,
		"Q":         Quarterly,
		" yearly ":  Yearly,
		"annual":    Yearly,
	} {
		got, err := ParsePeriod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParsePeriod("weekly")
	assert.Error(t, err)
}

func TestPeriodJSON(t *testing.T) {
	b, err := Quarterly.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"quarterly"`, string(b))

	var p Period
	require.NoError(t, p.UnmarshalJSON([]byte(`"yearly"`)))
	assert.Equal(t, Yearly, p)
	assert.Error(t, p.UnmarshalJSON([]byte(`"daily"`)))
}

func TestDay(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	got := Day(time.Date(2024, time.May, 3, 16, 0, 0, 0, loc))
	assert.Equal(t, date(2024, time.May, 3), got)
}
