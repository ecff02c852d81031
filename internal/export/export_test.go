package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexmartinsgomes/equity-analysis/internal/model"
)

func f(v float64) *float64 { return &v }

func sample() *model.Analysis {
	d := func(day int) time.Time { return time.Date(2024, time.January, day, 0, 0, 0, 0, time.UTC) }
	return &model.Analysis{
		Symbol: "SPY",
		Begin:  d(2),
		End:    d(4),
		Period: model.Monthly,
		Daily: []model.DailyReturnRecord{
			{Date: d(2), AdjustedClose: 100, CumulativePriceReturn: 1, CumulativeTotalReturn: 1},
			{Date: d(3), AdjustedClose: 110, PriceReturn: f(0.1), TotalReturn: f(0.1), CumulativePriceReturn: 1.1, CumulativeTotalReturn: 1.1},
			{Date: d(4), AdjustedClose: 99, Dividend: 0.5, PriceReturn: f(-0.1), TotalReturn: f(-0.095), CumulativePriceReturn: 0.99, CumulativeTotalReturn: 0.9955},
		},
		Summary: model.SummaryMetrics{
			TotalReturn:   -0.0045,
			CAGR:          -0.3,
			MaxDrawdown:   -0.095,
			DrawdownStart: d(3),
			DrawdownEnd:   d(4),
			SharpeRatio:   0.25,
			DividendCount: 1,
			TradingDays:   3,
		},
		Monthly: []model.PeriodicReturn{{Label: "2024-01", Observations: 2, CompoundedTotalReturn: -0.0045}},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sample().Daily))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, dailyHeader, rows[0])
	assert.Equal(t, []string{"2024-01-02", "100", "0", "", "", "1", "1"}, rows[1])
	assert.Equal(t, "-0.095", rows[3][4])
	assert.Equal(t, "0.5", rows[3][2])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sample()))

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "SPY", out["symbol"])
	assert.Equal(t, "monthly", out["period"])
	daily := out["daily"].([]interface{})
	assert.Nil(t, daily[0].(map[string]interface{})["total_return"])
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, sample(), model.Monthly))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "SPY  2024-01-02 .. 2024-01-04"))
	assert.Contains(t, out, "-9.50% (2024-01-03 .. 2024-01-04)")
	assert.Contains(t, out, "Monthly returns")
	assert.Contains(t, out, "2024-01")
	assert.Contains(t, out, "1 payments")
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "+12.50%", Percent(0.125))
	assert.Equal(t, "-5.00%", Percent(-0.05))
	assert.Equal(t, "+0.00%", Percent(0))
}
