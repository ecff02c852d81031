package model

import "time"

// DailyReturnRecord holds the returns of a single trading day. PriceReturn
// and TotalReturn are nil on the first day of a series.
type DailyReturnRecord struct {
	Date                  time.Time `json:"date"`
	AdjustedClose         float64   `json:"adjusted_close"`
	Dividend              float64   `json:"dividend"`
	PriceReturn           *float64  `json:"price_return"`
	TotalReturn           *float64  `json:"total_return"`
	CumulativePriceReturn float64   `json:"cumulative_price_return"`
	CumulativeTotalReturn float64   `json:"cumulative_total_return"`
}

// PeriodicReturn is the compounded total return of one calendar period.
type PeriodicReturn struct {
	Label                 string    `json:"label"`
	Start                 time.Time `json:"start"`
	End                   time.Time `json:"end"`
	Observations          int       `json:"observations"`
	CompoundedTotalReturn float64   `json:"compounded_total_return"`
}

// DistributionGroup holds the raw daily total returns of one calendar period.
type DistributionGroup struct {
	Label   string    `json:"label"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Returns []float64 `json:"returns"`
}

// SummaryMetrics are whole-window statistics of a return series.
type SummaryMetrics struct {
	CAGR                 float64   `json:"cagr"`
	AnnualizedVolatility float64   `json:"annualized_volatility"`
	SharpeRatio          float64   `json:"sharpe_ratio"`
	MaxDrawdown          float64   `json:"max_drawdown"`
	DrawdownStart        time.Time `json:"drawdown_start"`
	DrawdownEnd          time.Time `json:"drawdown_end"`

	TotalReturn          float64 `json:"total_return"`
	TotalPriceReturn     float64 `json:"total_price_return"`
	ArithmeticMeanReturn float64 `json:"arithmetic_mean_return"`
	GeometricMeanReturn  float64 `json:"geometric_mean_return"`
	DividendCount        int     `json:"dividend_count"`
	TotalDividends       float64 `json:"total_dividends"`
	TradingDays          int     `json:"trading_days"`
}

// Analysis is the full result of one analysis request.
type Analysis struct {
	Symbol       string              `json:"symbol"`
	Begin        time.Time           `json:"begin"`
	End          time.Time           `json:"end"`
	Period       Period              `json:"period"`
	Daily        []DailyReturnRecord `json:"daily"`
	Summary      SummaryMetrics      `json:"summary"`
	Monthly      []PeriodicReturn    `json:"monthly"`
	Quarterly    []PeriodicReturn    `json:"quarterly"`
	Yearly       []PeriodicReturn    `json:"yearly"`
	Distribution []DistributionGroup `json:"distribution"`
	GeneratedAt  time.Time           `json:"generated_at"`
}

// Periodic returns the aggregate matching p.
func (a *Analysis) Periodic(p Period) []PeriodicReturn {
	switch p {
	case Monthly:
		return a.Monthly
	case Quarterly:
		return a.Quarterly
	default:
		return a.Yearly
	}
}
