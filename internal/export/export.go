package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/alexmartinsgomes/equity-analysis/internal/model"
)

var dailyHeader = []string{
	"date", "adjusted_close", "dividend",
	"price_return", "total_return",
	"cumulative_price_return", "cumulative_total_return",
}

// WriteCSV writes the daily return table. Missing returns are empty cells.
func WriteCSV(w io.Writer, daily []model.DailyReturnRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(dailyHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range daily {
		record := []string{
			r.Date.Format("2006-01-02"),
			formatFloat(r.AdjustedClose),
			formatFloat(r.Dividend),
			formatOptional(r.PriceReturn),
			formatOptional(r.TotalReturn),
			formatFloat(r.CumulativePriceReturn),
			formatFloat(r.CumulativeTotalReturn),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteJSON writes the whole analysis as indented JSON.
func WriteJSON(w io.Writer, a *model.Analysis) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(a)
}

// WriteText writes a human readable report with the summary metrics and
// the periodic returns for period.
func WriteText(w io.Writer, a *model.Analysis, period model.Period) error {
	s := a.Summary
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "%s  %s .. %s  (%d trading days)\n\n",
		a.Symbol, a.Begin.Format("2006-01-02"), a.End.Format("2006-01-02"), s.TradingDays)
	fmt.Fprintln(tw, "Metric\tValue")
	fmt.Fprintln(tw, "------\t-----")
	fmt.Fprintf(tw, "Total return\t%s\n", Percent(s.TotalReturn))
	fmt.Fprintf(tw, "Price return\t%s\n", Percent(s.TotalPriceReturn))
	fmt.Fprintf(tw, "CAGR\t%s\n", Percent(s.CAGR))
	fmt.Fprintf(tw, "Annualized volatility\t%s\n", Percent(s.AnnualizedVolatility))
	fmt.Fprintf(tw, "Sharpe ratio\t%.2f\n", s.SharpeRatio)
	fmt.Fprintf(tw, "Max drawdown\t%s (%s .. %s)\n", Percent(s.MaxDrawdown),
		s.DrawdownStart.Format("2006-01-02"), s.DrawdownEnd.Format("2006-01-02"))
	fmt.Fprintf(tw, "Mean daily return\t%s\n", Percent(s.ArithmeticMeanReturn))
	fmt.Fprintf(tw, "Geometric mean daily return\t%s\n", Percent(s.GeometricMeanReturn))
	fmt.Fprintf(tw, "Dividends\t%d payments, %.4f per share\n", s.DividendCount, s.TotalDividends)

	fmt.Fprintf(tw, "\n%s returns\n", capitalize(period.String()))
	fmt.Fprintln(tw, "Period\tReturn\tDays")
	fmt.Fprintln(tw, "------\t------\t----")
	for _, p := range a.Periodic(period) {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", p.Label, Percent(p.CompoundedTotalReturn), p.Observations)
	}
	return tw.Flush()
}

// Percent formats a fraction as a signed percentage with two decimals.
func Percent(v float64) string {
	return fmt.Sprintf("%+.2f%%", v*100)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
