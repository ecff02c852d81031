package notifier

import (
	"fmt"
	"html"
	"strings"

	"github.com/alexmartinsgomes/equity-analysis/internal/calculator"
	"github.com/alexmartinsgomes/equity-analysis/internal/export"
	"github.com/alexmartinsgomes/equity-analysis/internal/model"
	"github.com/alexmartinsgomes/equity-analysis/internal/recorder"
)

// FormatSummary formats the headline metrics of an analysis.
func FormatSummary(a *model.Analysis) string {
	s := a.Summary
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s → %s\n\n",
		html.EscapeString(a.Symbol), a.Begin.Format("2006-01-02"), a.End.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Total return: %s (price only %s)\n", export.Percent(s.TotalReturn), export.Percent(s.TotalPriceReturn)))
	b.WriteString(fmt.Sprintf("CAGR: %s\n", export.Percent(s.CAGR)))
	b.WriteString(fmt.Sprintf("Volatility: %s\n", export.Percent(s.AnnualizedVolatility)))
	b.WriteString(fmt.Sprintf("Sharpe: %.2f\n", s.SharpeRatio))
	b.WriteString(fmt.Sprintf("Max drawdown: %s (%s → %s)\n",
		export.Percent(s.MaxDrawdown), s.DrawdownStart.Format("2006-01-02"), s.DrawdownEnd.Format("2006-01-02")))
	if s.DividendCount > 0 {
		b.WriteString(fmt.Sprintf("Dividends: %d paid, %.2f per share\n", s.DividendCount, s.TotalDividends))
	}
	b.WriteString(fmt.Sprintf("Trading days: %d\n", s.TradingDays))
	return b.String()
}

// FormatPeriodic lists the compounded returns for one granularity, newest
// last. At most limit rows are shown.
func FormatPeriodic(a *model.Analysis, period model.Period, limit int) string {
	rows := a.Periodic(period)
	if limit > 0 && len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("📅 <b>%s %s returns</b>\n\n", html.EscapeString(a.Symbol), period))
	if len(rows) == 0 {
		b.WriteString("no data\n")
		return b.String()
	}
	b.WriteString("<pre>")
	for _, r := range rows {
		icon := "🟢"
		if r.CompoundedTotalReturn < 0 {
			icon = "🔴"
		}
		b.WriteString(fmt.Sprintf("%-8s %9s %s\n", r.Label, export.Percent(r.CompoundedTotalReturn), icon))
	}
	b.WriteString("</pre>")
	return b.String()
}

// FormatReport combines the summary with the periodic table.
func FormatReport(a *model.Analysis, period model.Period) string {
	return FormatSummary(a) + "\n" + FormatPeriodic(a, period, 12)
}

// FormatError explains a failed analysis.
func FormatError(symbol string, err error) string {
	return fmt.Sprintf("⚠️ <b>%s</b>\n%s", html.EscapeString(symbol), html.EscapeString(calculator.Describe(err)))
}

// FormatHistory lists stored runs.
func FormatHistory(symbol string, runs []recorder.Run) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🗂 <b>History %s</b>\n\n", html.EscapeString(symbol)))
	if len(runs) == 0 {
		b.WriteString("no stored analyses\n")
		return b.String()
	}
	for _, r := range runs {
		b.WriteString(fmt.Sprintf("%s %s %s..%s CAGR %s DD %s\n",
			r.RecordedAt.Format("2006-01-02 15:04"), html.EscapeString(r.Symbol),
			r.Begin.Format("2006-01-02"), r.End.Format("2006-01-02"),
			export.Percent(r.CAGR), export.Percent(r.MaxDrawdown)))
	}
	return b.String()
}

// FormatHelp lists the bot commands.
func FormatHelp() string {
	return "🤖 <b>Commands</b>\n\n" +
		"/analyze SYMBOL [BEGIN] [END] [PERIOD]\n" +
		"  dates as YYYY-MM-DD, period monthly|quarterly|yearly\n" +
		"/periodic SYMBOL PERIOD\n" +
		"/history [SYMBOL]\n" +
		"/watchlist\n" +
		"/help"
}
