package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alexmartinsgomes/equity-analysis/internal/model"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// indexTickers maps index aliases used in configs to Yahoo chart tickers.
var indexTickers = map[string]string{
	"SPX":    "^GSPC",
	"SP500":  "^GSPC",
	"SPX500": "^GSPC",
	"NDX":    "^NDX",
	"DJI":    "^DJI",
}

// YahooFetcher reads daily bars from the Yahoo Finance chart API.
//
// Chart closes are already split-adjusted, so bars carry a split factor of 1.
// Dividends come from the chart's dividend events.
type YahooFetcher struct {
	Client  *http.Client
	BaseURL string
	Aliases map[string]string
}

func NewYahooFetcher(proxyURL string) *YahooFetcher {
	return &YahooFetcher{Client: newHTTPClient(proxyURL), BaseURL: yahooBaseURL, Aliases: indexTickers}
}

// newHTTPClient returns a client with a 30s timeout that honours proxyURL.
// An unparsable proxy is ignored.
func newHTTPClient(proxyURL string) *http.Client {
	c := &http.Client{Timeout: 30 * time.Second}
	if u, err := url.Parse(proxyURL); err == nil && proxyURL != "" {
		c.Transport = &http.Transport{Proxy: http.ProxyURL(u)}
	}
	return c
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) ticker(symbol string) string {
	if t := f.Aliases[strings.ToUpper(symbol)]; t != "" {
		return t
	}
	return symbol
}

type yahooDividend struct {
	Amount float64 `json:"amount"`
	Date   int64   `json:"date"`
}

type yahooSeries struct {
	Meta struct {
		GMTOffset int64 `json:"gmtoffset"`
	} `json:"meta"`
	Timestamp []int64 `json:"timestamp"`
	Events    struct {
		Dividends map[string]yahooDividend `json:"dividends"`
	} `json:"events"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

type yahooEnvelope struct {
	Chart struct {
		Result []yahooSeries `json:"result"`
		Error  *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchDailyBars downloads daily closes and dividends for [begin, end].
func (f *YahooFetcher) FetchDailyBars(ctx context.Context, symbol string, begin, end time.Time) ([]model.RawBar, error) {
	q := url.Values{
		"interval":             {"1d"},
		"events":               {"div,splits"},
		"includeAdjustedClose": {"false"},
		"period1":              {strconv.FormatInt(model.Day(begin).Unix(), 10)},
		// exclusive upper bound
		"period2": {strconv.FormatInt(model.Day(end).AddDate(0, 0, 1).Unix(), 10)},
	}
	endpoint := f.BaseURL + "/v8/finance/chart/" + url.PathEscape(f.ticker(symbol)) + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo chart request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return nil, &APIError{Provider: f.Name(), StatusCode: resp.StatusCode, Message: string(msg), Endpoint: "/v8/finance/chart"}
	}

	var env yahooEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("yahoo chart decode: %w", err)
	}
	switch {
	case env.Chart.Error != nil:
		return nil, fmt.Errorf("yahoo chart %s: %s", symbol, env.Chart.Error.Description)
	case len(env.Chart.Result) == 0 || len(env.Chart.Result[0].Indicators.Quote) == 0:
		return nil, fmt.Errorf("yahoo chart %s: empty result", symbol)
	}
	return env.Chart.Result[0].bars(symbol), nil
}

// bars converts a chart series into raw bars keyed by exchange-local day.
// Sessions with a null close are dropped.
func (s yahooSeries) bars(symbol string) []model.RawBar {
	offset := time.Duration(s.Meta.GMTOffset) * time.Second
	day := func(ts int64) time.Time {
		return model.Day(time.Unix(ts, 0).UTC().Add(offset))
	}

	divs := make(map[time.Time]float64, len(s.Events.Dividends))
	for _, d := range s.Events.Dividends {
		divs[day(d.Date)] += d.Amount
	}

	closes := s.Indicators.Quote[0].Close
	out := make([]model.RawBar, 0, len(s.Timestamp))
	for i := 0; i < len(s.Timestamp) && i < len(closes); i++ {
		if closes[i] == nil {
			continue
		}
		d := day(s.Timestamp[i])
		out = append(out, model.RawBar{Date: d, Close: *closes[i], SplitFactor: 1})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	attachDividends("yahoo", symbol, out, divs)
	return out
}
