package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/alexmartinsgomes/equity-analysis/internal/model"
)

const (
	// DefaultEODHDBaseURL is the base URL for the EODHD API.
	DefaultEODHDBaseURL = "https://eodhd.com/api"
	// DefaultEODHDRateLimit is requests per second.
	DefaultEODHDRateLimit = 10
)

// EODHDFetcher implements Fetcher on top of the EODHD end-of-day API.
// Closes are unadjusted and splits are reported separately, so split
// adjustment is left to the normalizer.
type EODHDFetcher struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// EODHDOption configures an EODHDFetcher.
type EODHDOption func(*EODHDFetcher)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) EODHDOption {
	return func(f *EODHDFetcher) {
		f.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) EODHDOption {
	return func(f *EODHDFetcher) {
		f.httpClient = c
	}
}

// WithRateLimit sets the maximum requests per second.
func WithRateLimit(requestsPerSecond int) EODHDOption {
	return func(f *EODHDFetcher) {
		if requestsPerSecond > 0 {
			f.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// NewEODHDFetcher creates a new EODHD fetcher.
func NewEODHDFetcher(apiKey string, opts ...EODHDOption) *EODHDFetcher {
	f := &EODHDFetcher{
		baseURL:    DefaultEODHDBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(DefaultEODHDRateLimit), DefaultEODHDRateLimit),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *EODHDFetcher) Name() string { return "eodhd" }

type eodhdBar struct {
	Date          string  `json:"date"`
	Close         float64 `json:"close"`
	AdjustedClose float64 `json:"adjusted_close"`
}

type eodhdDividend struct {
	Date            string  `json:"date"`
	Value           float64 `json:"value"`
	UnadjustedValue float64 `json:"unadjustedValue"`
}

type eodhdSplit struct {
	Date  string `json:"date"`
	Split string `json:"split"`
}

// FetchDailyBars downloads closes, dividends and splits for [begin, end] and
// merges them by day.
func (f *EODHDFetcher) FetchDailyBars(ctx context.Context, symbol string, begin, end time.Time) ([]model.RawBar, error) {
	params := url.Values{}
	params.Set("from", begin.Format("2006-01-02"))
	params.Set("to", end.Format("2006-01-02"))

	var eod []eodhdBar
	if err := f.get(ctx, "/eod/"+url.PathEscape(symbol), withOrder(params), &eod); err != nil {
		return nil, err
	}
	var divs []eodhdDividend
	if err := f.get(ctx, "/div/"+url.PathEscape(symbol), params, &divs); err != nil {
		return nil, err
	}
	var splits []eodhdSplit
	if err := f.get(ctx, "/splits/"+url.PathEscape(symbol), params, &splits); err != nil {
		return nil, err
	}

	dividends := make(map[time.Time]float64, len(divs))
	for _, d := range divs {
		t, err := time.Parse("2006-01-02", d.Date)
		if err != nil {
			log.Warn().Str("symbol", symbol).Str("date", d.Date).Msg("ignoring dividend with bad date")
			continue
		}
		v := d.UnadjustedValue
		if v == 0 {
			v = d.Value
		}
		dividends[t] += v
	}
	factors := make(map[string]float64, len(splits))
	for _, s := range splits {
		ratio, err := parseSplitRatio(s.Split)
		if err != nil {
			log.Warn().Str("symbol", symbol).Str("split", s.Split).Err(err).Msg("ignoring unparseable split")
			continue
		}
		factors[s.Date] = ratio
	}

	bars := make([]model.RawBar, 0, len(eod))
	for _, b := range eod {
		t, err := time.Parse("2006-01-02", b.Date)
		if err != nil {
			return nil, fmt.Errorf("eodhd: bad date %q: %w", b.Date, err)
		}
		factor, ok := factors[b.Date]
		if !ok {
			factor = 1
		}
		bars = append(bars, model.RawBar{Date: t, Close: b.Close, SplitFactor: factor})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	attachDividends(f.Name(), symbol, bars, dividends)
	return bars, nil
}

func withOrder(params url.Values) url.Values {
	p := url.Values{}
	for k, v := range params {
		p[k] = v
	}
	p.Set("period", "d")
	p.Set("order", "a")
	return p
}

func (f *EODHDFetcher) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := f.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("eodhd rate limit: %w", err)
	}

	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("api_token", f.apiKey)
	q.Set("fmt", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("eodhd request: %w", err)
	}
	log.Debug().Str("url", f.baseURL+path).Msg("EODHD API request")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("eodhd fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{Provider: "eodhd", StatusCode: resp.StatusCode, Message: string(body), Endpoint: path}
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("eodhd decode %s: %w", path, err)
	}
	return nil
}

// parseSplitRatio converts "new/old" such as "2/1" or "1.000000/10.000000"
// into new shares per old share.
func parseSplitRatio(s string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid split format %q", s)
	}
	num, err := decimal.NewFromString(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, fmt.Errorf("invalid split numerator %q: %w", parts[0], err)
	}
	den, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, fmt.Errorf("invalid split denominator %q: %w", parts[1], err)
	}
	if !num.IsPositive() || !den.IsPositive() {
		return 0, fmt.Errorf("invalid split ratio %q", s)
	}
	ratio, _ := num.Div(den).Float64()
	return ratio, nil
}
