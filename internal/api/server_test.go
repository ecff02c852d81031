package api

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexmartinsgomes/equity-analysis/internal/calculator"
	"github.com/alexmartinsgomes/equity-analysis/internal/collector"
	"github.com/alexmartinsgomes/equity-analysis/internal/metrics"
	"github.com/alexmartinsgomes/equity-analysis/internal/model"
	"github.com/alexmartinsgomes/equity-analysis/internal/recorder"
)

type stubAnalyzer struct{ err error }

func (s stubAnalyzer) Analyze(context.Context, string, string, time.Time, time.Time, model.Period) (*model.Analysis, error) {
	return nil, s.err
}

func newTestServer(t *testing.T, an Analyzer, reg *metrics.Registry) *Server {
	t.Helper()
	s := NewServer(Config{Addr: ":0", LookbackDays: 365, DefaultPeriod: model.Monthly}, an, recorder.NewNoopRecorder(), reg)
	s.now = func() time.Time { return time.Date(2024, time.June, 14, 12, 0, 0, 0, time.UTC) }
	return s
}

func mockServer(t *testing.T) *Server {
	reg := metrics.NewRegistry()
	return newTestServer(t, collector.NewCollector(&collector.MockFetcher{Price: 200}, reg), reg)
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, mockServer(t), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestAnalysisJSON(t *testing.T) {
	rec := get(t, mockServer(t), "/api/v1/analysis/spy?begin=2023-01-01&end=2023-12-31&period=quarterly")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var a model.Analysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))
	assert.Equal(t, "SPY", a.Symbol)
	assert.Equal(t, model.Quarterly, a.Period)
	assert.Len(t, a.Distribution, 4)
	assert.Len(t, a.Monthly, 12)
	assert.Nil(t, a.Daily[0].TotalReturn)
	assert.NotNil(t, a.Daily[1].TotalReturn)
}

func TestAnalysisCSV(t *testing.T) {
	rec := get(t, mockServer(t), "/api/v1/analysis/SPY?begin=2024-01-01&end=2024-01-31&format=csv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	rows, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "date", rows[0][0])
	assert.Equal(t, 23, len(rows)-1)
}

func TestPeriodicAndDistribution(t *testing.T) {
	s := mockServer(t)

	rec := get(t, s, "/api/v1/analysis/SPY/periodic/yearly?begin=2022-01-01&end=2023-12-31")
	require.Equal(t, http.StatusOK, rec.Code)
	var periodic struct {
		Period  string                 `json:"period"`
		Returns []model.PeriodicReturn `json:"returns"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &periodic))
	assert.Equal(t, "yearly", periodic.Period)
	require.Len(t, periodic.Returns, 2)
	assert.Equal(t, "2022", periodic.Returns[0].Label)

	rec = get(t, s, "/api/v1/analysis/SPY/distribution/monthly?begin=2024-01-01&end=2024-03-31")
	require.Equal(t, http.StatusOK, rec.Code)
	var dist struct {
		Groups []model.DistributionGroup `json:"groups"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dist))
	assert.Len(t, dist.Groups, 3)
}

func TestBadRequests(t *testing.T) {
	s := mockServer(t)
	tests := []struct {
		path string
		want string
	}{
		{"/api/v1/analysis/SPY?begin=2024-02-01&end=2024-01-01", "invalid_range"},
		{"/api/v1/analysis/SPY?end=2030-01-01", "invalid_range"},
		{"/api/v1/analysis/SPY?begin=yesterday", "invalid_range"},
		{"/api/v1/analysis/SPY?period=weekly", "invalid_period"},
		{"/api/v1/analysis/SPY?format=xml", "invalid_format"},
		{"/api/v1/analysis/SPY/periodic/daily", "invalid_period"},
		{"/api/v1/history?limit=0", "invalid_limit"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(t, s, tt.path)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.want, body.Error)
		})
	}
}

func TestAnalysisErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
		kind string
	}{
		{"insufficient", calculator.ErrInsufficientData, http.StatusUnprocessableEntity, "insufficient_data"},
		{"undefined", calculator.ErrUndefinedRatio, http.StatusUnprocessableEntity, "undefined_ratio"},
		{"provider", &collector.FetchError{Symbol: "X", Provider: "yahoo", Err: errors.New("timeout")}, http.StatusBadGateway, "fetch"},
		{"unknown symbol", &collector.FetchError{Symbol: "X", Provider: "eodhd", Err: &collector.APIError{StatusCode: 404}}, http.StatusNotFound, "fetch"},
		{"breaker", &collector.FetchError{Symbol: "X", Provider: "yahoo", Err: collector.ErrCircuitOpen}, http.StatusServiceUnavailable, "fetch"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, newTestServer(t, stubAnalyzer{err: tt.err}, nil), "/api/v1/analysis/X")
			assert.Equal(t, tt.want, rec.Code)
			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.kind, body.Error)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestHistoryEmpty(t *testing.T) {
	rec := get(t, mockServer(t), "/api/v1/history?symbol=spy")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestMetricsAndNotFound(t *testing.T) {
	s := mockServer(t)
	get(t, s, "/api/v1/analysis/SPY?begin=2024-01-01&end=2024-03-31")

	rec := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `equity_analyses_total{source="api",status="ok"} 1`)

	rec = get(t, s, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
