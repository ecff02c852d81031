package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/alexmartinsgomes/equity-analysis/internal/calculator"
	"github.com/alexmartinsgomes/equity-analysis/internal/collector"
	"github.com/alexmartinsgomes/equity-analysis/internal/export"
	"github.com/alexmartinsgomes/equity-analysis/internal/metrics"
	"github.com/alexmartinsgomes/equity-analysis/internal/model"
	"github.com/alexmartinsgomes/equity-analysis/internal/recorder"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, errorResponse{Error: kind, Message: message})
}

// statusFor maps an analysis error to an HTTP status.
func statusFor(err error) int {
	var fe *collector.FetchError
	switch {
	case errors.Is(err, calculator.ErrInvalidRange):
		return http.StatusBadRequest
	case errors.Is(err, calculator.ErrInsufficientData),
		errors.Is(err, calculator.ErrUndefinedRatio),
		errors.Is(err, calculator.ErrDivisionByZero):
		return http.StatusUnprocessableEntity
	case errors.Is(err, collector.ErrCircuitOpen):
		return http.StatusServiceUnavailable
	case errors.As(err, &fe):
		var apiErr *collector.APIError
		if errors.As(err, &apiErr) && apiErr.NotFound() {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeAnalysisError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := calculator.Describe(err)
	if status >= 500 || status == http.StatusNotFound {
		msg = err.Error()
	}
	writeError(w, status, metrics.ErrorKind(err), msg)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// runAnalysis parses the common query and runs the analysis. It writes the
// error response itself and returns nil on failure.
func (s *Server) runAnalysis(w http.ResponseWriter, r *http.Request, period model.Period) *model.Analysis {
	symbol := strings.ToUpper(mux.Vars(r)["symbol"])
	q := r.URL.Query()

	begin, end, err := collector.ResolveWindow(q.Get("begin"), q.Get("end"), s.config.LookbackDays, s.now())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_range", err.Error())
		return nil
	}
	a, err := s.analyzer.Analyze(r.Context(), "api", symbol, begin, end, period)
	if err != nil {
		writeAnalysisError(w, err)
		return nil
	}
	if _, err := s.recorder.RecordAnalysis(a); err != nil {
		log.Error().Str("symbol", symbol).Err(err).Msg("record analysis")
	}
	return a
}

func (s *Server) queryPeriod(w http.ResponseWriter, raw string) (model.Period, bool) {
	if raw == "" {
		return s.config.DefaultPeriod, true
	}
	p, err := model.ParsePeriod(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_period", err.Error())
		return 0, false
	}
	return p, true
}

// handleAnalysis returns the full analysis as JSON, or the daily table as
// CSV with format=csv.
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	period, ok := s.queryPeriod(w, r.URL.Query().Get("period"))
	if !ok {
		return
	}
	format := r.URL.Query().Get("format")
	if format != "" && format != "json" && format != "csv" {
		writeError(w, http.StatusBadRequest, "invalid_format", fmt.Sprintf("unsupported format %q", format))
		return
	}

	a := s.runAnalysis(w, r, period)
	if a == nil {
		return
	}
	if format == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s_total_returns.csv", a.Symbol))
		if err := export.WriteCSV(w, a.Daily); err != nil {
			log.Error().Err(err).Msg("write csv")
		}
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handlePeriodic(w http.ResponseWriter, r *http.Request) {
	period, ok := s.queryPeriod(w, mux.Vars(r)["period"])
	if !ok {
		return
	}
	a := s.runAnalysis(w, r, period)
	if a == nil {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":  a.Symbol,
		"period":  period,
		"returns": a.Periodic(period),
	})
}

func (s *Server) handleDistribution(w http.ResponseWriter, r *http.Request) {
	period, ok := s.queryPeriod(w, mux.Vars(r)["period"])
	if !ok {
		return
	}
	a := s.runAnalysis(w, r, period)
	if a == nil {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"symbol": a.Symbol,
		"period": period,
		"groups": a.Distribution,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be between 1 and 500")
			return
		}
		limit = n
	}
	runs, err := s.recorder.RecentRuns(strings.ToUpper(r.URL.Query().Get("symbol")), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "storage", err.Error())
		return
	}
	if runs == nil {
		runs = []recorder.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}
