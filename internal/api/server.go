package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/alexmartinsgomes/equity-analysis/internal/metrics"
	"github.com/alexmartinsgomes/equity-analysis/internal/model"
	"github.com/alexmartinsgomes/equity-analysis/internal/recorder"
)

// Analyzer runs one analysis. *collector.Collector satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, source, symbol string, begin, end time.Time, period model.Period) (*model.Analysis, error)
}

// Config holds server settings.
type Config struct {
	Addr          string
	LookbackDays  int
	DefaultPeriod model.Period
	Timeout       time.Duration // per-request analysis budget
}

// Server serves analyses over HTTP.
type Server struct {
	router   *mux.Router
	server   *http.Server
	analyzer Analyzer
	recorder recorder.Recorder
	metrics  *metrics.Registry
	config   Config
	now      func() time.Time
}

type ctxKey int

const requestIDKey ctxKey = iota

// NewServer creates a server with all routes registered.
func NewServer(cfg Config, an Analyzer, rec recorder.Recorder, reg *metrics.Registry) *Server {
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 365
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	s := &Server{
		router:   mux.NewRouter(),
		analyzer: an,
		recorder: rec,
		metrics:  reg,
		config:   cfg,
		now:      time.Now,
	}
	s.setupRoutes()
	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.Timeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.requestLoggingMiddleware)

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.Use(s.timeoutMiddleware)
	api.HandleFunc("/analysis/{symbol}", s.handleAnalysis).Methods(http.MethodGet)
	api.HandleFunc("/analysis/{symbol}/periodic/{period}", s.handlePeriodic).Methods(http.MethodGet)
	api.HandleFunc("/analysis/{symbol}/distribution/{period}", s.handleDistribution).Methods(http.MethodGet)
	api.HandleFunc("/history", s.handleHistory).Methods(http.MethodGet)

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "no route for "+r.URL.Path)
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe() error {
	log.Info().Str("addr", s.config.Addr).Msg("http server listening")
	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()[:8]
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWrapper) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) requestLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		id, _ := r.Context().Value(requestIDKey).(string)
		log.Info().
			Str("request_id", id).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapper.statusCode).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func (s *Server) timeoutMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), s.config.Timeout)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
