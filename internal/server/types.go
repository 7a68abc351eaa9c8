// Package server exposes the screenshot analysis pipeline over HTTP and
// WebSocket endpoints.
package server

import (
	"context"
	"image"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/screentel/screentel/internal/assembler"
	"github.com/screentel/screentel/internal/history"
	"github.com/screentel/screentel/internal/ocr"
	"github.com/screentel/screentel/internal/pipeline"
)

// analyzer defines the methods needed by the server from a pipeline.
type analyzer interface {
	Analyze(ctx context.Context, img image.Image, opts pipeline.Options) *assembler.Response
	Operators() []string
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	pipeline     analyzer
	history      *history.Store
	rateLimiter  *RateLimiter
	corsOrigin   string
	maxUploadMB  int64
	timeoutSec   int
	uploadsDir   string
	saveUploads  bool
	historyLimit int
}

// Config holds server configuration.
type Config struct {
	Host           string
	Port           int
	CORSOrigin     string
	MaxUploadMB    int64
	TimeoutSec     int
	UploadsDir     string
	SaveUploads    bool
	HistoryLimit   int
	PipelineConfig pipeline.Config
	Engine         ocr.Engine // optional; nil selects the registered default
}

// OperatorsResponse lists the configured carrier lexicon.
type OperatorsResponse struct {
	Operators []string `json:"operators"`
	Count     int      `json:"count"`
}

// HealthResponse reports server liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// RecordsResponse lists stored analysis records.
type RecordsResponse struct {
	Records []history.Record `json:"records"`
	Count   int              `json:"count"`
}

// NewServer creates a new analysis server instance.
func NewServer(cfg Config) (*Server, error) {
	pl, err := pipeline.NewBuilder().
		WithConfig(cfg.PipelineConfig).
		WithEngine(cfg.Engine).
		Build()
	if err != nil {
		return nil, err
	}

	return &Server{
		pipeline:     pl,
		corsOrigin:   cfg.CORSOrigin,
		maxUploadMB:  cfg.MaxUploadMB,
		timeoutSec:   cfg.TimeoutSec,
		uploadsDir:   cfg.UploadsDir,
		saveUploads:  cfg.SaveUploads,
		historyLimit: cfg.HistoryLimit,
	}, nil
}

// WithHistory attaches a history store. Analyses are then persisted and the
// records endpoints become functional.
func (s *Server) WithHistory(store *history.Store) *Server {
	s.history = store
	return s
}

// WithRateLimiter attaches a rate limiter to the analysis endpoints.
func (s *Server) WithRateLimiter(rl *RateLimiter) *Server {
	s.rateLimiter = rl
	return s
}

// Close releases server resources.
func (s *Server) Close() error {
	if s.history != nil {
		return s.history.Close()
	}
	return nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/api/operators", s.corsMiddleware(s.operatorsHandler))
	mux.HandleFunc("/api/analyze", s.corsMiddleware(s.rateLimitMiddleware(s.analyzeHandler)))
	mux.HandleFunc("/analyze", s.corsMiddleware(s.rateLimitMiddleware(s.analyzeHandler)))
	mux.HandleFunc("/records", s.corsMiddleware(s.recordsHandler))
	mux.HandleFunc("/records/", s.corsMiddleware(s.recordHandler))
	mux.HandleFunc("/ws/analyze", s.analyzeWebSocketHandler)
	mux.Handle("/metrics", promhttp.Handler())

	if s.saveUploads && s.uploadsDir != "" {
		mux.Handle("/uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.uploadsDir))))
	}
}
