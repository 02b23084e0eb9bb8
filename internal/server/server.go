// Package server provides the HTTP API for the portfolio search service.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/devansh3112/product-harmony-sphere/internal/analytics"
	"github.com/devansh3112/product-harmony-sphere/internal/catalog"
	"github.com/devansh3112/product-harmony-sphere/internal/config"
	"github.com/devansh3112/product-harmony-sphere/internal/history"
	"github.com/devansh3112/product-harmony-sphere/internal/metrics"
	"github.com/devansh3112/product-harmony-sphere/internal/search"
)

// Server is the HTTP server for the portfolio API.
type Server struct {
	engine    *search.Engine
	history   *history.Store
	tracker   *analytics.Tracker
	editor    catalog.Editor
	counter   Counter
	config    *config.Config
	logger    *zap.Logger
	server    *http.Server
	startedAt time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithHistory enables recent-search history for suggestions and selections.
func WithHistory(h *history.Store) Option {
	return func(s *Server) { s.history = h }
}

// WithTracker sends search and click events to t.
func WithTracker(t *analytics.Tracker) Option {
	return func(s *Server) { s.tracker = t }
}

// WithEditor enables the candidate admin endpoints. Without it they answer 501.
func WithEditor(e catalog.Editor) Option {
	return func(s *Server) { s.editor = e }
}

// Counter reports how many candidates are being served.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// WithCounter reports catalog size in /status. Without it the editor is asked.
func WithCounter(c Counter) Option {
	return func(s *Server) { s.counter = c }
}

// NewServer creates a server with the given dependencies.
func NewServer(engine *search.Engine, cfg *config.Config, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = &config.Config{}
		config.ApplyDefaults(cfg)
	}
	s := &Server{
		engine:    engine,
		config:    cfg,
		logger:    logger,
		startedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router returns the API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware())
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Post("/search/select", s.handleSelect)
		r.Get("/suggestions", s.handleSuggestions)
		r.Get("/history", s.handleHistory)
		r.Delete("/history", s.handleClearHistory)
		r.Get("/commands", s.handleCommands)
		r.Get("/trending", s.handleTrending)
		r.Get("/candidates/{type}/{id}", s.handleGetCandidate)
		r.Put("/candidates", s.handleUpsertCandidate)
		r.Delete("/candidates/{type}/{id}", s.handleDeleteCandidate)
		r.Get("/status", s.handleStatus)
	})
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
