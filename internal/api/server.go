// Package api serves the read-only dashboard over the paper ledger.
// Every request reads the document fresh from disk; the scan cycle
// stays the only writer.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/kaiquant/kai/internal/ledger"
	"github.com/kaiquant/kai/internal/market"
	"github.com/kaiquant/kai/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Capital float64 // First-run wallet capital, matches the scanner's.
}

// Server is the dashboard HTTP server.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux

	cfg      Config
	store    *ledger.Store
	provider market.Provider // May be nil; positions then show entry prices.
	reg      *metrics.Registry
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, store *ledger.Store, provider market.Provider, reg *metrics.Registry, logger *zap.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		logger:   logger,
		mux:      mux,
		cfg:      cfg,
		store:    store,
		provider: provider,
		reg:      reg,
	}
	s.setupRoutes()

	var handler http.Handler = mux
	handler = metrics.LoggingMiddleware(logger)(handler)
	if reg != nil {
		handler = metrics.HTTPMiddleware(reg)(handler)
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/", s.handleDashboard)

	s.mux.HandleFunc("/api/portfolio", s.handlePortfolio)
	s.mux.HandleFunc("/api/positions", s.handlePositions)
	s.mux.HandleFunc("/api/trades", s.handleTrades)
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.reg != nil {
		s.mux.Handle("/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))
	}
}

// Handler exposes the full middleware-wrapped handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
