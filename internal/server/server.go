package server

import (
	"context"
	"net/http"
	"time"

	"gorm.io/gorm"

	"rubberstock/internal/handlers"
	applog "rubberstock/internal/log"
	"rubberstock/internal/metrics"
)

// Config captures the runtime configuration for the HTTP server.
type Config struct {
	Addr     string
	Database *gorm.DB
	Metrics  *metrics.Collector
}

// Server wraps an http.Server serving the development stock API.
type Server struct {
	config     Config
	httpServer *http.Server
}

// New builds a new Server using the provided configuration. A nil Metrics
// collector is replaced with a fresh one so /metrics is always served.
func New(cfg Config) (*Server, error) {
	applog.Debug(context.Background(), "initializing server", "addr", cfg.Addr)

	if cfg.Metrics == nil {
		applog.Debug(context.Background(), "metrics collector not provided, using default")
		cfg.Metrics = metrics.New()
	}

	handlers.Configure(cfg.Database)

	applog.Debug(context.Background(), "handler dependencies configured")

	return &Server{
		config: cfg,
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           newRouter(cfg.Metrics),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

// Start begins serving HTTP traffic using the underlying http.Server.
func (s *Server) Start() error {
	applog.Debug(context.Background(), "server starting listener", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the HTTP server with a timeout.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	applog.Debug(ctx, "server initiating graceful shutdown")
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the configured HTTP handler, enabling integration tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
