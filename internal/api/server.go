// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	handler "github.com/newthinker/folio/internal/api/handler/api"
	"github.com/newthinker/folio/internal/api/job"
	"github.com/newthinker/folio/internal/api/middleware"
	"github.com/newthinker/folio/internal/api/response"
	"github.com/newthinker/folio/internal/app"
	"github.com/newthinker/folio/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server represents the HTTP server for folio
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
	deps       Dependencies
}

// Config holds server configuration
type Config struct {
	Host        string
	Port        int
	APIKey      string
	MetricsPath string
}

// Dependencies are the components the routes serve.
type Dependencies struct {
	App     *app.App
	Metrics *metrics.Registry // optional
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if deps.App == nil {
		return nil, fmt.Errorf("app is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	mux := http.NewServeMux()
	s := &Server{
		logger: logger,
		mux:    mux,
		deps:   deps,
	}
	s.setupRoutes(cfg)

	public := []string{"/api/health"}
	if deps.Metrics != nil && cfg.MetricsPath != "" {
		public = append(public, cfg.MetricsPath)
	}

	var h http.Handler = mux
	h = middleware.APIKeyAuth(cfg.APIKey, public...)(h)
	h = metrics.LoggingMiddleware(logger)(h)
	if deps.Metrics != nil {
		h = metrics.HTTPMiddleware(deps.Metrics)(h)
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config) {
	market := handler.NewMarketHandler(s.deps.App, job.NewStore(job.DefaultMaxSize, job.DefaultTTL))
	favorites := handler.NewFavoritesHandler(s.deps.App)
	trades := handler.NewTradesHandler(s.deps.App)

	s.mux.HandleFunc("GET /api/health", s.handleHealth)

	s.mux.HandleFunc("GET /api/state", market.State)
	s.mux.HandleFunc("GET /api/home", market.Home)
	s.mux.HandleFunc("GET /api/statistics", market.Statistics)
	s.mux.HandleFunc("GET /api/assets", market.Assets)
	s.mux.HandleFunc("POST /api/refresh", market.Refresh)
	s.mux.HandleFunc("GET /api/refresh/{id}", market.Job)

	s.mux.HandleFunc("GET /api/favorites", favorites.List)
	s.mux.HandleFunc("POST /api/favorites", favorites.Add)
	s.mux.HandleFunc("DELETE /api/favorites/{ticker}", favorites.Remove)

	s.mux.HandleFunc("POST /api/trades", trades.Create)

	if s.deps.Metrics != nil && cfg.MetricsPath != "" {
		s.mux.Handle("GET "+cfg.MetricsPath, promhttp.HandlerFor(s.deps.Metrics, promhttp.HandlerOpts{}))
	}
}

// Handler returns the fully wrapped root handler
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
	response.JSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"stats":  s.deps.App.GetStats(),
	})
}
