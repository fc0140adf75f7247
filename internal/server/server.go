// Package server provides the HTTP server implementation.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/quotestore/internal/auth"
	"github.com/vyrodovalexey/quotestore/internal/config"
	"github.com/vyrodovalexey/quotestore/internal/handler"
	"github.com/vyrodovalexey/quotestore/internal/middleware"
	"github.com/vyrodovalexey/quotestore/internal/service"
)

// Server represents the HTTP server.
type Server struct {
	httpServer    *http.Server
	router        *mux.Router
	handler       http.Handler
	config        *config.Config
	logger        *zap.Logger
	hub           *handler.EventHub
	authenticator auth.Authenticator
}

// New creates a new Server instance. hub may be nil when the change feed is
// disabled, and authenticator may be nil to leave mutations open.
func New(
	cfg *config.Config,
	logger *zap.Logger,
	quotes *service.QuoteService,
	hub *handler.EventHub,
	authenticator auth.Authenticator,
) *Server {
	s := &Server{
		router:        mux.NewRouter(),
		config:        cfg,
		logger:        logger,
		hub:           hub,
		authenticator: authenticator,
	}

	s.setupMiddleware()
	s.setupRoutes(quotes)
	s.setupHTTPServer()

	return s
}

// setupMiddleware configures the middleware chain.
func (s *Server) setupMiddleware() {
	// Apply middleware in order (first applied = outermost)
	s.router.Use(mux.MiddlewareFunc(middleware.Recovery(s.logger)))
	s.router.Use(mux.MiddlewareFunc(middleware.RequestID()))

	if s.config.MetricsEnabled {
		s.router.Use(mux.MiddlewareFunc(middleware.Metrics()))
	}

	s.router.Use(mux.MiddlewareFunc(middleware.Logging(s.logger)))

	if s.authenticator != nil {
		s.router.Use(mux.MiddlewareFunc(middleware.RequireAuth(s.authenticator, s.logger)))
	}

	// mux skips its middleware when no route matches the method, so CORS
	// wraps the router to answer preflight requests for every path.
	allowedMethods := []string{
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodDelete,
		http.MethodOptions,
	}
	allowedHeaders := []string{
		"Content-Type",
		"Authorization",
		auth.APIKeyHeader,
		middleware.RequestIDHeader,
	}
	cors := middleware.CORS(s.config.CORSAllowedOrigins, allowedMethods, allowedHeaders)
	s.handler = cors(s.router)
}

// setupRoutes configures the API routes.
func (s *Server) setupRoutes(quotes *service.QuoteService) {
	restHandler := handler.NewRESTHandler(quotes, s.logger, s.config.PopularTagsLimit)
	restHandler.RegisterRoutes(s.router)

	if s.config.EventsEnabled && s.hub != nil {
		s.hub.RegisterRoutes(s.router)
	}

	if s.config.MetricsEnabled {
		s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}
}

// setupHTTPServer configures the HTTP server.
func (s *Server) setupHTTPServer() {
	s.httpServer = &http.Server{
		Addr:              s.config.Address(),
		Handler:           s.handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MB
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	authMethod := string(auth.MethodNone)
	if s.authenticator != nil {
		authMethod = string(s.authenticator.Method())
	}

	s.logger.Info("starting server",
		zap.String("address", s.config.Address()),
		zap.Bool("metrics_enabled", s.config.MetricsEnabled),
		zap.Bool("events_enabled", s.config.EventsEnabled),
		zap.String("auth_method", authMethod),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server listen and serve: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	// Hijacked connections are not tracked by http.Server.
	if s.hub != nil {
		s.hub.CloseAllConnections()
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// Handler returns the root handler, including CORS.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Router returns the server's router for testing purposes.
func (s *Server) Router() *mux.Router {
	return s.router
}
