package server

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	ginhandler "user-resource-service/internal/adapter/gin/handler"
	ginmiddleware "user-resource-service/internal/adapter/gin/middleware"
	ginrouter "user-resource-service/internal/adapter/gin/router"
	"user-resource-service/internal/config"
)

// Server wraps the HTTP server serving the user resource API.
type Server struct {
	Config *config.Config
	Logger *zap.Logger
	HTTP   *http.Server
}

// New creates a new server instance with the router fully wired.
func New(
	cfg *config.Config,
	l *zap.Logger,
	handler *ginhandler.UserHandler,
	rateLimiter *ginmiddleware.RateLimiter,
) *Server {
	router := ginrouter.SetupRouter(handler, rateLimiter, l)

	httpServer := &http.Server{
		Addr:              ":" + cfg.App.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{
		Config: cfg,
		Logger: l,
		HTTP:   httpServer,
	}
}

// Start begins serving HTTP requests. It blocks until the server stops.
func (s *Server) Start() error {
	s.Logger.Info("HTTP server running", zap.String("address", s.HTTP.Addr))

	if err := s.HTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
