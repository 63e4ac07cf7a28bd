package http_api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sadaqapass/sadaqa/internal/auth"
	"github.com/sadaqapass/sadaqa/internal/config"
	"github.com/sadaqapass/sadaqa/internal/models"
	"github.com/sadaqapass/sadaqa/pkg/logger"
)

const (
	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout = 10 * time.Second
	// maxWebhookBody caps the provider notification bodies we read.
	maxWebhookBody = 1 << 20
)

// HTTPServer is the HTTP server struct that will serve the API
type HTTPServer struct {
	// logger is the logger instance
	logger *logger.Logger
	config *config.Config

	// router is the HTTP router
	router *gin.Engine
	// port is the port on which the server will listen
	port int

	// server is the underlying HTTP server
	server *http.Server

	// sadaqa is the business layer
	sadaqa models.SadaqaI
	// tokens issues and checks web bearer tokens
	tokens *auth.Tokens
}

// NewHTTPServer creates a new HTTP server instance
func NewHTTPServer(sadaqa models.SadaqaI, cfg *config.Config, tokens *auth.Tokens, logger *logger.Logger) models.APIServer {
	return newHTTPServer(sadaqa, cfg, tokens, logger)
}

func newHTTPServer(sadaqa models.SadaqaI, cfg *config.Config, tokens *auth.Tokens, logger *logger.Logger) *HTTPServer {
	if !cfg.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		recoveryMiddleware(logger),
		requestIDMiddleware(),
		accessLogMiddleware(logger),
		corsMiddleware(),
	)

	server := &HTTPServer{
		logger: logger,
		config: cfg,
		router: router,
		port:   cfg.APIPort,
		sadaqa: sadaqa,
		tokens: tokens,
	}

	// Define routes
	server.routes()

	return server
}

// Start starts the HTTP server
func (s *HTTPServer) Start() {
	addr := fmt.Sprintf("0.0.0.0:%v", s.port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("Starting HTTP server", "address", addr, "prefix", s.config.APIPrefix)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Fatal("Failed to start the HTTP server", "error", err)
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *HTTPServer) Shutdown() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	s.logger.Info("Shutting down HTTP server...")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP server shutdown error: %w", err)
	}

	s.logger.Info("HTTP server shut down successfully")
	return nil
}
