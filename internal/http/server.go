// Package http provides the API server that fronts the book workflow.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	workflowHTTP "github.com/allisson/bookflow/internal/workflow/http"
)

// Server represents the API HTTP server.
type Server struct {
	server *http.Server
	router *gin.Engine
	logger *slog.Logger
}

// NewServer creates a new API server with the workflow routes registered.
// Extra middlewares (CORS, rate limiting, HTTP metrics) are applied in order;
// nil entries are skipped so callers can pass conditionally built middleware.
func NewServer(
	host string,
	port int,
	logger *slog.Logger,
	bookHandler *workflowHTTP.BookHandler,
	middlewares ...gin.HandlerFunc,
) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New())
	router.Use(CustomLoggerMiddleware(logger))
	for _, middleware := range middlewares {
		if middleware != nil {
			router.Use(middleware)
		}
	}

	server := &Server{
		router: router,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}

	router.GET("/health", server.healthHandler)
	router.GET("/ready", server.readinessHandler)

	if bookHandler != nil {
		bookHandler.RegisterRoutes(router.Group("/v1"))
	}

	return server
}

// Handler returns the http.Handler for testing purposes.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) readinessHandler(c *gin.Context) {
	select {
	case <-c.Request.Context().Done():
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
	default:
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
