// Package api serves the keyword library over HTTP. Every request that
// touches a browser goes through a single queue, so keywords run one at a
// time.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/luispater/seleniumKeywordAPI/internal/library"
	log "github.com/sirupsen/logrus"
)

// Server represents the API server
type Server struct {
	engine    *gin.Engine
	server    *http.Server
	queue     *RequestQueue
	processor *KeywordProcessor
	handlers  *APIHandlers
	version   string
}

// ServerConfig contains configuration for the API server
type ServerConfig struct {
	Port           string
	Debug          bool
	Version        string
	QueueSize      int
	RequestTimeout time.Duration
}

// NewServer creates a new API server instance
func NewServer(config *ServerConfig, lib *library.Library) *Server {
	// Set gin mode
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	processor := NewKeywordProcessor(lib)
	queue := NewRequestQueue(processor, config.QueueSize)
	handlers := NewAPIHandlers(lib, queue, config.RequestTimeout)

	engine := gin.New()
	engine.Use(gin.Logger())
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	s := &Server{
		engine:    engine,
		queue:     queue,
		processor: processor,
		handlers:  handlers,
		version:   config.Version,
	}
	s.setupRoutes()

	s.server = &http.Server{
		Addr:    ":" + config.Port,
		Handler: engine,
	}

	return s
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	keywords := s.engine.Group("/keywords")
	{
		keywords.GET("", s.handlers.ListKeywords)
		keywords.GET("/:name", s.handlers.GetKeyword)
		keywords.POST("/:name/run", s.handlers.RunKeyword)
	}
	s.engine.GET("/sessions", s.handlers.ListSessions)
	s.engine.GET("/screenshot", s.handlers.TakeScreenshot)
	s.engine.POST("/suites/run", s.handlers.RunSuite)

	// Root endpoint
	s.engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Selenium Keyword API Server",
			"version": s.version,
			"queue": gin.H{
				"pending":   s.queue.GetQueueLength(),
				"processed": s.queue.Processed(),
			},
			"endpoints": []string{
				"GET /keywords",
				"GET /keywords/:name",
				"POST /keywords/:name/run",
				"GET /sessions",
				"GET /screenshot",
				"POST /suites/run",
			},
		})
	})
}

// Start starts the API server
func (s *Server) Start() error {
	// Start the request queue
	if err := s.queue.Start(); err != nil {
		return fmt.Errorf("failed to start request queue: %v", err)
	}

	log.Debugf("Starting API server on %s", s.server.Addr)

	// Start the HTTP server
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %v", err)
	}

	return nil
}

// Stop gracefully stops the API server. A running suite stops after its
// current step and runs its teardown. Browsers opened by single keywords
// stay open; the caller closes the library.
func (s *Server) Stop(ctx context.Context) error {
	log.Debug("Stopping API server...")
	s.processor.Abort()

	// Shutdown the HTTP server first so no new tasks arrive
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %v", err)
	}

	if err := s.queue.Stop(); err != nil {
		log.Debugf("Error stopping request queue: %v", err)
	}

	log.Debug("API server stopped")
	return nil
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
