// Package server exposes the automation engine over HTTP: a JSON action
// dispatch endpoint, a health probe, Prometheus metrics, and a WebSocket
// screenshot stream for live preview.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/adminGCT4545/browserpilot/pkg/automation"
	"github.com/adminGCT4545/browserpilot/pkg/config"
	"github.com/adminGCT4545/browserpilot/pkg/logging"
)

// Server is the automation daemon's HTTP front end.
type Server struct {
	engine     *automation.Engine
	cfg        config.ServerConfig
	log        *logging.Logger
	metrics    *metrics
	engineGin  *gin.Engine
	httpServer *http.Server
}

// New creates a server around the engine. Routes are registered
// immediately; nothing listens until Start.
func New(engine *automation.Engine, cfg config.ServerConfig, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type"}
	router.Use(cors.New(corsConfig))

	s := &Server{
		engine:    engine,
		cfg:       cfg,
		log:       logger,
		metrics:   newMetrics(engine),
		engineGin: router,
	}

	router.GET("/health", s.handleHealth)
	router.POST("/browser/action", s.handleAction)
	router.GET("/browser/stream", s.handleStream)
	router.GET("/metrics", s.metrics.handler())

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

// Handler returns the underlying HTTP handler, primarily for tests.
func (s *Server) Handler() http.Handler {
	return s.engineGin
}

// Start begins serving and blocks until the listener stops.
func (s *Server) Start() error {
	s.log.Infof("automation server listening on %s", s.cfg.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener. The engine is
// shut down separately by the caller.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Infof("shutting down automation server")
	return s.httpServer.Shutdown(ctx)
}

// healthResponse is the /health payload.
type healthResponse struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	BrowserActive bool      `json:"browserActive"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{
		Status:        "ok",
		Timestamp:     time.Now(),
		BrowserActive: s.engine.Active(),
	})
}
