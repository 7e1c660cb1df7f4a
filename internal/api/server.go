// Package api exposes the simulation and recommendation engines over a
// REST interface. Simulation IDs are assigned here, at the edge, so the
// engines themselves stay deterministic.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ahse-server/internal/cache"
	"github.com/ahse-server/internal/config"
	"github.com/ahse-server/internal/middleware"
	"github.com/ahse-server/internal/repository"
	"github.com/ahse-server/internal/service"
	"github.com/ahse-server/pkg/external"
)

// Server represents the HTTP server
type Server struct {
	configManager  *config.Manager
	logger         *logrus.Logger
	simulation     *service.SimulationEngine
	recommendation *service.RecommendationEngine
	store          repository.Store
	results        cache.ResultCache
	hrdb           *external.HRDBClient
	archive        *repository.PredictionArchive
	router         *gin.Engine
	server         *http.Server
}

// Dependencies bundles the server's collaborators. Results, HRDB, and
// Archive are optional: without a cache every simulation request is
// computed fresh, without an HRDB client requests must carry a full
// baseline, and without an archive per-tick rows are not retained.
type Dependencies struct {
	Logger         *logrus.Logger
	Simulation     *service.SimulationEngine
	Recommendation *service.RecommendationEngine
	Store          repository.Store
	Results        cache.ResultCache
	HRDB           *external.HRDBClient
	Archive        *repository.PredictionArchive
}

// NewServer creates a new HTTP server instance.
func NewServer(configManager *config.Manager, deps Dependencies) *Server {
	cfg := configManager.GetConfig()

	// Set Gin mode based on environment
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(corsMiddleware())
	if cfg.Server.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(float64(cfg.Server.RateLimit), cfg.Server.RateBurst)
		router.Use(limiter.Handler())
	}

	server := &Server{
		configManager:  configManager,
		logger:         deps.Logger,
		simulation:     deps.Simulation,
		recommendation: deps.Recommendation,
		store:          deps.Store,
		results:        deps.Results,
		hrdb:           deps.HRDB,
		archive:        deps.Archive,
		router:         router,
	}

	// Setup routes
	server.setupRoutes()

	return server
}

// Router exposes the underlying gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start starts the HTTP server and blocks until the context is
// cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.configManager.GetServerConfig()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithFields(logrus.Fields{"addr": addr}).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.GET("/health", s.handleHealth)

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/simulate", s.handleSimulate)
		v1.POST("/recommendations", s.handleRecommendations)
		v1.POST("/mission-plan", s.handleMissionPlan)
		v1.GET("/simulations", s.handleListSimulations)
		v1.GET("/simulations/:id", s.handleGetSimulation)
		v1.GET("/simulations/:id/predictions", s.handleArchivedPredictions)
		v1.DELETE("/simulations/:id", s.handleDeleteSimulation)
		v1.GET("/missions/:type/outcomes", s.handleMissionOutcomes)
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   "1.0.0",
	})
}

// corsMiddleware adds CORS headers to responses
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-Correlation-ID")
		c.Header("Access-Control-Expose-Headers", "Content-Length, X-Correlation-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
