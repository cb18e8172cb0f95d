// Package api exposes the triage engine over HTTP. All decision logic
// lives in internal/triage; handlers translate transport concerns only.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/triage-routing-engine/internal/domain"
	"github.com/triage-routing-engine/internal/triage"
)

// Server represents the HTTP server
type Server struct {
	configManager domain.ConfigManager
	logger        *logrus.Logger
	router        *gin.Engine
	server        *http.Server

	admissions *triage.AdmissionService
	roster     domain.CaseRepository
	registry   *triage.Registry
	fairness   *triage.Monitor
	history    domain.HistoryStore
	generator  *triage.Generator
}

// Deps bundles the collaborators the HTTP layer exposes.
type Deps struct {
	Admissions *triage.AdmissionService
	Roster     domain.CaseRepository
	Registry   *triage.Registry
	Fairness   *triage.Monitor
	History    domain.HistoryStore
	Generator  *triage.Generator
}

// NewServer creates a new HTTP server instance
func NewServer(configManager domain.ConfigManager, logger *logrus.Logger, deps Deps) *Server {
	cfg := configManager.GetConfig()

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(requestIDMiddleware())
	router.Use(rateLimitMiddleware(logger, cfg.Server.RateLimitPerSec, cfg.Server.RateLimitBurst))

	server := &Server{
		configManager: configManager,
		logger:        logger,
		router:        router,
		admissions:    deps.Admissions,
		roster:        deps.Roster,
		registry:      deps.Registry,
		fairness:      deps.Fairness,
		history:       deps.History,
		generator:     deps.Generator,
	}

	server.setupRoutes()
	return server
}

// Start starts the HTTP server and blocks until ctx is cancelled.
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
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

// Handler exposes the underlying http.Handler for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api")
	{
		api.POST("/patients", s.handleAdmitPatient)
		api.GET("/patients", s.handleListPatients)
		api.GET("/patients/:id", s.handleGetPatient)
		api.DELETE("/patients/:id", s.handleDischargePatient)
		api.PUT("/patients/:id/vitals", s.handleUpdateVitals)

		api.GET("/departments/status", s.handleDepartmentStatus)
		api.GET("/dashboard", s.handleDashboard)
		api.GET("/symptoms", s.handleListSymptoms)
		api.GET("/fairness", s.handleFairness)

		api.POST("/simulation/add", s.handleSimulationAdd)
		api.POST("/simulation/spike", s.handleSimulationSpike)

		admin := api.Group("/admin")
		{
			admin.GET("/patients", s.handleAdminPatients)
			admin.GET("/export", s.handleAdminExport)
		}
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
