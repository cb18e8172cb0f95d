package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/triage-routing-engine/internal/api"
	"github.com/triage-routing-engine/internal/config"
	"github.com/triage-routing-engine/internal/domain"
	"github.com/triage-routing-engine/internal/history"
	"github.com/triage-routing-engine/internal/roster"
	"github.com/triage-routing-engine/internal/triage"
	"github.com/triage-routing-engine/pkg/external"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := newLogger(cfg.Logging)

	tcfg := configManager.GetTriageConfig()
	registry := triage.NewRegistry(tcfg)
	router := triage.NewRouter(logger, tcfg)
	balancer := triage.NewLoadBalancer(logger, registry, tcfg)
	scorer := triage.NewScorer(tcfg)
	predictor := triage.NewPredictor(tcfg)
	estimator := triage.NewEstimator(logger, registry, tcfg)
	cases := roster.New(logger, estimator)

	classifier := external.NewClassifierClient(logger, cfg.ExternalAPI.Classifier)

	var explainer domain.ExplanationService
	if cfg.ExternalAPI.Explainer.Enabled {
		cache, cerr := external.NewExplanationCache(logger, cfg.Cache)
		if cerr != nil {
			logger.WithError(cerr).Warn("Explanation cache unavailable, continuing without it")
			cache = nil
		}
		explainer = external.NewExplainerClient(logger, cfg.ExternalAPI.Explainer, cache)
	}

	var historyStore domain.HistoryStore
	switch cfg.History.Backend {
	case "sqlite":
		store, herr := history.NewSQLiteStore(cfg.History.SQLitePath)
		if herr != nil {
			logger.WithError(herr).Fatal("Failed to open SQLite history store")
		}
		historyStore = store
	case "postgres":
		store, herr := history.NewPostgresStoreFromURL(cfg.History.PostgresURL)
		if herr != nil {
			logger.WithError(herr).Fatal("Failed to open PostgreSQL history store")
		}
		historyStore = store
	}
	if historyStore != nil {
		defer historyStore.Close()
	}

	admissions := triage.NewAdmissionService(
		logger, classifier, explainer, cases, historyStore,
		router, balancer, scorer, predictor,
		cfg.ExternalAPI.Explainer.Timeout,
	)

	server := api.NewServer(configManager, logger, api.Deps{
		Admissions: admissions,
		Roster:     cases,
		Registry:   registry,
		Fairness:   triage.NewMonitor(logger),
		History:    historyStore,
		Generator:  triage.NewGenerator(time.Now().UnixNano()),
	})

	logger.WithFields(logrus.Fields{
		"host":        cfg.Server.Host,
		"port":        cfg.Server.Port,
		"departments": len(tcfg.Departments),
		"history":     cfg.History.Backend,
	}).Info("Starting triage routing engine")

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}

func newLogger(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if cfg.Output == "stderr" {
		logger.SetOutput(os.Stderr)
	} else {
		logger.SetOutput(os.Stdout)
	}
	return logger
}
