package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/ahse-server/internal/api"
	"github.com/ahse-server/internal/cache"
	"github.com/ahse-server/internal/config"
	"github.com/ahse-server/internal/repository"
	"github.com/ahse-server/internal/service"
	"github.com/ahse-server/pkg/external"
)

func main() {
	// Local development overrides; absence is not an error
	_ = godotenv.Load()

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
	logger := newLogger(cfg.Logging.Level, cfg.Logging.Format)
	logger.WithFields(logrus.Fields{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Starting Astronaut Health Simulation server")

	// Open persistence
	store, err := newStore(configManager)
	if err != nil {
		logger.WithFields(logrus.Fields{"error": err}).Fatal("Failed to open simulation store")
	}
	defer store.Close()

	// Optional result cache
	results, err := newResultCache(configManager, logger)
	if err != nil {
		logger.WithFields(logrus.Fields{"error": err}).Fatal("Failed to initialize result cache")
	}
	if results != nil {
		defer results.Close()
	}

	// Engines
	simulation := service.NewSimulationEngine(logger,
		configManager.GetSimulationConfig(),
		configManager.GetRecommendationConfig().Thresholds)
	recommendation := service.NewRecommendationEngine(logger,
		configManager.GetRecommendationConfig())

	// Reference-data client
	hrdb := external.NewHRDBClient(cfg.HRDB, logger)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Per-tick archive piggybacks on the postgres driver
	var archive *repository.PredictionArchive
	if cfg.Database.Driver == "postgres" {
		pool, err := pgxpool.New(ctx, configManager.PostgresConnectionString())
		if err != nil {
			logger.WithFields(logrus.Fields{"error": err}).Fatal("Failed to open archive pool")
		}
		defer pool.Close()
		archive = repository.NewPredictionArchive(pool, logger)
	}

	// Create server
	server := api.NewServer(configManager, api.Dependencies{
		Logger:         logger,
		Simulation:     simulation,
		Recommendation: recommendation,
		Store:          store,
		Results:        results,
		HRDB:           hrdb,
		Archive:        archive,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down")
		cancel()
	}()

	// Start server
	if err := server.Start(ctx); err != nil {
		logger.WithFields(logrus.Fields{"error": err}).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}

func newLogger(level, format string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)

	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

func newStore(configManager *config.Manager) (repository.Store, error) {
	cfg := configManager.GetConfig()
	switch cfg.Database.Driver {
	case "postgres":
		return repository.NewPostgresStoreFromDSN(configManager.PostgresConnectionString())
	default:
		return repository.NewSQLiteStore(cfg.Database.Path)
	}
}

func newResultCache(configManager *config.Manager, logger *logrus.Logger) (cache.ResultCache, error) {
	cfg := configManager.GetConfig()
	if !cfg.Cache.Enabled {
		return nil, nil
	}

	local, err := cache.NewMemoryCache(cfg.Cache.MemorySize, cfg.Cache.DefaultTTL)
	if err != nil {
		return nil, err
	}
	if cfg.Cache.RedisURL == "" {
		return local, nil
	}

	shared, err := cache.NewRedisCache(cfg.Cache.RedisURL, cfg.Cache.DefaultTTL, logger)
	if err != nil {
		return nil, err
	}
	return cache.NewTiered(local, shared), nil
}
