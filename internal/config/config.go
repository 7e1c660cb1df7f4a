// Package config loads the application configuration from file,
// environment, and documented defaults using Viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/ahse-server/internal/domain"
)

// Manager loads and validates application configuration.
type Manager struct {
	config *domain.Config
}

// NewManager creates a configuration manager, loading config.yaml (when
// present), AHSE_-prefixed environment variables, and defaults.
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from various sources.
func (m *Manager) loadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/ahse-server/")

	viper.SetEnvPrefix("AHSE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	m.setDefaults()

	// Config file is optional; defaults and environment variables apply
	// when it is absent.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values.
func (m *Manager) setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8000)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.rate_limit", 20)
	viper.SetDefault("server.rate_burst", 40)

	// Database defaults
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.path", "data/ahse.db")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.database", "ahse_db")
	viper.SetDefault("database.username", "ahse_user")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", "5m")

	// Cache defaults
	viper.SetDefault("cache.enabled", false)
	viper.SetDefault("cache.redis_url", "redis://localhost:6379")
	viper.SetDefault("cache.default_ttl", "24h")
	viper.SetDefault("cache.max_retries", 3)
	viper.SetDefault("cache.pool_size", 10)
	viper.SetDefault("cache.pool_timeout", "4s")
	viper.SetDefault("cache.memory_size", 256)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output", "stdout")

	// HRDB reference-data defaults
	viper.SetDefault("hrdb.base_url", "https://hrdb.nasa.gov/api/")
	viper.SetDefault("hrdb.timeout", "30s")
	viper.SetDefault("hrdb.rate_limit", 5)
	viper.SetDefault("hrdb.retry_count", 3)

	// Simulation model defaults
	viper.SetDefault("simulation.default_accuracy_threshold", 0.85)
	viper.SetDefault("simulation.max_simulation_days", 1000)
	viper.SetDefault("simulation.prediction_interval_days", 7)
	viper.SetDefault("simulation.confidence_threshold", 0.7)
	viper.SetDefault("simulation.muscle_atrophy_rate", 0.001)
	viper.SetDefault("simulation.bone_loss_rate", 0.0008)
	viper.SetDefault("simulation.cardiovascular_decline_rate", 0.0002)
	viper.SetDefault("simulation.immune_decline_rate", 0.0001)
	viper.SetDefault("simulation.cognitive_decline_rate", 0.0001)
	viper.SetDefault("simulation.dna_damage_rate", 0.0001)
	viper.SetDefault("simulation.stress_accumulation_rate", 0.0001)
	viper.SetDefault("simulation.sleep_decline_rate", 0.00005)

	// Recommendation scoring defaults
	viper.SetDefault("recommendation.max_recommendations", 10)
	viper.SetDefault("recommendation.benefit_weight", 0.4)
	viper.SetDefault("recommendation.feasibility_weight", 0.3)
	viper.SetDefault("recommendation.cost_weight", 0.2)
	viper.SetDefault("recommendation.timeline_weight", 0.1)
	viper.SetDefault("recommendation.high_risk_threshold", 0.7)
	viper.SetDefault("recommendation.medium_risk_threshold", 0.4)
	viper.SetDefault("recommendation.low_risk_threshold", 0.1)
}

// GetConfig returns the complete configuration.
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetServerConfig returns the HTTP server configuration.
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// GetSimulationConfig returns a value snapshot of the simulation model
// parameters. Engines hold the snapshot for the duration of a call, so a
// concurrent Reload cannot perturb an in-flight simulation.
func (m *Manager) GetSimulationConfig() domain.SimulationConfig {
	return m.config.Simulation
}

// GetRecommendationConfig returns a value snapshot of the recommendation
// scoring parameters.
func (m *Manager) GetRecommendationConfig() domain.RecommendationConfig {
	return m.config.Recommendation
}

// Reload re-reads the configuration sources. Not safe to call while
// simulations are in flight; callers snapshot engine configs before
// dispatching parallel batches.
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the loaded configuration.
func (m *Manager) Validate() error {
	cfg := m.config

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}

	switch cfg.Database.Driver {
	case "sqlite":
		if cfg.Database.Path == "" {
			return fmt.Errorf("sqlite database path is required")
		}
	case "postgres":
		if cfg.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if cfg.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if cfg.Database.Username == "" {
			return fmt.Errorf("database username is required")
		}
	default:
		return fmt.Errorf("unknown database driver: %s", cfg.Database.Driver)
	}

	if cfg.Cache.Enabled && cfg.Cache.RedisURL == "" {
		return fmt.Errorf("redis URL is required when caching is enabled")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(cfg.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", cfg.Logging.Level)
	}

	if err := cfg.Simulation.Validate(); err != nil {
		return err
	}
	return cfg.Recommendation.Validate()
}

// PostgresConnectionString returns a formatted connection string for the
// postgres store.
func (m *Manager) PostgresConnectionString() string {
	db := m.config.Database
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		db.Host, db.Port, db.Username, db.Password, db.Database, db.SSLMode)
}
