package domain

import "time"

// Config is the main application configuration. The engine sections are
// value structs: callers snapshot them per call, so a Reload never races
// an in-flight simulation.
type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Cache          CacheConfig          `mapstructure:"cache"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	HRDB           HRDBConfig           `mapstructure:"hrdb"`
	Simulation     SimulationConfig     `mapstructure:"simulation"`
	Recommendation RecommendationConfig `mapstructure:"recommendation"`
}

// ServerConfig represents HTTP server configuration.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	RateLimit    int           `mapstructure:"rate_limit"` // requests per second per client
	RateBurst    int           `mapstructure:"rate_burst"`
}

// DatabaseConfig represents persistence configuration. Driver selects the
// store implementation: "sqlite" (embedded) or "postgres".
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"` // sqlite file path
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// CacheConfig represents the API result-cache configuration.
type CacheConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	RedisURL    string        `mapstructure:"redis_url"`
	DefaultTTL  time.Duration `mapstructure:"default_ttl"`
	MaxRetries  int           `mapstructure:"max_retries"`
	PoolSize    int           `mapstructure:"pool_size"`
	PoolTimeout time.Duration `mapstructure:"pool_timeout"`
	MemorySize  int           `mapstructure:"memory_size"` // LRU hot-tier entries
}

// LoggingConfig represents logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// HRDBConfig configures the Human Research Database reference client.
type HRDBConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RateLimit  int           `mapstructure:"rate_limit"`
	RetryCount int           `mapstructure:"retry_count"`
}

// SimulationConfig holds the per-indicator decay/accumulation rates and
// projection parameters. All rates are per-day and must be non-negative.
type SimulationConfig struct {
	DefaultAccuracyThreshold float64 `mapstructure:"default_accuracy_threshold"`
	MaxSimulationDays        int     `mapstructure:"max_simulation_days"`
	PredictionIntervalDays   int     `mapstructure:"prediction_interval_days"`
	ConfidenceThreshold      float64 `mapstructure:"confidence_threshold"`

	MuscleAtrophyRate         float64 `mapstructure:"muscle_atrophy_rate"`
	BoneLossRate              float64 `mapstructure:"bone_loss_rate"`
	CardiovascularDeclineRate float64 `mapstructure:"cardiovascular_decline_rate"`
	ImmuneDeclineRate         float64 `mapstructure:"immune_decline_rate"`
	CognitiveDeclineRate      float64 `mapstructure:"cognitive_decline_rate"`
	DNADamageRate             float64 `mapstructure:"dna_damage_rate"`
	StressAccumulationRate    float64 `mapstructure:"stress_accumulation_rate"`
	SleepDeclineRate          float64 `mapstructure:"sleep_decline_rate"`
}

// DefaultSimulationConfig returns the documented model defaults.
func DefaultSimulationConfig() SimulationConfig {
	return SimulationConfig{
		DefaultAccuracyThreshold:  0.85,
		MaxSimulationDays:         1000,
		PredictionIntervalDays:    7,
		ConfidenceThreshold:       0.7,
		MuscleAtrophyRate:         0.001,
		BoneLossRate:              0.0008,
		CardiovascularDeclineRate: 0.0002,
		ImmuneDeclineRate:         0.0001,
		CognitiveDeclineRate:      0.0001,
		DNADamageRate:             0.0001,
		StressAccumulationRate:    0.0001,
		SleepDeclineRate:          0.00005,
	}
}

// Validate checks every rate and threshold against its declared range.
func (c SimulationConfig) Validate() error {
	if c.MaxSimulationDays <= 0 {
		return NewConfigurationError("simulation.max_simulation_days", "must be positive", c.MaxSimulationDays)
	}
	if c.PredictionIntervalDays <= 0 {
		return NewConfigurationError("simulation.prediction_interval_days", "must be positive", c.PredictionIntervalDays)
	}
	if c.DefaultAccuracyThreshold < 0 || c.DefaultAccuracyThreshold > 1 {
		return NewConfigurationError("simulation.default_accuracy_threshold", "must be within [0, 1]", c.DefaultAccuracyThreshold)
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return NewConfigurationError("simulation.confidence_threshold", "must be within [0, 1]", c.ConfidenceThreshold)
	}
	rates := []struct {
		setting string
		value   float64
	}{
		{"simulation.muscle_atrophy_rate", c.MuscleAtrophyRate},
		{"simulation.bone_loss_rate", c.BoneLossRate},
		{"simulation.cardiovascular_decline_rate", c.CardiovascularDeclineRate},
		{"simulation.immune_decline_rate", c.ImmuneDeclineRate},
		{"simulation.cognitive_decline_rate", c.CognitiveDeclineRate},
		{"simulation.dna_damage_rate", c.DNADamageRate},
		{"simulation.stress_accumulation_rate", c.StressAccumulationRate},
		{"simulation.sleep_decline_rate", c.SleepDeclineRate},
	}
	for _, r := range rates {
		if r.value < 0 {
			return NewConfigurationError(r.setting, "must be non-negative", r.value)
		}
	}
	return nil
}

// RiskThresholds partitions severity into high/medium/low bands. All
// values live in [0,1] with High >= Medium >= Low.
type RiskThresholds struct {
	High   float64 `mapstructure:"high_risk_threshold"`
	Medium float64 `mapstructure:"medium_risk_threshold"`
	Low    float64 `mapstructure:"low_risk_threshold"`
}

// Validate checks the band boundaries.
func (t RiskThresholds) Validate() error {
	bands := []struct {
		setting string
		value   float64
	}{
		{"recommendation.high_risk_threshold", t.High},
		{"recommendation.medium_risk_threshold", t.Medium},
		{"recommendation.low_risk_threshold", t.Low},
	}
	for _, b := range bands {
		if b.value < 0 || b.value > 1 {
			return NewConfigurationError(b.setting, "must be within [0, 1]", b.value)
		}
	}
	if t.High < t.Medium || t.Medium < t.Low {
		return NewConfigurationError("recommendation.risk_thresholds", "must be ordered high >= medium >= low", t)
	}
	return nil
}

// RecommendationConfig holds the scoring weights and risk thresholds for
// countermeasure generation.
type RecommendationConfig struct {
	MaxRecommendations int     `mapstructure:"max_recommendations"`
	BenefitWeight      float64 `mapstructure:"benefit_weight"`
	FeasibilityWeight  float64 `mapstructure:"feasibility_weight"`
	CostWeight         float64 `mapstructure:"cost_weight"`
	TimelineWeight     float64 `mapstructure:"timeline_weight"`

	Thresholds RiskThresholds `mapstructure:",squash"`
}

// DefaultRecommendationConfig returns the documented scoring defaults.
func DefaultRecommendationConfig() RecommendationConfig {
	return RecommendationConfig{
		MaxRecommendations: 10,
		BenefitWeight:      0.4,
		FeasibilityWeight:  0.3,
		CostWeight:         0.2,
		TimelineWeight:     0.1,
		Thresholds: RiskThresholds{
			High:   0.7,
			Medium: 0.4,
			Low:    0.1,
		},
	}
}

// Validate checks every weight and threshold against its declared range.
func (c RecommendationConfig) Validate() error {
	if c.MaxRecommendations <= 0 {
		return NewConfigurationError("recommendation.max_recommendations", "must be positive", c.MaxRecommendations)
	}
	weights := []struct {
		setting string
		value   float64
	}{
		{"recommendation.benefit_weight", c.BenefitWeight},
		{"recommendation.feasibility_weight", c.FeasibilityWeight},
		{"recommendation.cost_weight", c.CostWeight},
		{"recommendation.timeline_weight", c.TimelineWeight},
	}
	for _, w := range weights {
		if w.value < 0 || w.value > 1 {
			return NewConfigurationError(w.setting, "must be within [0, 1]", w.value)
		}
	}
	return c.Thresholds.Validate()
}
