package domain

import (
	"time"
)

// Config represents the main application configuration
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Triage      TriageConfig      `mapstructure:"triage"`
	ExternalAPI ExternalAPIConfig `mapstructure:"external_api"`
	Cache       CacheConfig       `mapstructure:"cache"`
	History     HistoryConfig     `mapstructure:"history"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	RateLimitPerSec float64       `mapstructure:"rate_limit_per_sec"`
	RateLimitBurst  int           `mapstructure:"rate_limit_burst"`
}

// DepartmentConfig represents one entry of the department capacity registry.
type DepartmentConfig struct {
	Name        string `mapstructure:"name"`
	MaxCapacity int    `mapstructure:"max_capacity"`
}

// RoutingRule is one ordered entry of the symptom-to-department rule
// table. Rules are evaluated first-match-wins: the first rule whose
// trigger set intersects the case's symptoms decides the department.
// Order encodes clinical priority and is a first-class, testable artifact.
type RoutingRule struct {
	Symptoms   []string `mapstructure:"symptoms"`
	Department string   `mapstructure:"department"`
}

// TriageConfig represents the routing, capacity and queueing parameters
// of the triage engine. All of it is injected configuration so tests can
// substitute capacities and rule tables.
type TriageConfig struct {
	Departments     []DepartmentConfig `mapstructure:"departments"`
	DefaultCapacity int                `mapstructure:"default_capacity"`

	// OverloadThresholdPercent is the load percentage at or above which
	// a department is considered unable to accept further routing.
	OverloadThresholdPercent float64 `mapstructure:"overload_threshold_percent"`

	// CapabilityOrder lists departments most acute-capable first; the
	// load balancer prefers alternates in this order.
	CapabilityOrder []string `mapstructure:"capability_order"`

	RoutingRules []RoutingRule     `mapstructure:"routing_rules"`
	TierDefaults map[string]string `mapstructure:"tier_defaults"`

	Priority PriorityConfig `mapstructure:"priority"`
	Wait     WaitConfig     `mapstructure:"wait"`
	Severity SeverityConfig `mapstructure:"severity"`
}

// PriorityConfig holds the urgency scoring constants.
type PriorityConfig struct {
	HighBase         int     `mapstructure:"high_base"`
	MediumBase       int     `mapstructure:"medium_base"`
	LowBase          int     `mapstructure:"low_base"`
	UnknownBase      int     `mapstructure:"unknown_base"`
	ConfidenceWeight float64 `mapstructure:"confidence_weight"`
}

// WaitConfig holds the wait-time projection constants.
type WaitConfig struct {
	// BaseMinutes is the per-slot wait quantum.
	BaseMinutes int `mapstructure:"base_minutes"`
	// MinimumMinutes is the floor below which no projection falls.
	MinimumMinutes int `mapstructure:"minimum_minutes"`
	// HighRiskPressureStep is the per-active-high-risk-case increment of
	// the system-wide acuity pressure factor.
	HighRiskPressureStep float64 `mapstructure:"high_risk_pressure_step"`
}

// SeverityConfig holds the vital thresholds of the severity timeline
// decision table.
type SeverityConfig struct {
	SpO2Critical     int     `mapstructure:"spo2_critical"`
	SpO2LowNormal    int     `mapstructure:"spo2_low_normal"`
	HeartRateHigh    int     `mapstructure:"heart_rate_high"`
	HeartRateElev    int     `mapstructure:"heart_rate_elevated"`
	SystolicHigh     int     `mapstructure:"systolic_high"`
	FeverHigh        float64 `mapstructure:"fever_high"`
	TempMildElevated float64 `mapstructure:"temp_mild_elevated"`
}

// ExternalAPIConfig represents external service configuration
type ExternalAPIConfig struct {
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Explainer  ExplainerConfig  `mapstructure:"explainer"`
}

// ClassifierConfig represents the risk-classification service configuration
type ClassifierConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RetryCount int           `mapstructure:"retry_count"`
}

// ExplainerConfig represents the optional explanation service
// configuration. The Timeout bounds the per-request call; on failure or
// timeout the engine falls back to rule-based reasoning.
type ExplainerConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// CacheConfig represents explanation-cache configuration
type CacheConfig struct {
	RedisURL      string        `mapstructure:"redis_url"`
	RedisEnabled  bool          `mapstructure:"redis_enabled"`
	DefaultTTL    time.Duration `mapstructure:"default_ttl"`
	MaxRetries    int           `mapstructure:"max_retries"`
	PoolSize      int           `mapstructure:"pool_size"`
	PoolTimeout   time.Duration `mapstructure:"pool_timeout"`
	MemoryEntries int           `mapstructure:"memory_entries"`
}

// HistoryConfig represents admission-history store configuration
type HistoryConfig struct {
	// Backend selects "sqlite" or "postgres".
	Backend     string `mapstructure:"backend"`
	SQLitePath  string `mapstructure:"sqlite_path"`
	PostgresURL string `mapstructure:"postgres_url"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
