package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/triage-routing-engine/internal/domain"
)

// Manager implements the ConfigManager interface using Viper
type Manager struct {
	config *domain.Config
}

// NewManager creates a new configuration manager
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from various sources
func (m *Manager) loadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/triage-routing-engine/")

	viper.SetEnvPrefix("TRIAGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	m.setDefaults()

	// Config file is optional; defaults and env vars suffice.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	applyTriageDefaults(&config.Triage)

	m.config = config
	return nil
}

// setDefaults sets default configuration values
func (m *Manager) setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.rate_limit_per_sec", 25.0)
	viper.SetDefault("server.rate_limit_burst", 50)

	// Triage defaults
	viper.SetDefault("triage.default_capacity", 20)
	viper.SetDefault("triage.overload_threshold_percent", 85.0)
	viper.SetDefault("triage.priority.high_base", 85)
	viper.SetDefault("triage.priority.medium_base", 50)
	viper.SetDefault("triage.priority.low_base", 20)
	viper.SetDefault("triage.priority.unknown_base", 30)
	viper.SetDefault("triage.priority.confidence_weight", 0.15)
	viper.SetDefault("triage.wait.base_minutes", 15)
	viper.SetDefault("triage.wait.minimum_minutes", 5)
	viper.SetDefault("triage.wait.high_risk_pressure_step", 0.1)
	viper.SetDefault("triage.severity.spo2_critical", 92)
	viper.SetDefault("triage.severity.spo2_low_normal", 95)
	viper.SetDefault("triage.severity.heart_rate_high", 120)
	viper.SetDefault("triage.severity.heart_rate_elevated", 100)
	viper.SetDefault("triage.severity.systolic_high", 180)
	viper.SetDefault("triage.severity.fever_high", 38.5)
	viper.SetDefault("triage.severity.temp_mild_elevated", 37.5)

	// External service defaults
	viper.SetDefault("external_api.classifier.base_url", "http://localhost:9090")
	viper.SetDefault("external_api.classifier.timeout", "10s")
	viper.SetDefault("external_api.classifier.retry_count", 0)
	viper.SetDefault("external_api.explainer.enabled", false)
	viper.SetDefault("external_api.explainer.base_url", "http://localhost:9091")
	viper.SetDefault("external_api.explainer.timeout", "3s")

	// Cache defaults
	viper.SetDefault("cache.redis_url", "redis://localhost:6379")
	viper.SetDefault("cache.redis_enabled", false)
	viper.SetDefault("cache.default_ttl", "1h")
	viper.SetDefault("cache.max_retries", 3)
	viper.SetDefault("cache.pool_size", 10)
	viper.SetDefault("cache.pool_timeout", "4s")
	viper.SetDefault("cache.memory_entries", 512)

	// History defaults
	viper.SetDefault("history.backend", "sqlite")
	viper.SetDefault("history.sqlite_path", "./data/triage_history.db")
	viper.SetDefault("history.postgres_url", "")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output", "stdout")
}

// applyTriageDefaults fills the structured rule tables that are awkward
// to express as flat viper defaults. Supplying any departments or rules
// in config replaces the built-in tables entirely.
func applyTriageDefaults(tc *domain.TriageConfig) {
	if len(tc.Departments) == 0 {
		tc.Departments = DefaultDepartments()
	}
	if len(tc.CapabilityOrder) == 0 {
		tc.CapabilityOrder = DefaultCapabilityOrder()
	}
	if len(tc.RoutingRules) == 0 {
		tc.RoutingRules = DefaultRoutingRules()
	}
	if len(tc.TierDefaults) == 0 {
		tc.TierDefaults = DefaultTierDefaults()
	}
}

// DefaultDepartments returns the built-in department capacity registry.
func DefaultDepartments() []domain.DepartmentConfig {
	return []domain.DepartmentConfig{
		{Name: "General Medicine", MaxCapacity: 30},
		{Name: "Cardiology", MaxCapacity: 15},
		{Name: "Neurology", MaxCapacity: 12},
		{Name: "Emergency", MaxCapacity: 25},
		{Name: "Pulmonology", MaxCapacity: 15},
	}
}

// DefaultCapabilityOrder returns the clinical-capability preference
// order used by the load balancer, most acute-capable first.
func DefaultCapabilityOrder() []string {
	return []string{"Emergency", "Cardiology", "Pulmonology", "Neurology", "General Medicine"}
}

// DefaultRoutingRules returns the built-in symptom-to-department rule
// table. Order encodes clinical priority: cardiac, neuro and trauma
// rules fire before the generic ones.
func DefaultRoutingRules() []domain.RoutingRule {
	return []domain.RoutingRule{
		{Symptoms: []string{"chest_pain", "shortness_of_breath"}, Department: "Cardiology"},
		{Symptoms: []string{"stroke_symptoms", "seizure", "unconscious"}, Department: "Neurology"},
		{Symptoms: []string{"bleeding", "trauma", "burn", "unconscious"}, Department: "Emergency"},
		{Symptoms: []string{"shortness_of_breath", "allergic_reaction"}, Department: "Pulmonology"},
		{Symptoms: []string{"chest_pain"}, Department: "Cardiology"},
		{Symptoms: []string{"headache", "dizziness", "stroke_symptoms"}, Department: "Neurology"},
	}
}

// DefaultTierDefaults returns the risk-tier fallback department table.
func DefaultTierDefaults() map[string]string {
	return map[string]string{
		"high":   "Emergency",
		"medium": "General Medicine",
		"low":    "General Medicine",
	}
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetServerConfig returns server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// GetTriageConfig returns triage engine configuration
func (m *Manager) GetTriageConfig() *domain.TriageConfig {
	return &m.config.Triage
}

// Reload reloads the configuration
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if len(config.Triage.Departments) == 0 {
		return fmt.Errorf("at least one department is required")
	}
	for _, d := range config.Triage.Departments {
		if d.Name == "" {
			return fmt.Errorf("department with empty name in registry")
		}
		if d.MaxCapacity <= 0 {
			return fmt.Errorf("department %s has non-positive capacity %d", d.Name, d.MaxCapacity)
		}
	}
	if config.Triage.OverloadThresholdPercent <= 0 || config.Triage.OverloadThresholdPercent > 100 {
		return fmt.Errorf("invalid overload threshold: %.1f", config.Triage.OverloadThresholdPercent)
	}
	for _, r := range config.Triage.RoutingRules {
		if len(r.Symptoms) == 0 || r.Department == "" {
			return fmt.Errorf("routing rule with empty trigger set or target department")
		}
	}
	for tier, dept := range config.Triage.TierDefaults {
		if !domain.RiskTier(tier).IsValid() {
			return fmt.Errorf("tier default for unknown risk tier: %s", tier)
		}
		if dept == "" {
			return fmt.Errorf("empty default department for tier %s", tier)
		}
	}
	if config.Triage.Wait.BaseMinutes <= 0 {
		return fmt.Errorf("wait base minutes must be positive")
	}
	if config.Triage.Wait.MinimumMinutes < 0 {
		return fmt.Errorf("wait minimum minutes must not be negative")
	}

	if config.ExternalAPI.Classifier.BaseURL == "" {
		return fmt.Errorf("classifier base URL is required")
	}
	if config.ExternalAPI.Explainer.Enabled && config.ExternalAPI.Explainer.BaseURL == "" {
		return fmt.Errorf("explainer base URL is required when explainer is enabled")
	}

	switch config.History.Backend {
	case "sqlite":
		if config.History.SQLitePath == "" {
			return fmt.Errorf("sqlite history path is required")
		}
	case "postgres":
		if config.History.PostgresURL == "" {
			return fmt.Errorf("postgres history URL is required")
		}
	case "", "none":
	default:
		return fmt.Errorf("unknown history backend: %s", config.History.Backend)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}

// IsProduction returns true if running in production mode
func (m *Manager) IsProduction() bool {
	return strings.ToLower(viper.GetString("environment")) == "production"
}

// IsDevelopment returns true if running in development mode
func (m *Manager) IsDevelopment() bool {
	env := strings.ToLower(viper.GetString("environment"))
	return env == "development" || env == "dev" || env == ""
}
