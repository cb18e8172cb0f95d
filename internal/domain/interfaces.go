package domain

import (
	"context"
	"time"
)

// RiskClassifier is the black-box risk scorer consumed by the engine.
// A failure here is fatal to the admission attempt and must surface as
// ErrServiceUnavailable; the engine performs no retries of its own.
type RiskClassifier interface {
	ClassifyRisk(ctx context.Context, features *ClassifierFeatures) (*RiskPrediction, error)
}

// ExplanationService is the optional natural-language explanation
// collaborator. Calls are bounded by a request-scoped timeout; failures
// are recovered by the caller and never propagate.
type ExplanationService interface {
	Explain(ctx context.Context, ec *ExplanationContext) (*Explanation, error)
}

// CaseRepository provides filtered views over the shared active-case
// set and supports atomic append/update. Implementations must guarantee
// that every mutation is followed by a full recompute before any reader
// observes the roster again.
type CaseRepository interface {
	// Admit runs build under the mutation lock with a snapshot of the
	// currently active cases, commits the returned case and recomputes
	// all derived fields as one atomic unit.
	Admit(ctx context.Context, build func(active []*Case) (*Case, error)) (*Case, error)

	// Discharge clears the active flag and recomputes. Returns
	// ErrNotFound for unknown ids, ErrAlreadyClosed for repeats.
	Discharge(ctx context.Context, id string) error

	// UpdateVitals replaces a case's vitals and recomputes.
	UpdateVitals(ctx context.Context, id string, vitals VitalSigns) error

	// Active returns a complete snapshot of the active cases in
	// deterministic queue order.
	Active() []Case

	// All returns a snapshot of every case, discharged ones included.
	All() []Case

	// Get returns a snapshot of one case by id.
	Get(id string) (Case, bool)
}

// HistoryStore is the append-only admission audit log.
type HistoryStore interface {
	SaveAdmission(ctx context.Context, c *Case) error
	MarkDischarged(ctx context.Context, id string, at time.Time) error
	ListAdmissions(ctx context.Context, riskFilter string, limit int) ([]Case, error)
	Close() error
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetTriageConfig() *TriageConfig
	Validate() error
}
