package triage

import (
	"github.com/triage-routing-engine/internal/domain"
)

// Predictor is the severity timeline decision table: keyed first by
// risk tier, then by vital-threshold checks in fixed priority order.
// The first matching rule wins. Pure function, no shared state.
type Predictor struct {
	cfg domain.SeverityConfig
}

// NewPredictor creates a severity timeline predictor from configuration.
func NewPredictor(cfg *domain.TriageConfig) *Predictor {
	return &Predictor{cfg: cfg.Severity}
}

// Predict returns a short escalation-risk message for the case, or
// ok=false when no rule matches. A low-risk case with all vitals in
// normal range yields no message, not an empty string.
func (p *Predictor) Predict(tier domain.RiskTier, v domain.VitalSigns) (string, bool) {
	switch tier {
	case domain.TierHigh:
		if v.SpO2 < p.cfg.SpO2Critical {
			return "Critical: Low SpO2. Risk may escalate within 1-2 hours without intervention.", true
		}
		if v.HeartRate > p.cfg.HeartRateHigh || v.BPSystolic > p.cfg.SystolicHigh {
			return "Unstable vitals. Risk may escalate in 1-2 hours; monitor closely.", true
		}
		return "High risk. Monitor; condition may escalate in 2-4 hours if untreated.", true

	case domain.TierMedium:
		if v.SpO2 >= p.cfg.SpO2Critical && v.SpO2 < p.cfg.SpO2LowNormal {
			return "Moderate risk. SpO2 below normal; may escalate in 4-6 hours if not improved.", true
		}
		if v.Temperature > p.cfg.FeverHigh {
			return "Fever present. Risk may escalate in 4-6 hours if fever persists.", true
		}
		if v.HeartRate > p.cfg.HeartRateElev {
			return "Elevated heart rate. Monitor; may escalate in 4-6 hours.", true
		}
		return "Moderate risk. Reassess in 2-4 hours.", true

	default:
		if v.SpO2 < p.cfg.SpO2LowNormal || v.Temperature > p.cfg.TempMildElevated {
			return "Low risk. Reassess in 4-6 hours if symptoms persist.", true
		}
		return "", false
	}
}
