package triage

import (
	"github.com/triage-routing-engine/internal/domain"
)

// Scorer converts (risk tier, classifier confidence) into a single
// bounded urgency score in [0,100]. For equal confidence the score is
// monotonic in tier; for equal tier it never decreases with confidence.
type Scorer struct {
	cfg domain.PriorityConfig
}

// NewScorer creates a priority scorer from configuration.
func NewScorer(cfg *domain.TriageConfig) *Scorer {
	return &Scorer{cfg: cfg.Priority}
}

// Score maps risk tier and confidence (0-100) to a 0-100 priority
// score; higher means more urgent.
func (s *Scorer) Score(tier domain.RiskTier, confidence float64) int {
	var base int
	switch tier {
	case domain.TierHigh:
		base = s.cfg.HighBase
	case domain.TierMedium:
		base = s.cfg.MediumBase
	case domain.TierLow:
		base = s.cfg.LowBase
	default:
		base = s.cfg.UnknownBase
	}
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}
	score := base + int(confidence*s.cfg.ConfidenceWeight)
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}
