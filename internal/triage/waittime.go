package triage

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/triage-routing-engine/internal/domain"
)

// Estimator recomputes projected wait minutes for the entire active
// roster. It is a batch operation: every admission or discharge must be
// followed by a full Recompute so no case's estimate ever reflects a
// stale roster.
type Estimator struct {
	logger   *logrus.Logger
	registry *Registry
	cfg      domain.WaitConfig
}

// NewEstimator creates a wait-time estimator over the capacity registry.
func NewEstimator(logger *logrus.Logger, registry *Registry, cfg *domain.TriageConfig) *Estimator {
	return &Estimator{
		logger:   logger,
		registry: registry,
		cfg:      cfg.Wait,
	}
}

// SortQueue orders cases by the deterministic queue order: priority
// score descending, then creation timestamp ascending. The sort is
// stable; case identifier and insertion order never participate.
func SortQueue(cases []*domain.Case) {
	sort.SliceStable(cases, func(i, j int) bool {
		if cases[i].PriorityScore != cases[j].PriorityScore {
			return cases[i].PriorityScore > cases[j].PriorityScore
		}
		return cases[i].CreatedAt.Before(cases[j].CreatedAt)
	})
}

// Recompute sets EstimatedWaitMinutes on every active case in place.
//
// Canonical formula: for the case at queue rank i (1-based) the
// projection is
//
//	base * i * deptLoadFactor * systemPressure / priorityFactor
//
// floored at the configured minimum, where
//
//	deptLoadFactor = 1 + routedDepartmentLoad/100
//	systemPressure = 1 + step * activeHighRiskCount
//	priorityFactor = max(1, priorityScore/50)
//
// Later queue rank never shortens a wait, a case's own priority never
// lengthens it, and added department load never shortens any wait in
// that department. The result depends only on the roster's stored
// fields, so repeated calls on an unchanged roster are identical.
func (e *Estimator) Recompute(active []*domain.Case) {
	if len(active) == 0 {
		return
	}

	counts := e.registry.CountRouted(active)
	highCount := 0
	for _, c := range active {
		if c.Active && c.RiskTier == domain.TierHigh {
			highCount++
		}
	}
	pressure := 1 + e.cfg.HighRiskPressureStep*float64(highCount)

	ordered := make([]*domain.Case, 0, len(active))
	for _, c := range active {
		if c != nil && c.Active {
			ordered = append(ordered, c)
		}
	}
	SortQueue(ordered)

	for i, c := range ordered {
		rank := i + 1

		loadFactor := 1.0
		if cap, ok := e.registry.Capacity(c.RoutedDepartment); ok {
			loadFactor = 1 + loadPercent(counts[c.RoutedDepartment], cap)/100
		}

		priorityFactor := float64(c.PriorityScore) / 50
		if priorityFactor < 1 {
			priorityFactor = 1
		}

		wait := int(float64(e.cfg.BaseMinutes) * float64(rank) * loadFactor * pressure / priorityFactor)
		if wait < e.cfg.MinimumMinutes {
			wait = e.cfg.MinimumMinutes
		}
		c.EstimatedWaitMinutes = wait
	}

	e.logger.WithFields(logrus.Fields{
		"active_cases":    len(ordered),
		"high_risk_cases": highCount,
		"pressure":        pressure,
	}).Debug("Recomputed wait-time projections")
}
