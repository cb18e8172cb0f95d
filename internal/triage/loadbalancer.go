package triage

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/triage-routing-engine/internal/domain"
)

// LoadBalancer detects an overloaded preferred department and reassigns
// the admission to an alternate with spare capacity. Alternates are
// tried in a fixed clinical-capability order, then in registry order;
// when nothing has capacity the patient remains with the preferred
// department and the decision says so explicitly.
type LoadBalancer struct {
	logger          *logrus.Logger
	registry        *Registry
	capabilityOrder []string
	tierDefaults    map[string]string
}

// NewLoadBalancer creates a load balancer over the capacity registry.
func NewLoadBalancer(logger *logrus.Logger, registry *Registry, cfg *domain.TriageConfig) *LoadBalancer {
	order := make([]string, len(cfg.CapabilityOrder))
	copy(order, cfg.CapabilityOrder)
	defaults := make(map[string]string, len(cfg.TierDefaults))
	for k, v := range cfg.TierDefaults {
		defaults[k] = v
	}
	return &LoadBalancer{
		logger:          logger,
		registry:        registry,
		capabilityOrder: order,
		tierDefaults:    defaults,
	}
}

// Route decides the final department for an admission. The active
// roster is only read, never mutated, so the decision is idempotent for
// an unchanged roster. The returned message is empty exactly when no
// overload (and no configuration gap) was detected.
func (lb *LoadBalancer) Route(preferred string, tier domain.RiskTier, active []*domain.Case) (string, string) {
	if !lb.registry.Known(preferred) {
		// Configuration gap: recover by routing to the tier default
		// instead of raising.
		fallback := lb.tierDefaults[string(tier)]
		gap := &domain.ConfigurationGapError{Department: preferred}
		lb.logger.WithFields(logrus.Fields{
			"department": preferred,
			"fallback":   fallback,
			"risk_tier":  string(tier),
		}).Warn(gap.Error())
		msg := fmt.Sprintf("Department %s is not configured; patient routed to %s.", preferred, fallback)
		return fallback, msg
	}

	status := lb.registry.StatusForActive(active)
	byName := make(map[string]domain.DepartmentStatus, len(status))
	for _, s := range status {
		byName[s.Department] = s
	}

	preferredStatus := byName[preferred]
	if !preferredStatus.Overloaded {
		return preferred, ""
	}

	available := make(map[string]domain.DepartmentStatus)
	for _, s := range status {
		if s.Department != preferred && !s.Overloaded {
			available[s.Department] = s
		}
	}

	if len(available) == 0 {
		msg := fmt.Sprintf(
			"%s overloaded (%.1f%%). No alternate with capacity; patient remains routed to %s.",
			preferred, preferredStatus.LoadPercentage, preferred,
		)
		lb.logger.WithFields(logrus.Fields{
			"department": preferred,
			"load_pct":   preferredStatus.LoadPercentage,
		}).Warn("All departments overloaded, admission remains with preferred department")
		return preferred, msg
	}

	// Prefer the most acute-capable alternates first.
	for _, name := range lb.capabilityOrder {
		cand, ok := available[name]
		if !ok {
			continue
		}
		return cand.Department, lb.reassignMessage(preferredStatus, cand)
	}

	// Nothing in the capability order has capacity; take the first
	// available department in registry order.
	for _, s := range status {
		if cand, ok := available[s.Department]; ok {
			return cand.Department, lb.reassignMessage(preferredStatus, cand)
		}
	}

	// Unreachable given available is non-empty; kept for safety.
	return preferred, fmt.Sprintf("%s overloaded (%.1f%%).", preferred, preferredStatus.LoadPercentage)
}

func (lb *LoadBalancer) reassignMessage(from, to domain.DepartmentStatus) string {
	msg := fmt.Sprintf(
		"%s overloaded (%.1f%%). Patient routed to %s (available %.0f%%).",
		from.Department, from.LoadPercentage, to.Department, 100-to.LoadPercentage,
	)
	lb.logger.WithFields(logrus.Fields{
		"from":          from.Department,
		"from_load_pct": from.LoadPercentage,
		"to":            to.Department,
		"to_load_pct":   to.LoadPercentage,
	}).Info("Admission reassigned by load balancer")
	return msg
}
