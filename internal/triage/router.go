package triage

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/triage-routing-engine/internal/domain"
)

// Router maps (risk tier, symptom set) to a preferred department via an
// ordered rule table. The first rule whose trigger set intersects the
// case's symptoms wins; rule order encodes clinical priority. When no
// rule matches, a risk-tier default table decides.
type Router struct {
	logger       *logrus.Logger
	rules        []domain.RoutingRule
	tierDefaults map[string]string
}

// NewRouter creates a department router from configuration.
func NewRouter(logger *logrus.Logger, cfg *domain.TriageConfig) *Router {
	rules := make([]domain.RoutingRule, len(cfg.RoutingRules))
	copy(rules, cfg.RoutingRules)
	defaults := make(map[string]string, len(cfg.TierDefaults))
	for k, v := range cfg.TierDefaults {
		defaults[k] = v
	}
	return &Router{
		logger:       logger,
		rules:        rules,
		tierDefaults: defaults,
	}
}

// Rules exposes the ordered rule table. Order is a first-class,
// testable artifact.
func (r *Router) Rules() []domain.RoutingRule {
	out := make([]domain.RoutingRule, len(r.rules))
	copy(out, r.rules)
	return out
}

// DefaultFor returns the fallback department for a risk tier.
func (r *Router) DefaultFor(tier domain.RiskTier) string {
	if dept, ok := r.tierDefaults[string(tier)]; ok {
		return dept
	}
	return r.tierDefaults[string(domain.TierLow)]
}

// Recommend picks the preferred department for a case. It is a pure
// function of its inputs and the static rule table; the returned
// reasoning names the risk tier, the matched symptoms or the fallback
// rationale, and the resulting department. It is never empty.
func (r *Router) Recommend(tier domain.RiskTier, symptoms []string) (string, string) {
	present := make(map[string]bool, len(symptoms))
	for _, s := range symptoms {
		present[s] = true
	}

	for _, rule := range r.rules {
		hits := make([]string, 0, len(rule.Symptoms))
		for _, trigger := range rule.Symptoms {
			if present[trigger] {
				hits = append(hits, trigger)
			}
		}
		if len(hits) == 0 {
			continue
		}
		reason := fmt.Sprintf(
			"Risk assessment indicates %s severity. Clinical markers (%s) align with %s protocols. Recommended for immediate %s evaluation.",
			strings.ToUpper(string(tier)), strings.Join(hits, ", "), rule.Department, rule.Department,
		)
		r.logger.WithFields(logrus.Fields{
			"risk_tier":  string(tier),
			"matched":    hits,
			"department": rule.Department,
		}).Debug("Routing rule matched")
		return rule.Department, reason
	}

	dept := r.DefaultFor(tier)
	findings := "Non-specific presentation."
	if len(symptoms) > 0 {
		findings = fmt.Sprintf("Patient presents with %s.", strings.Join(symptoms, ", "))
	}
	reason := fmt.Sprintf(
		"Risk assessment indicates %s severity based on vitals analysis. %s No specific specialty criteria met; routing to %s for comprehensive workup.",
		strings.ToUpper(string(tier)), findings, dept,
	)
	return dept, reason
}
