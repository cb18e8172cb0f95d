package triage

import (
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/triage-routing-engine/internal/domain"
)

// Monitor computes per-demographic-group risk distributions over the
// roster and flags statistical imbalance. Reports are ephemeral:
// recomputed fresh on each request, never persisted.
type Monitor struct {
	logger *logrus.Logger
}

// NewMonitor creates a fairness monitor.
func NewMonitor(logger *logrus.Logger) *Monitor {
	return &Monitor{logger: logger}
}

// Report builds the fairness snapshot for the given cases. An empty
// roster is a well-defined degenerate case: empty matrices, no alert.
//
// An imbalance alert fires when any single group's high-risk rate
// exceeds twice the arithmetic mean of all group rates (and the mean is
// nonzero). Exactly one alert is emitted, naming the first such group
// in a stable scan order: gender groups (sorted by name) before age
// groups (bucket order).
func (m *Monitor) Report(cases []domain.Case) domain.FairnessReport {
	report := domain.FairnessReport{
		GenderRiskMatrix:   map[string]domain.RiskCounts{},
		AgeGroupRiskMatrix: map[string]domain.RiskCounts{},
		GenderRates:        map[string]float64{},
		AgeGroupRates:      map[string]float64{},
		GenderParity:       map[string]float64{},
		AgeGroupParity:     map[string]float64{},
	}
	if len(cases) == 0 {
		return report
	}

	totalHigh := 0
	for i := range cases {
		c := &cases[i]
		g := string(c.Gender)
		if !c.Gender.IsValid() {
			g = string(domain.GenderOther)
		}
		a := domain.AgeGroupFor(c.Age)
		report.GenderRiskMatrix[g] = bump(report.GenderRiskMatrix[g], c.RiskTier)
		report.AgeGroupRiskMatrix[a] = bump(report.AgeGroupRiskMatrix[a], c.RiskTier)
		if c.RiskTier == domain.TierHigh {
			totalHigh++
		}
	}

	for g, counts := range report.GenderRiskMatrix {
		report.GenderRates[g] = highRiskRate(counts)
	}
	for a, counts := range report.AgeGroupRiskMatrix {
		report.AgeGroupRates[a] = highRiskRate(counts)
	}

	genderKeys := sortedKeys(report.GenderRates)
	ageKeys := make([]string, 0, len(report.AgeGroupRates))
	for _, a := range domain.AgeGroups {
		if _, ok := report.AgeGroupRates[a]; ok {
			ageKeys = append(ageKeys, a)
		}
	}

	var sum float64
	for _, g := range genderKeys {
		sum += report.GenderRates[g]
	}
	for _, a := range ageKeys {
		sum += report.AgeGroupRates[a]
	}
	mean := sum / float64(len(genderKeys)+len(ageKeys))

	if mean > 0 {
		for _, g := range genderKeys {
			if report.GenderRates[g] > mean*2 {
				report.ImbalanceAlert = fmt.Sprintf(
					"Gender '%s' has high-risk rate %.1f%% (avg %.1f%%). Consider reviewing for bias.",
					g, report.GenderRates[g], mean,
				)
				break
			}
		}
		if report.ImbalanceAlert == "" {
			for _, a := range ageKeys {
				if report.AgeGroupRates[a] > mean*2 {
					report.ImbalanceAlert = fmt.Sprintf(
						"Age group '%s' has high-risk rate %.1f%% (avg %.1f%%). Consider reviewing for bias.",
						a, report.AgeGroupRates[a], mean,
					)
					break
				}
			}
		}
	}

	overall := float64(totalHigh) / float64(len(cases)) * 100
	report.OverallHighRiskPct = math.Round(overall*10) / 10
	for g, rate := range report.GenderRates {
		report.GenderParity[g] = parityRatio(rate, overall)
	}
	for a, rate := range report.AgeGroupRates {
		report.AgeGroupParity[a] = parityRatio(rate, overall)
	}

	if report.ImbalanceAlert != "" {
		m.logger.WithFields(logrus.Fields{
			"alert":            report.ImbalanceAlert,
			"mean_group_rate":  mean,
			"overall_high_pct": report.OverallHighRiskPct,
		}).Warn("Fairness imbalance detected")
	}
	return report
}

func bump(counts domain.RiskCounts, tier domain.RiskTier) domain.RiskCounts {
	switch tier {
	case domain.TierHigh:
		counts.High++
	case domain.TierMedium:
		counts.Medium++
	default:
		counts.Low++
	}
	return counts
}

// highRiskRate is the fraction of a group's cases classified high risk,
// as a percentage.
func highRiskRate(counts domain.RiskCounts) float64 {
	total := counts.Total()
	if total == 0 {
		return 0
	}
	return float64(counts.High) / float64(total) * 100
}

// parityRatio divides a group's high-risk rate by the overall rate,
// defaulting to 1.0 when the overall rate is zero.
func parityRatio(groupRate, overallRate float64) float64 {
	if overallRate == 0 {
		return 1.0
	}
	return groupRate / overallRate
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
