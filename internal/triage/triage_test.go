package triage

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/triage-routing-engine/internal/domain"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// testConfig mirrors the built-in rule tables so the engine tests run
// against the same registry the server ships with.
func testConfig() *domain.TriageConfig {
	return &domain.TriageConfig{
		Departments: []domain.DepartmentConfig{
			{Name: "General Medicine", MaxCapacity: 30},
			{Name: "Cardiology", MaxCapacity: 15},
			{Name: "Neurology", MaxCapacity: 12},
			{Name: "Emergency", MaxCapacity: 25},
			{Name: "Pulmonology", MaxCapacity: 15},
		},
		OverloadThresholdPercent: 85,
		CapabilityOrder:          []string{"Emergency", "Cardiology", "Pulmonology", "Neurology", "General Medicine"},
		RoutingRules: []domain.RoutingRule{
			{Symptoms: []string{"chest_pain", "shortness_of_breath"}, Department: "Cardiology"},
			{Symptoms: []string{"stroke_symptoms", "seizure", "unconscious"}, Department: "Neurology"},
			{Symptoms: []string{"bleeding", "trauma", "burn", "unconscious"}, Department: "Emergency"},
			{Symptoms: []string{"shortness_of_breath", "allergic_reaction"}, Department: "Pulmonology"},
			{Symptoms: []string{"chest_pain"}, Department: "Cardiology"},
			{Symptoms: []string{"headache", "dizziness", "stroke_symptoms"}, Department: "Neurology"},
		},
		TierDefaults: map[string]string{
			"high":   "Emergency",
			"medium": "General Medicine",
			"low":    "General Medicine",
		},
		Priority: domain.PriorityConfig{
			HighBase:         85,
			MediumBase:       50,
			LowBase:          20,
			UnknownBase:      30,
			ConfidenceWeight: 0.15,
		},
		Wait: domain.WaitConfig{
			BaseMinutes:          15,
			MinimumMinutes:       5,
			HighRiskPressureStep: 0.1,
		},
		Severity: domain.SeverityConfig{
			SpO2Critical:     92,
			SpO2LowNormal:    95,
			HeartRateHigh:    120,
			HeartRateElev:    100,
			SystolicHigh:     180,
			FeverHigh:        38.5,
			TempMildElevated: 37.5,
		},
	}
}

func testTime() time.Time {
	return time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
}

// activeCase builds a routed active case for roster-shaped test input.
func activeCase(id, dept string, tier domain.RiskTier, priority int, created time.Time) *domain.Case {
	return &domain.Case{
		ID:               id,
		RiskTier:         tier,
		PriorityScore:    priority,
		RoutedDepartment: dept,
		Active:           true,
		CreatedAt:        created,
	}
}

// fillDepartment produces n active cases routed to one department.
func fillDepartment(dept string, n int, tier domain.RiskTier) []*domain.Case {
	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	out := make([]*domain.Case, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, activeCase(
			"PT-"+dept+"-"+string(rune('A'+i%26))+string(rune('A'+i/26)),
			dept, tier, 50, base.Add(time.Duration(i)*time.Minute),
		))
	}
	return out
}
