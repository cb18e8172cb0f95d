package triage

import (
	"strings"
	"testing"

	"github.com/triage-routing-engine/internal/domain"
)

func normalVitals() domain.VitalSigns {
	return domain.VitalSigns{
		HeartRate:       72,
		BPSystolic:      118,
		BPDiastolic:     76,
		Temperature:     36.8,
		SpO2:            98,
		RespiratoryRate: 14,
	}
}

func TestPredictDecisionTable(t *testing.T) {
	predictor := NewPredictor(testConfig())

	tests := []struct {
		name     string
		tier     domain.RiskTier
		mutate   func(*domain.VitalSigns)
		contains string
	}{
		{"high critical spo2", domain.TierHigh,
			func(v *domain.VitalSigns) { v.SpO2 = 88 },
			"1-2 hours"},
		{"high tachycardia", domain.TierHigh,
			func(v *domain.VitalSigns) { v.HeartRate = 135 },
			"Unstable vitals"},
		{"high hypertensive", domain.TierHigh,
			func(v *domain.VitalSigns) { v.BPSystolic = 195 },
			"Unstable vitals"},
		{"high otherwise", domain.TierHigh,
			func(v *domain.VitalSigns) {},
			"2-4 hours"},
		{"medium low spo2", domain.TierMedium,
			func(v *domain.VitalSigns) { v.SpO2 = 93 },
			"SpO2 below normal"},
		{"medium fever", domain.TierMedium,
			func(v *domain.VitalSigns) { v.Temperature = 38.9 },
			"Fever present"},
		{"medium elevated heart rate", domain.TierMedium,
			func(v *domain.VitalSigns) { v.HeartRate = 110 },
			"Elevated heart rate"},
		{"medium otherwise", domain.TierMedium,
			func(v *domain.VitalSigns) {},
			"Reassess in 2-4 hours"},
		{"low mild spo2", domain.TierLow,
			func(v *domain.VitalSigns) { v.SpO2 = 94 },
			"4-6 hours"},
		{"low mild temperature", domain.TierLow,
			func(v *domain.VitalSigns) { v.Temperature = 37.8 },
			"4-6 hours"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vitals := normalVitals()
			tt.mutate(&vitals)

			msg, ok := predictor.Predict(tt.tier, vitals)
			if !ok {
				t.Fatal("expected a severity timeline message")
			}
			if !strings.Contains(msg, tt.contains) {
				t.Errorf("message %q should contain %q", msg, tt.contains)
			}
		})
	}
}

func TestPredictLowRiskNormalVitalsHasNoTimeline(t *testing.T) {
	predictor := NewPredictor(testConfig())

	msg, ok := predictor.Predict(domain.TierLow, normalVitals())
	if ok {
		t.Errorf("low risk with normal vitals should have no timeline, got %q", msg)
	}
	if msg != "" {
		t.Errorf("absent timeline must be empty, got %q", msg)
	}
}

func TestPredictHighTierRuleOrder(t *testing.T) {
	predictor := NewPredictor(testConfig())

	// SpO2 rule outranks the heart-rate rule when both fire.
	vitals := normalVitals()
	vitals.SpO2 = 85
	vitals.HeartRate = 140

	msg, ok := predictor.Predict(domain.TierHigh, vitals)
	if !ok || !strings.Contains(msg, "Low SpO2") {
		t.Errorf("SpO2 rule should win, got %q", msg)
	}
}
