package triage

import (
	"testing"

	"github.com/triage-routing-engine/internal/domain"
)

func alertFor(alerts []domain.AbnormalityAlert, field string) (domain.AbnormalityAlert, bool) {
	for _, a := range alerts {
		if a.Field == field {
			return a, true
		}
	}
	return domain.AbnormalityAlert{}, false
}

func TestVitalAlertsNormalVitals(t *testing.T) {
	if alerts := VitalAlerts(normalVitals()); len(alerts) != 0 {
		t.Errorf("normal vitals should not alert, got %v", alerts)
	}
}

func TestVitalAlertsSeverities(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*domain.VitalSigns)
		field    string
		severity string
	}{
		{"critical spo2", func(v *domain.VitalSigns) { v.SpO2 = 88 }, "spo2", "critical"},
		{"warning spo2", func(v *domain.VitalSigns) { v.SpO2 = 93 }, "spo2", "warning"},
		{"bradycardia", func(v *domain.VitalSigns) { v.HeartRate = 45 }, "heart_rate", "critical"},
		{"tachycardia", func(v *domain.VitalSigns) { v.HeartRate = 130 }, "heart_rate", "critical"},
		{"mild tachycardia", func(v *domain.VitalSigns) { v.HeartRate = 110 }, "heart_rate", "warning"},
		{"hypertensive crisis", func(v *domain.VitalSigns) { v.BPSystolic = 185 }, "blood_pressure", "critical"},
		{"hypotension", func(v *domain.VitalSigns) { v.BPSystolic = 85 }, "blood_pressure", "warning"},
		{"high fever", func(v *domain.VitalSigns) { v.Temperature = 39.4 }, "temperature", "critical"},
		{"hypothermia", func(v *domain.VitalSigns) { v.Temperature = 34.5 }, "temperature", "warning"},
		{"mild fever", func(v *domain.VitalSigns) { v.Temperature = 37.9 }, "temperature", "warning"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vitals := normalVitals()
			tt.mutate(&vitals)

			alert, ok := alertFor(VitalAlerts(vitals), tt.field)
			if !ok {
				t.Fatalf("expected a %s alert", tt.field)
			}
			if alert.Severity != tt.severity {
				t.Errorf("severity = %q, want %q", alert.Severity, tt.severity)
			}
			if alert.Message == "" {
				t.Error("alert message must not be empty")
			}
		})
	}
}

func TestVitalAlertsMultipleFields(t *testing.T) {
	vitals := domain.VitalSigns{
		HeartRate:   130,
		BPSystolic:  190,
		BPDiastolic: 110,
		Temperature: 39.5,
		SpO2:        86,
	}
	alerts := VitalAlerts(vitals)
	if len(alerts) != 4 {
		t.Fatalf("expected 4 alerts, got %d: %v", len(alerts), alerts)
	}
	for _, a := range alerts {
		if a.Severity != "critical" {
			t.Errorf("%s severity = %q, want critical", a.Field, a.Severity)
		}
	}
}
