package triage

import (
	"fmt"

	"github.com/triage-routing-engine/internal/domain"
)

// Normal ranges for alerting only; range validation of raw input is
// owned by the upstream intake layer.
const (
	heartRateNormalLow  = 60
	heartRateNormalHigh = 100
	tempNormalHigh      = 37.2

	spo2Critical     = 90
	spo2Warning      = 95
	heartRateCritLow = 50
	heartRateCritHi  = 120
	systolicCritHigh = 180
	systolicLow      = 90
	diastolicCritHi  = 120
	diastolicLow     = 60
	tempCritHigh     = 39.0
	tempCritLow      = 35.0
)

// VitalAlerts generates abnormality alerts from a validated vitals set.
// Alerts are informational annotations on the admission; they do not
// participate in routing or scoring.
func VitalAlerts(v domain.VitalSigns) []domain.AbnormalityAlert {
	var alerts []domain.AbnormalityAlert

	if v.SpO2 < spo2Critical {
		alerts = append(alerts, domain.AbnormalityAlert{
			Field:    "spo2",
			Message:  fmt.Sprintf("SpO2 critically low (%d%%). Normal >=95%%. Seek immediate care.", v.SpO2),
			Severity: "critical",
		})
	} else if v.SpO2 < spo2Warning {
		alerts = append(alerts, domain.AbnormalityAlert{
			Field:    "spo2",
			Message:  fmt.Sprintf("SpO2 below normal (%d%%). Normal range 95-100%%.", v.SpO2),
			Severity: "warning",
		})
	}

	switch {
	case v.HeartRate < heartRateCritLow:
		alerts = append(alerts, domain.AbnormalityAlert{
			Field:    "heart_rate",
			Message:  fmt.Sprintf("Heart rate critically low (%d bpm).", v.HeartRate),
			Severity: "critical",
		})
	case v.HeartRate > heartRateCritHi:
		alerts = append(alerts, domain.AbnormalityAlert{
			Field:    "heart_rate",
			Message:  fmt.Sprintf("Heart rate critically high (%d bpm).", v.HeartRate),
			Severity: "critical",
		})
	case v.HeartRate < heartRateNormalLow || v.HeartRate > heartRateNormalHigh:
		alerts = append(alerts, domain.AbnormalityAlert{
			Field:    "heart_rate",
			Message:  fmt.Sprintf("Heart rate outside normal range (%d bpm). Normal 60-100.", v.HeartRate),
			Severity: "warning",
		})
	}

	if v.BPSystolic >= systolicCritHigh || v.BPDiastolic >= diastolicCritHi {
		alerts = append(alerts, domain.AbnormalityAlert{
			Field:    "blood_pressure",
			Message:  fmt.Sprintf("Blood pressure critically high (%d/%d).", v.BPSystolic, v.BPDiastolic),
			Severity: "critical",
		})
	} else if v.BPSystolic < systolicLow || v.BPDiastolic < diastolicLow {
		alerts = append(alerts, domain.AbnormalityAlert{
			Field:    "blood_pressure",
			Message:  fmt.Sprintf("Blood pressure low (%d/%d).", v.BPSystolic, v.BPDiastolic),
			Severity: "warning",
		})
	}

	switch {
	case v.Temperature >= tempCritHigh:
		alerts = append(alerts, domain.AbnormalityAlert{
			Field:    "temperature",
			Message:  fmt.Sprintf("High fever (%.1f C).", v.Temperature),
			Severity: "critical",
		})
	case v.Temperature < tempCritLow:
		alerts = append(alerts, domain.AbnormalityAlert{
			Field:    "temperature",
			Message:  fmt.Sprintf("Low body temperature (%.1f C).", v.Temperature),
			Severity: "warning",
		})
	case v.Temperature > tempNormalHigh:
		alerts = append(alerts, domain.AbnormalityAlert{
			Field:    "temperature",
			Message:  fmt.Sprintf("Elevated temperature (%.1f C). Normal 36.1-37.2 C.", v.Temperature),
			Severity: "warning",
		})
	}

	return alerts
}
