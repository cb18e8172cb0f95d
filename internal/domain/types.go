// Package domain contains core business entities and types for emergency
// department triage: risk tiers, admitted cases, department capacity and
// the decisions the routing engine attaches to each admission.
package domain

import (
	"errors"
	"time"
)

// RiskTier represents the categorical output of the risk classifier.
// It drives department routing defaults, priority scoring and the
// severity timeline decision table.
type RiskTier string

const (
	TierLow    RiskTier = "low"
	TierMedium RiskTier = "medium"
	TierHigh   RiskTier = "high"
)

// Gender represents the demographic gender category tracked by the
// fairness monitor.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// AgeGroups is the fixed partition used for demographic bucketing, in
// scan order. Fairness alerts name groups from this order, so it must
// stay stable.
var AgeGroups = []string{"0-17", "18-39", "40-59", "60-79", "80+"}

// Validation errors for triage data integrity
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidTier   = errors.New("invalid risk tier")
	ErrInvalidGender = errors.New("invalid gender category")
	ErrAlreadyClosed = errors.New("case already discharged")
)

// IsValid validates that the RiskTier is one of the known classifier
// outputs. Unknown tiers must never reach queue ordering.
func (rt RiskTier) IsValid() bool {
	switch rt {
	case TierLow, TierMedium, TierHigh:
		return true
	default:
		return false
	}
}

// String returns the string representation of the risk tier.
func (rt RiskTier) String() string {
	return string(rt)
}

// LogFields returns structured logging fields for audit trails.
func (rt RiskTier) LogFields() map[string]any {
	return map[string]any{
		"risk_tier":        string(rt),
		"is_valid":         rt.IsValid(),
		"requires_urgency": rt == TierHigh,
	}
}

// IsValid validates the gender category.
func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	default:
		return false
	}
}

// AgeGroupFor maps an age in years onto the fixed demographic partition.
func AgeGroupFor(age int) string {
	switch {
	case age < 18:
		return "0-17"
	case age < 40:
		return "18-39"
	case age < 60:
		return "40-59"
	case age < 80:
		return "60-79"
	default:
		return "80+"
	}
}

// VitalSigns is the fixed set of vitals consumed by the severity
// timeline predictor and abnormality alerting. Values are assumed to
// have passed range and consistency validation upstream.
type VitalSigns struct {
	HeartRate       int     `json:"heart_rate"`
	BPSystolic      int     `json:"blood_pressure_systolic"`
	BPDiastolic     int     `json:"blood_pressure_diastolic"`
	Temperature     float64 `json:"temperature"`
	SpO2            int     `json:"spo2"`
	RespiratoryRate int     `json:"respiratory_rate"`
	PainScore       int     `json:"pain_score"`
}

// Probabilities is the classifier's per-tier probability breakdown.
type Probabilities struct {
	Low    float64 `json:"low"`
	Medium float64 `json:"medium"`
	High   float64 `json:"high"`
}

// RiskPrediction is the result of one classifier call.
type RiskPrediction struct {
	Tier          RiskTier      `json:"risk_tier"`
	Probabilities Probabilities `json:"probability_breakdown"`
	// Confidence is the classifier's confidence in the predicted tier,
	// on a 0-100 scale.
	Confidence float64 `json:"confidence_score"`
}

// AbnormalityAlert flags a single out-of-range vital on admission.
type AbnormalityAlert struct {
	Field    string `json:"field"`
	Message  string `json:"message"`
	Severity string `json:"severity"` // "warning" | "critical"
}

// RoutingDecision is the immutable result of routing one admission.
// It is produced once, attached to the case, and never recomputed.
type RoutingDecision struct {
	Department      string `json:"department"`
	Reasoning       string `json:"reasoning"`
	OverflowMessage string `json:"overflow_message,omitempty"`
}

// Case represents one admitted patient instance. Cases are owned by the
// roster: created on admission, mutated in place by recompute passes and
// logically removed (Active cleared) on discharge.
type Case struct {
	ID     string `json:"patient_id"`
	Age    int    `json:"age"`
	Gender Gender `json:"gender"`

	Symptoms              []string   `json:"symptoms"`
	Vitals                VitalSigns `json:"vitals"`
	ChronicDiseaseCount   int        `json:"chronic_disease_count"`
	SymptomDurationHours  int        `json:"symptom_duration"`
	PreExistingConditions []string   `json:"pre_existing_conditions"`

	RiskTier      RiskTier      `json:"risk_level"`
	Confidence    float64       `json:"confidence_score"`
	Probabilities Probabilities `json:"probability_breakdown"`

	PriorityScore        int    `json:"priority_score"`
	PreferredDepartment  string `json:"preferred_department"`
	RoutedDepartment     string `json:"routed_department"`
	RoutingMessage       string `json:"routing_message,omitempty"`
	Reasoning            string `json:"reasoning_summary"`
	SeverityTimeline     string `json:"severity_timeline,omitempty"`
	EstimatedWaitMinutes int    `json:"estimated_wait_minutes"`

	Alerts []AbnormalityAlert `json:"abnormality_alerts"`

	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// DepartmentStatus is the derived load view of one department.
type DepartmentStatus struct {
	Department      string  `json:"department"`
	MaxCapacity     int     `json:"max_capacity"`
	CurrentPatients int     `json:"current_patients"`
	LoadPercentage  float64 `json:"load_percentage"`
	Overloaded      bool    `json:"overloaded"`
}

// RiskCounts holds per-tier counts for one demographic group.
type RiskCounts struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

// Total returns the number of cases in the group.
func (rc RiskCounts) Total() int {
	return rc.Low + rc.Medium + rc.High
}

// FairnessReport is the ephemeral output of the fairness monitor,
// recomputed fresh from the roster on each request and never persisted.
type FairnessReport struct {
	GenderRiskMatrix   map[string]RiskCounts `json:"gender_risk_matrix"`
	AgeGroupRiskMatrix map[string]RiskCounts `json:"age_group_risk_matrix"`
	GenderRates        map[string]float64    `json:"gender_high_risk_rates"`
	AgeGroupRates      map[string]float64    `json:"age_group_high_risk_rates"`
	GenderParity       map[string]float64    `json:"gender_parity"`
	AgeGroupParity     map[string]float64    `json:"age_group_parity"`
	OverallHighRiskPct float64               `json:"overall_high_risk_pct"`
	ImbalanceAlert     string                `json:"imbalance_alert,omitempty"`
}

// Explanation is the optional natural-language enrichment returned by
// the explanation service. Its absence is never an error.
type Explanation struct {
	ReasoningText string   `json:"reasoning_text"`
	Insights      []string `json:"insights"`
	Disclaimer    string   `json:"disclaimer"`
}

// ExplanationContext is the input handed to the explanation service.
type ExplanationContext struct {
	Tier       RiskTier   `json:"risk_tier"`
	Symptoms   []string   `json:"symptoms"`
	Vitals     VitalSigns `json:"vitals"`
	Department string     `json:"department"`
}

// ClassifierFeatures is the feature vector handed to the risk
// classifier. Feature engineering itself is owned by the classifier
// service; this engine only forwards validated inputs.
type ClassifierFeatures struct {
	Age                  int        `json:"age"`
	Gender               Gender     `json:"gender"`
	Vitals               VitalSigns `json:"vitals"`
	ChronicDiseaseCount  int        `json:"chronic_disease_count"`
	SymptomDurationHours int        `json:"symptom_duration"`
	Symptoms             []string   `json:"symptoms"`
}
