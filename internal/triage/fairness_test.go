package triage

import (
	"strings"
	"testing"

	"github.com/triage-routing-engine/internal/domain"
)

func fairnessCase(gender domain.Gender, age int, tier domain.RiskTier) domain.Case {
	return domain.Case{Gender: gender, Age: age, RiskTier: tier, Active: true}
}

func TestReportEmptyRoster(t *testing.T) {
	monitor := NewMonitor(testLogger())

	report := monitor.Report(nil)
	if len(report.GenderRiskMatrix) != 0 || len(report.AgeGroupRiskMatrix) != 0 {
		t.Error("empty roster must yield empty matrices")
	}
	if report.ImbalanceAlert != "" {
		t.Errorf("empty roster must not alert, got %q", report.ImbalanceAlert)
	}
	if report.OverallHighRiskPct != 0 {
		t.Errorf("OverallHighRiskPct = %.1f, want 0", report.OverallHighRiskPct)
	}
}

func TestReportCountsAndRates(t *testing.T) {
	monitor := NewMonitor(testLogger())

	cases := []domain.Case{
		fairnessCase(domain.GenderMale, 30, domain.TierHigh),
		fairnessCase(domain.GenderMale, 35, domain.TierLow),
		fairnessCase(domain.GenderFemale, 70, domain.TierMedium),
		fairnessCase(domain.GenderFemale, 72, domain.TierHigh),
	}
	report := monitor.Report(cases)

	male := report.GenderRiskMatrix["male"]
	if male.High != 1 || male.Low != 1 || male.Medium != 0 {
		t.Errorf("male counts = %+v", male)
	}
	if report.GenderRates["male"] != 50 {
		t.Errorf("male high-risk rate = %.1f, want 50", report.GenderRates["male"])
	}
	if report.AgeGroupRates["60-79"] != 50 {
		t.Errorf("60-79 rate = %.1f, want 50", report.AgeGroupRates["60-79"])
	}
	if report.OverallHighRiskPct != 50 {
		t.Errorf("OverallHighRiskPct = %.1f, want 50", report.OverallHighRiskPct)
	}
}

func TestReportImbalanceAlertNamesFirstOutlier(t *testing.T) {
	monitor := NewMonitor(testLogger())

	// Female group rate 100%, male 0%, shared age group 10%: the mean
	// of (0, 100, 10) is 36.7, so only the female rate exceeds twice it.
	cases := []domain.Case{
		fairnessCase(domain.GenderFemale, 30, domain.TierHigh),
	}
	for i := 0; i < 9; i++ {
		cases = append(cases, fairnessCase(domain.GenderMale, 30, domain.TierLow))
	}
	report := monitor.Report(cases)

	if report.ImbalanceAlert == "" {
		t.Fatal("expected an imbalance alert")
	}
	if !strings.Contains(report.ImbalanceAlert, "Gender 'female'") {
		t.Errorf("alert %q should name the female group", report.ImbalanceAlert)
	}
	if !strings.Contains(report.ImbalanceAlert, "100.0%") {
		t.Errorf("alert %q should carry the group rate", report.ImbalanceAlert)
	}
}

func TestReportNoAlertWhenBalanced(t *testing.T) {
	monitor := NewMonitor(testLogger())

	cases := []domain.Case{
		fairnessCase(domain.GenderMale, 30, domain.TierHigh),
		fairnessCase(domain.GenderMale, 35, domain.TierLow),
		fairnessCase(domain.GenderFemale, 30, domain.TierHigh),
		fairnessCase(domain.GenderFemale, 35, domain.TierLow),
	}
	report := monitor.Report(cases)

	if report.ImbalanceAlert != "" {
		t.Errorf("balanced roster must not alert, got %q", report.ImbalanceAlert)
	}
}

func TestReportNoAlertWithoutHighRisk(t *testing.T) {
	monitor := NewMonitor(testLogger())

	cases := []domain.Case{
		fairnessCase(domain.GenderMale, 30, domain.TierLow),
		fairnessCase(domain.GenderFemale, 70, domain.TierMedium),
	}
	report := monitor.Report(cases)

	if report.ImbalanceAlert != "" {
		t.Errorf("zero mean rate must suppress alerts, got %q", report.ImbalanceAlert)
	}
	// Parity is defined as 1.0 when there is no high-risk baseline.
	for g, parity := range report.GenderParity {
		if parity != 1.0 {
			t.Errorf("parity[%s] = %.2f, want 1.0", g, parity)
		}
	}
}

func TestReportParityRatios(t *testing.T) {
	monitor := NewMonitor(testLogger())

	cases := []domain.Case{
		fairnessCase(domain.GenderMale, 30, domain.TierHigh),
		fairnessCase(domain.GenderMale, 35, domain.TierHigh),
		fairnessCase(domain.GenderFemale, 30, domain.TierLow),
		fairnessCase(domain.GenderFemale, 35, domain.TierLow),
	}
	report := monitor.Report(cases)

	if report.GenderParity["male"] != 2.0 {
		t.Errorf("male parity = %.2f, want 2.0", report.GenderParity["male"])
	}
	if report.GenderParity["female"] != 0 {
		t.Errorf("female parity = %.2f, want 0", report.GenderParity["female"])
	}
}

func TestReportInvalidGenderBucketsAsOther(t *testing.T) {
	monitor := NewMonitor(testLogger())

	cases := []domain.Case{
		{Gender: domain.Gender("unspecified"), Age: 30, RiskTier: domain.TierLow, Active: true},
	}
	report := monitor.Report(cases)

	if report.GenderRiskMatrix["other"].Low != 1 {
		t.Errorf("unknown gender should bucket as other, got %+v", report.GenderRiskMatrix)
	}
}
