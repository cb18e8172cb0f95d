package triage

import (
	"testing"

	"github.com/triage-routing-engine/internal/domain"
)

func TestRegistryStatusLoads(t *testing.T) {
	registry := NewRegistry(testConfig())

	active := fillDepartment("Cardiology", 13, domain.TierMedium)
	status := registry.StatusForActive(active)

	byName := make(map[string]domain.DepartmentStatus)
	for _, s := range status {
		byName[s.Department] = s
	}

	cardio := byName["Cardiology"]
	if cardio.CurrentPatients != 13 {
		t.Errorf("CurrentPatients = %d, want 13", cardio.CurrentPatients)
	}
	if cardio.LoadPercentage != 86.7 {
		t.Errorf("LoadPercentage = %.1f, want 86.7", cardio.LoadPercentage)
	}
	if !cardio.Overloaded {
		t.Error("13/15 is above the 85%% threshold")
	}

	empty := byName["Emergency"]
	if empty.CurrentPatients != 0 || empty.LoadPercentage != 0 || empty.Overloaded {
		t.Errorf("idle department should report zero load, got %+v", empty)
	}
}

func TestRegistryOverloadBoundary(t *testing.T) {
	registry := NewRegistry(testConfig())

	tests := []struct {
		count      int
		overloaded bool
	}{
		{12, false}, // 80.0%
		{13, true},  // 86.7%
		{15, true},  // 100%
	}

	for _, tt := range tests {
		active := fillDepartment("Cardiology", tt.count, domain.TierLow)
		status := registry.StatusForActive(active)
		for _, s := range status {
			if s.Department != "Cardiology" {
				continue
			}
			if s.Overloaded != tt.overloaded {
				t.Errorf("%d/15 overloaded = %v, want %v", tt.count, s.Overloaded, tt.overloaded)
			}
		}
	}
}

func TestRegistryIgnoresUnknownAndInactive(t *testing.T) {
	registry := NewRegistry(testConfig())

	ghost := activeCase("PT-1", "Oncology", domain.TierLow, 20, testTime())
	closed := activeCase("PT-2", "Cardiology", domain.TierLow, 20, testTime())
	closed.Active = false
	open := activeCase("PT-3", "Cardiology", domain.TierLow, 20, testTime())

	counts := registry.CountRouted([]*domain.Case{ghost, closed, open, nil})
	if counts["Cardiology"] != 1 {
		t.Errorf("Cardiology count = %d, want 1", counts["Cardiology"])
	}
	if _, ok := counts["Oncology"]; ok {
		t.Error("unknown departments must not appear in counts")
	}
}

func TestRegistryNamesInConfiguredOrder(t *testing.T) {
	registry := NewRegistry(testConfig())
	names := registry.Names()

	expected := []string{"General Medicine", "Cardiology", "Neurology", "Emergency", "Pulmonology"}
	if len(names) != len(expected) {
		t.Fatalf("len(Names()) = %d, want %d", len(names), len(expected))
	}
	for i, n := range expected {
		if names[i] != n {
			t.Errorf("Names()[%d] = %q, want %q", i, names[i], n)
		}
	}
}

func TestRegistryCapacityLookup(t *testing.T) {
	registry := NewRegistry(testConfig())

	if cap, ok := registry.Capacity("Neurology"); !ok || cap != 12 {
		t.Errorf("Capacity(Neurology) = %d,%v, want 12,true", cap, ok)
	}
	if _, ok := registry.Capacity("Oncology"); ok {
		t.Error("unknown department should not resolve a capacity")
	}
	if registry.Known("Oncology") {
		t.Error("Known(Oncology) should be false")
	}
}
