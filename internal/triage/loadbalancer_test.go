package triage

import (
	"strings"
	"testing"

	"github.com/triage-routing-engine/internal/domain"
)

func newTestBalancer() *LoadBalancer {
	cfg := testConfig()
	return NewLoadBalancer(testLogger(), NewRegistry(cfg), cfg)
}

func TestRoutePassThroughWhenNotOverloaded(t *testing.T) {
	lb := newTestBalancer()

	active := fillDepartment("Cardiology", 5, domain.TierMedium)
	dept, msg := lb.Route("Cardiology", domain.TierMedium, active)

	if dept != "Cardiology" {
		t.Errorf("dept = %q, want Cardiology", dept)
	}
	if msg != "" {
		t.Errorf("no overload means no message, got %q", msg)
	}
}

func TestRouteOverflowFollowsCapabilityOrder(t *testing.T) {
	lb := newTestBalancer()

	// Cardiology at 13/15 = 86.7% is past the threshold; Emergency is
	// the most acute-capable alternate with capacity.
	active := fillDepartment("Cardiology", 13, domain.TierMedium)
	dept, msg := lb.Route("Cardiology", domain.TierHigh, active)

	if dept != "Emergency" {
		t.Errorf("dept = %q, want Emergency", dept)
	}
	if !strings.Contains(msg, "Cardiology") || !strings.Contains(msg, "Emergency") {
		t.Errorf("overflow message %q must name both departments", msg)
	}
	if !strings.Contains(msg, "86.7%") {
		t.Errorf("overflow message %q should carry the observed load", msg)
	}
}

func TestRouteOverflowSkipsOverloadedAlternates(t *testing.T) {
	lb := newTestBalancer()

	active := append(
		fillDepartment("Cardiology", 15, domain.TierMedium),
		fillDepartment("Emergency", 25, domain.TierHigh)...,
	)
	dept, msg := lb.Route("Cardiology", domain.TierHigh, active)

	// Emergency is full too, so the next capable alternate wins.
	if dept != "Pulmonology" {
		t.Errorf("dept = %q, want Pulmonology", dept)
	}
	if msg == "" {
		t.Error("reassignment must carry a message")
	}
}

func TestRouteAllOverloadedStaysPut(t *testing.T) {
	cfg := testConfig()
	lb := NewLoadBalancer(testLogger(), NewRegistry(cfg), cfg)

	var active []*domain.Case
	for _, d := range cfg.Departments {
		active = append(active, fillDepartment(d.Name, d.MaxCapacity, domain.TierHigh)...)
	}

	dept, msg := lb.Route("Cardiology", domain.TierHigh, active)
	if dept != "Cardiology" {
		t.Errorf("dept = %q, want the preferred department", dept)
	}
	if !strings.Contains(msg, "No alternate with capacity") {
		t.Errorf("message %q must state that no alternate had capacity", msg)
	}
	if !strings.Contains(msg, "Cardiology") {
		t.Errorf("message %q must name the retained department", msg)
	}
}

func TestRouteUnknownDepartmentFallsBackToTierDefault(t *testing.T) {
	lb := newTestBalancer()

	dept, msg := lb.Route("Oncology", domain.TierHigh, nil)
	if dept != "Emergency" {
		t.Errorf("dept = %q, want the high-tier default", dept)
	}
	if !strings.Contains(msg, "Oncology") || !strings.Contains(msg, "not configured") {
		t.Errorf("message %q must surface the configuration gap", msg)
	}
}

func TestRouteIsIdempotentForUnchangedRoster(t *testing.T) {
	lb := newTestBalancer()
	active := fillDepartment("Cardiology", 13, domain.TierMedium)

	firstDept, firstMsg := lb.Route("Cardiology", domain.TierMedium, active)
	for i := 0; i < 3; i++ {
		dept, msg := lb.Route("Cardiology", domain.TierMedium, active)
		if dept != firstDept || msg != firstMsg {
			t.Fatalf("decision drifted on unchanged roster: %q/%q vs %q/%q", dept, msg, firstDept, firstMsg)
		}
	}

	// The roster itself must be untouched.
	for _, c := range active {
		if c.RoutedDepartment != "Cardiology" {
			t.Fatal("Route must never mutate the roster")
		}
	}
}
