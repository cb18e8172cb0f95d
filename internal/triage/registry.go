// Package triage implements the admission decision engine: department
// routing, capacity-aware load balancing, priority scoring, wait-time
// projection, severity timeline prediction and fairness monitoring.
package triage

import (
	"math"

	"github.com/triage-routing-engine/internal/domain"
)

// Registry is the department capacity registry: a static, configurable
// table of department name to maximum concurrent capacity. Iteration
// order is the configured registry order.
type Registry struct {
	names      []string
	capacities map[string]int
	threshold  float64
}

// NewRegistry builds a registry from triage configuration.
func NewRegistry(cfg *domain.TriageConfig) *Registry {
	r := &Registry{
		names:      make([]string, 0, len(cfg.Departments)),
		capacities: make(map[string]int, len(cfg.Departments)),
		threshold:  cfg.OverloadThresholdPercent,
	}
	for _, d := range cfg.Departments {
		r.names = append(r.names, d.Name)
		r.capacities[d.Name] = d.MaxCapacity
	}
	return r
}

// Names returns the department names in registry order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Capacity returns the configured capacity for a department.
func (r *Registry) Capacity(name string) (int, bool) {
	cap, ok := r.capacities[name]
	return cap, ok
}

// Known reports whether the department exists in the registry.
func (r *Registry) Known(name string) bool {
	_, ok := r.capacities[name]
	return ok
}

// OverloadThreshold returns the load percentage at or above which a
// department is considered overloaded.
func (r *Registry) OverloadThreshold() float64 {
	return r.threshold
}

// CountRouted derives per-department occupancy from the active roster:
// the count of active cases whose routed department is known to the
// registry. The roster itself is not mutated.
func (r *Registry) CountRouted(active []*domain.Case) map[string]int {
	counts := make(map[string]int, len(r.names))
	for _, name := range r.names {
		counts[name] = 0
	}
	for _, c := range active {
		if c == nil || !c.Active {
			continue
		}
		if _, ok := r.capacities[c.RoutedDepartment]; ok {
			counts[c.RoutedDepartment]++
		}
	}
	return counts
}

// loadPercent is the pure load function: 100 * count / capacity, or 0
// when capacity is not positive.
func loadPercent(count, capacity int) float64 {
	if capacity <= 0 {
		return 0
	}
	return 100 * float64(count) / float64(capacity)
}

// StatusFromCounts builds the derived load view for every registered
// department. Reported load is rounded to one decimal place; the
// overload flag is decided on the unrounded value.
func (r *Registry) StatusFromCounts(counts map[string]int) []domain.DepartmentStatus {
	status := make([]domain.DepartmentStatus, 0, len(r.names))
	for _, name := range r.names {
		cap := r.capacities[name]
		count := counts[name]
		load := loadPercent(count, cap)
		status = append(status, domain.DepartmentStatus{
			Department:      name,
			MaxCapacity:     cap,
			CurrentPatients: count,
			LoadPercentage:  math.Round(load*10) / 10,
			Overloaded:      load >= r.threshold,
		})
	}
	return status
}

// StatusForActive builds the load view from an active roster snapshot.
func (r *Registry) StatusForActive(active []*domain.Case) []domain.DepartmentStatus {
	return r.StatusFromCounts(r.CountRouted(active))
}

// StatusForCases builds the load view from a by-value roster snapshot.
func (r *Registry) StatusForCases(cases []domain.Case) []domain.DepartmentStatus {
	counts := make(map[string]int, len(r.names))
	for _, name := range r.names {
		counts[name] = 0
	}
	for i := range cases {
		if !cases[i].Active {
			continue
		}
		if _, ok := r.capacities[cases[i].RoutedDepartment]; ok {
			counts[cases[i].RoutedDepartment]++
		}
	}
	return r.StatusFromCounts(counts)
}
