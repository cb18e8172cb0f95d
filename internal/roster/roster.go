// Package roster owns the shared mutable set of active cases. Every
// mutation (admit, discharge, vitals update) and the full recompute of
// wait projections it mandates execute as one atomic unit under a
// single mutual-exclusion lock, so readers never observe a roster where
// some cases reflect the post-mutation state and others the
// pre-mutation state.
package roster

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/triage-routing-engine/internal/domain"
	"github.com/triage-routing-engine/internal/triage"
)

// Roster is the in-memory case repository.
type Roster struct {
	mu        sync.RWMutex
	cases     []*domain.Case
	byID      map[string]*domain.Case
	estimator *triage.Estimator
	logger    *logrus.Logger
}

// New creates an empty roster wired to the wait-time estimator.
func New(logger *logrus.Logger, estimator *triage.Estimator) *Roster {
	return &Roster{
		byID:      make(map[string]*domain.Case),
		estimator: estimator,
		logger:    logger,
	}
}

// Admit runs build with a snapshot of the active cases, commits the
// returned case and recomputes all projections, all under the mutation
// lock. Because capacity checks inside build and the count-changing
// append are serialized, two simultaneous admissions cannot both claim
// the last free slot of a near-capacity department.
func (r *Roster) Admit(ctx context.Context, build func(active []*domain.Case) (*domain.Case, error)) (*domain.Case, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, err := build(r.activeLocked())
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("admission build returned no case")
	}
	if _, exists := r.byID[c.ID]; exists {
		return nil, fmt.Errorf("duplicate case id %s", c.ID)
	}

	r.cases = append(r.cases, c)
	r.byID[c.ID] = c
	r.recomputeLocked()

	snapshot := *c
	r.logger.WithFields(logrus.Fields{
		"case_id":      c.ID,
		"active_cases": len(r.activeLocked()),
	}).Debug("Roster mutated: admit")
	return &snapshot, nil
}

// Discharge clears a case's active flag and recomputes.
func (r *Roster) Discharge(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	if !c.Active {
		return domain.ErrAlreadyClosed
	}
	c.Active = false
	r.recomputeLocked()

	r.logger.WithField("case_id", id).Debug("Roster mutated: discharge")
	return nil
}

// UpdateVitals replaces a case's vitals and recomputes.
func (r *Roster) UpdateVitals(ctx context.Context, id string, vitals domain.VitalSigns) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	if !c.Active {
		return domain.ErrAlreadyClosed
	}
	c.Vitals = vitals
	r.recomputeLocked()

	r.logger.WithField("case_id", id).Debug("Roster mutated: vitals update")
	return nil
}

// Active returns a complete snapshot of the active cases in
// deterministic queue order: priority descending, creation time
// ascending.
func (r *Roster) Active() []domain.Case {
	r.mu.RLock()
	defer r.mu.RUnlock()

	active := r.activeLocked()
	ordered := make([]*domain.Case, len(active))
	copy(ordered, active)
	triage.SortQueue(ordered)

	out := make([]domain.Case, len(ordered))
	for i, c := range ordered {
		out[i] = *c
	}
	return out
}

// All returns a snapshot of every case in admission order, discharged
// ones included.
func (r *Roster) All() []domain.Case {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Case, len(r.cases))
	for i, c := range r.cases {
		out[i] = *c
	}
	return out
}

// Get returns a snapshot of one case by id.
func (r *Roster) Get(id string) (domain.Case, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return domain.Case{}, false
	}
	return *c, true
}

// Len returns the number of active cases.
func (r *Roster) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.activeLocked())
}

// Recompute re-runs the batch wait-time projection over the current
// roster. Mutations do this implicitly; the method exists for callers
// that change estimator configuration at runtime.
func (r *Roster) Recompute() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recomputeLocked()
}

func (r *Roster) activeLocked() []*domain.Case {
	active := make([]*domain.Case, 0, len(r.cases))
	for _, c := range r.cases {
		if c.Active {
			active = append(active, c)
		}
	}
	return active
}

func (r *Roster) recomputeLocked() {
	r.estimator.Recompute(r.activeLocked())
}
