package roster

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triage-routing-engine/internal/domain"
	"github.com/triage-routing-engine/internal/triage"
)

func newTestRoster() *Roster {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := &domain.TriageConfig{
		Departments: []domain.DepartmentConfig{
			{Name: "Emergency", MaxCapacity: 25},
			{Name: "Cardiology", MaxCapacity: 15},
		},
		OverloadThresholdPercent: 85,
		Wait: domain.WaitConfig{
			BaseMinutes:          15,
			MinimumMinutes:       5,
			HighRiskPressureStep: 0.1,
		},
	}
	return New(logger, triage.NewEstimator(logger, triage.NewRegistry(cfg), cfg))
}

func buildCase(id string, priority int, created time.Time) func([]*domain.Case) (*domain.Case, error) {
	return func(active []*domain.Case) (*domain.Case, error) {
		return &domain.Case{
			ID:               id,
			RiskTier:         domain.TierMedium,
			PriorityScore:    priority,
			RoutedDepartment: "Emergency",
			Active:           true,
			CreatedAt:        created,
		}, nil
	}
}

func TestAdmitCommitsAndProjects(t *testing.T) {
	r := newTestRoster()

	committed, err := r.Admit(context.Background(), buildCase("PT-1", 50, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, "PT-1", committed.ID)
	assert.GreaterOrEqual(t, committed.EstimatedWaitMinutes, 5,
		"recompute must run before the snapshot is taken")
	assert.Equal(t, 1, r.Len())
}

func TestAdmitRejectsDuplicateID(t *testing.T) {
	r := newTestRoster()

	_, err := r.Admit(context.Background(), buildCase("PT-1", 50, time.Now()))
	require.NoError(t, err)

	_, err = r.Admit(context.Background(), buildCase("PT-1", 50, time.Now()))
	assert.Error(t, err)
	assert.Equal(t, 1, r.Len())
}

func TestAdmitBuildErrorLeavesRosterUntouched(t *testing.T) {
	r := newTestRoster()

	_, err := r.Admit(context.Background(), func(active []*domain.Case) (*domain.Case, error) {
		return nil, errors.New("no capacity")
	})
	assert.Error(t, err)
	assert.Equal(t, 0, r.Len())
}

func TestDischargeLifecycle(t *testing.T) {
	r := newTestRoster()
	ctx := context.Background()

	_, err := r.Admit(ctx, buildCase("PT-1", 50, time.Now()))
	require.NoError(t, err)

	require.NoError(t, r.Discharge(ctx, "PT-1"))
	assert.Equal(t, 0, r.Len())

	// Repeat discharge is a distinct failure from an unknown id.
	assert.True(t, errors.Is(r.Discharge(ctx, "PT-1"), domain.ErrAlreadyClosed))
	assert.True(t, errors.Is(r.Discharge(ctx, "PT-404"), domain.ErrNotFound))

	// Discharged cases stay findable but are excluded from the queue.
	c, ok := r.Get("PT-1")
	require.True(t, ok)
	assert.False(t, c.Active)
	assert.Empty(t, r.Active())
	assert.Len(t, r.All(), 1)
}

func TestUpdateVitalsRecomputes(t *testing.T) {
	r := newTestRoster()
	ctx := context.Background()

	_, err := r.Admit(ctx, buildCase("PT-1", 50, time.Now()))
	require.NoError(t, err)

	vitals := domain.VitalSigns{HeartRate: 130, BPSystolic: 150, BPDiastolic: 90, Temperature: 38.0, SpO2: 91}
	require.NoError(t, r.UpdateVitals(ctx, "PT-1", vitals))

	c, ok := r.Get("PT-1")
	require.True(t, ok)
	assert.Equal(t, 130, c.Vitals.HeartRate)

	assert.True(t, errors.Is(r.UpdateVitals(ctx, "PT-404", vitals), domain.ErrNotFound))
}

func TestActiveReturnsQueueOrder(t *testing.T) {
	r := newTestRoster()
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	_, err := r.Admit(ctx, buildCase("PT-LOW", 20, base))
	require.NoError(t, err)
	_, err = r.Admit(ctx, buildCase("PT-HIGH", 95, base.Add(time.Minute)))
	require.NoError(t, err)
	_, err = r.Admit(ctx, buildCase("PT-MED", 55, base.Add(2*time.Minute)))
	require.NoError(t, err)

	active := r.Active()
	require.Len(t, active, 3)
	assert.Equal(t, "PT-HIGH", active[0].ID)
	assert.Equal(t, "PT-MED", active[1].ID)
	assert.Equal(t, "PT-LOW", active[2].ID)
}

func TestActiveReturnsSnapshots(t *testing.T) {
	r := newTestRoster()

	_, err := r.Admit(context.Background(), buildCase("PT-1", 50, time.Now()))
	require.NoError(t, err)

	snapshot := r.Active()
	snapshot[0].PriorityScore = 0

	c, _ := r.Get("PT-1")
	assert.Equal(t, 50, c.PriorityScore, "mutating a snapshot must not reach the roster")
}

func TestAdmitSerializesCapacityChecks(t *testing.T) {
	r := newTestRoster()
	ctx := context.Background()

	// Every admission counts the active roster inside build; with the
	// mutation lock serializing build and append, each observed count
	// must be unique.
	const n = 50
	observed := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := r.Admit(ctx, func(active []*domain.Case) (*domain.Case, error) {
				observed <- len(active)
				return &domain.Case{
					ID:               fmt.Sprintf("PT-%03d", i),
					RiskTier:         domain.TierMedium,
					PriorityScore:    50,
					RoutedDepartment: "Emergency",
					Active:           true,
					CreatedAt:        time.Now(),
				}, nil
			})
			if err != nil {
				t.Errorf("admit %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()
	close(observed)

	seen := make(map[int]bool, n)
	for count := range observed {
		if seen[count] {
			t.Fatalf("two admissions observed the same roster size %d; capacity checks raced", count)
		}
		seen[count] = true
	}
	assert.Equal(t, n, r.Len())
}

func TestConcurrentReadersAndWriters(t *testing.T) {
	r := newTestRoster()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, _ = r.Admit(ctx, buildCase(fmt.Sprintf("PT-%03d", i), 50+i, time.Now()))
		}(i)
		go func() {
			defer wg.Done()
			_ = r.Active()
			_ = r.Len()
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, r.Len())
	for _, c := range r.Active() {
		assert.GreaterOrEqual(t, c.EstimatedWaitMinutes, 5)
	}
}
