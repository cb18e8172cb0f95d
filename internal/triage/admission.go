package triage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/triage-routing-engine/internal/domain"
)

// AdmissionRequest is one validated patient intake. Vitals and ranges
// are assumed consistent; this engine does not re-validate them.
type AdmissionRequest struct {
	Age                   int               `json:"age" binding:"required,gte=0,lte=150"`
	Gender                domain.Gender     `json:"gender" binding:"required"`
	Symptoms              []string          `json:"symptoms" binding:"required,min=1"`
	Vitals                domain.VitalSigns `json:"vitals" binding:"required"`
	ChronicDiseaseCount   int               `json:"chronic_disease_count"`
	SymptomDurationHours  int               `json:"symptom_duration"`
	PreExistingConditions []string          `json:"pre_existing_conditions"`
}

// AdmissionResult pairs the committed case with the optional
// explanation enrichment. The explanation is best-effort: when the
// explanation service is degraded the rule-based reasoning stands alone.
type AdmissionResult struct {
	Case        domain.Case         `json:"case"`
	Explanation *domain.Explanation `json:"explanation,omitempty"`
}

// AdmissionService orchestrates one admission: classify, route, balance
// against current load, score, predict severity, then commit to the
// roster as a single atomic mutate-then-recompute unit.
type AdmissionService struct {
	logger     *logrus.Logger
	classifier domain.RiskClassifier
	explainer  domain.ExplanationService
	roster     domain.CaseRepository
	history    domain.HistoryStore
	router     *Router
	balancer   *LoadBalancer
	scorer     *Scorer
	predictor  *Predictor

	explainTimeout time.Duration
	now            func() time.Time
}

// NewAdmissionService wires the admission workflow. explainer and
// history may be nil; both are optional collaborators.
func NewAdmissionService(
	logger *logrus.Logger,
	classifier domain.RiskClassifier,
	explainer domain.ExplanationService,
	roster domain.CaseRepository,
	history domain.HistoryStore,
	router *Router,
	balancer *LoadBalancer,
	scorer *Scorer,
	predictor *Predictor,
	explainTimeout time.Duration,
) *AdmissionService {
	if explainTimeout <= 0 {
		explainTimeout = 3 * time.Second
	}
	return &AdmissionService{
		logger:         logger,
		classifier:     classifier,
		explainer:      explainer,
		roster:         roster,
		history:        history,
		router:         router,
		balancer:       balancer,
		scorer:         scorer,
		predictor:      predictor,
		explainTimeout: explainTimeout,
		now:            time.Now,
	}
}

// Admit processes one admission end to end. A classifier failure is
// fatal and surfaces as domain.ErrServiceUnavailable; an explanation
// failure is recovered locally and never propagates.
func (s *AdmissionService) Admit(ctx context.Context, req *AdmissionRequest) (*AdmissionResult, error) {
	prediction, err := s.classifier.ClassifyRisk(ctx, &domain.ClassifierFeatures{
		Age:                  req.Age,
		Gender:               req.Gender,
		Vitals:               req.Vitals,
		ChronicDiseaseCount:  req.ChronicDiseaseCount,
		SymptomDurationHours: req.SymptomDurationHours,
		Symptoms:             req.Symptoms,
	})
	if err != nil {
		s.logger.WithError(err).Error("Risk classification failed, admission rejected")
		if errors.Is(err, domain.ErrServiceUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrServiceUnavailable, err)
	}

	tier := prediction.Tier
	preferred, reasoning := s.router.Recommend(tier, req.Symptoms)
	priority := s.scorer.Score(tier, prediction.Confidence)
	severity, hasSeverity := s.predictor.Predict(tier, req.Vitals)
	alerts := VitalAlerts(req.Vitals)
	createdAt := s.now().UTC()

	// The load-balancing check and the roster mutation it informs run
	// under the roster's mutation lock so that two simultaneous
	// admissions cannot both claim the last free slot of a department.
	committed, err := s.roster.Admit(ctx, func(active []*domain.Case) (*domain.Case, error) {
		routed, routingMsg := s.balancer.Route(preferred, tier, active)
		fullReasoning := reasoning
		if routingMsg != "" {
			fullReasoning = reasoning + " " + routingMsg
		}
		c := &domain.Case{
			ID:                    generateCaseID(createdAt),
			Age:                   req.Age,
			Gender:                req.Gender,
			Symptoms:              req.Symptoms,
			Vitals:                req.Vitals,
			ChronicDiseaseCount:   req.ChronicDiseaseCount,
			SymptomDurationHours:  req.SymptomDurationHours,
			PreExistingConditions: req.PreExistingConditions,
			RiskTier:              tier,
			Confidence:            prediction.Confidence,
			Probabilities:         prediction.Probabilities,
			PriorityScore:         priority,
			PreferredDepartment:   preferred,
			RoutedDepartment:      routed,
			RoutingMessage:        routingMsg,
			Reasoning:             fullReasoning,
			Alerts:                alerts,
			Active:                true,
			CreatedAt:             createdAt,
		}
		if hasSeverity {
			c.SeverityTimeline = severity
		}
		return c, nil
	})
	if err != nil {
		return nil, fmt.Errorf("committing admission: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"case_id":        committed.ID,
		"risk_tier":      string(tier),
		"priority_score": priority,
		"preferred":      preferred,
		"routed":         committed.RoutedDepartment,
		"overflow":       committed.RoutingMessage != "",
	}).Info("Admission committed")

	if s.history != nil {
		if herr := s.history.SaveAdmission(ctx, committed); herr != nil {
			s.logger.WithError(herr).Warn("Failed to record admission in history store")
		}
	}

	result := &AdmissionResult{Case: *committed}
	result.Explanation = s.explain(ctx, committed)
	return result, nil
}

// Discharge clears a case from the active roster and recomputes all
// projections before any reader observes the roster again.
func (s *AdmissionService) Discharge(ctx context.Context, id string) error {
	if err := s.roster.Discharge(ctx, id); err != nil {
		return err
	}
	s.logger.WithField("case_id", id).Info("Case discharged")
	if s.history != nil {
		if herr := s.history.MarkDischarged(ctx, id, s.now().UTC()); herr != nil {
			s.logger.WithError(herr).Warn("Failed to record discharge in history store")
		}
	}
	return nil
}

// UpdateVitals replaces a case's vitals and recomputes projections.
func (s *AdmissionService) UpdateVitals(ctx context.Context, id string, vitals domain.VitalSigns) error {
	return s.roster.UpdateVitals(ctx, id, vitals)
}

// explain asks the optional explanation service for enrichment within a
// bounded timeout. Any failure is downgraded to a log entry; the caller
// keeps the rule-based reasoning.
func (s *AdmissionService) explain(ctx context.Context, c *domain.Case) *domain.Explanation {
	if s.explainer == nil {
		return nil
	}
	explainCtx, cancel := context.WithTimeout(ctx, s.explainTimeout)
	defer cancel()

	explanation, err := s.explainer.Explain(explainCtx, &domain.ExplanationContext{
		Tier:       c.RiskTier,
		Symptoms:   c.Symptoms,
		Vitals:     c.Vitals,
		Department: c.RoutedDepartment,
	})
	if err != nil {
		degraded := &domain.DegradedServiceError{Service: "explainer", Err: err}
		s.logger.WithError(degraded).WithField("case_id", c.ID).
			Warn("Explanation service degraded, using rule-based reasoning")
		return nil
	}
	return explanation
}

// generateCaseID builds a human-scannable case identifier like
// PT-20250115-A3F29B.
func generateCaseID(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return fmt.Sprintf("PT-%s-%s", at.Format("20060102"), suffix)
}
