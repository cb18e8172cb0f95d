// Package external contains HTTP clients for the engine's external
// collaborators: the risk-classification service and the optional
// explanation service, both wrapped in circuit breakers.
package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/triage-routing-engine/internal/domain"
)

// ClassifierClient consumes the black-box risk scorer over HTTP. Any
// failure — network, breaker open, non-2xx, malformed payload — is
// surfaced as domain.ErrServiceUnavailable: fatal to the admission
// attempt, never silently defaulted.
type ClassifierClient struct {
	logger     *logrus.Logger
	httpClient *http.Client
	baseURL    string
	apiKey     string
	breaker    *gobreaker.CircuitBreaker
}

// NewClassifierClient creates a classifier client from configuration.
func NewClassifierClient(logger *logrus.Logger, cfg domain.ClassifierConfig) *ClassifierClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "RiskClassifier",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state change")
		},
	})
	return &ClassifierClient{
		logger:     logger,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		breaker:    breaker,
	}
}

// classifyResponse mirrors the classifier service's wire format.
type classifyResponse struct {
	RiskLevel            string  `json:"risk_level"`
	ProbabilityBreakdown struct {
		Low    float64 `json:"low"`
		Medium float64 `json:"medium"`
		High   float64 `json:"high"`
	} `json:"probability_breakdown"`
	ConfidenceScore float64 `json:"confidence_score"`
}

// ClassifyRisk obtains a risk tier for the given features.
func (c *ClassifierClient) ClassifyRisk(ctx context.Context, features *domain.ClassifierFeatures) (*domain.RiskPrediction, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.doClassify(ctx, features)
	})
	if err != nil {
		c.logger.WithError(err).Error("Risk classifier call failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrServiceUnavailable, err)
	}
	return result.(*domain.RiskPrediction), nil
}

func (c *ClassifierClient) doClassify(ctx context.Context, features *domain.ClassifierFeatures) (*domain.RiskPrediction, error) {
	body, err := json.Marshal(features)
	if err != nil {
		return nil, fmt.Errorf("encoding classifier request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/classify", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building classifier request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classifier request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("classifier returned status %d: %s", resp.StatusCode, string(payload))
	}

	var parsed classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding classifier response: %w", err)
	}

	tier := domain.RiskTier(parsed.RiskLevel)
	if !tier.IsValid() {
		return nil, fmt.Errorf("classifier returned unknown risk tier %q", parsed.RiskLevel)
	}

	return &domain.RiskPrediction{
		Tier: tier,
		Probabilities: domain.Probabilities{
			Low:    parsed.ProbabilityBreakdown.Low,
			Medium: parsed.ProbabilityBreakdown.Medium,
			High:   parsed.ProbabilityBreakdown.High,
		},
		Confidence: parsed.ConfidenceScore,
	}, nil
}
