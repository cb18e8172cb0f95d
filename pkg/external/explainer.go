package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/triage-routing-engine/internal/domain"
)

// ExplainerClient consumes the optional natural-language explanation
// service. It checks the cache first and populates it on success. The
// caller owns the request-scoped timeout; failures here are expected to
// be downgraded, never surfaced to end users.
type ExplainerClient struct {
	logger     *logrus.Logger
	httpClient *http.Client
	baseURL    string
	apiKey     string
	breaker    *gobreaker.CircuitBreaker
	cache      *ExplanationCache
}

// NewExplainerClient creates an explanation-service client. cache may
// be nil to disable caching.
func NewExplainerClient(logger *logrus.Logger, cfg domain.ExplainerConfig, cache *ExplanationCache) *ExplainerClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "Explainer",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     30 * time.Second,
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
	return &ExplainerClient{
		logger:     logger,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		breaker:    breaker,
		cache:      cache,
	}
}

// Explain returns the explanation for a routing decision context.
func (c *ExplainerClient) Explain(ctx context.Context, ec *domain.ExplanationContext) (*domain.Explanation, error) {
	if c.cache != nil {
		if cached, ok := c.cache.Get(ctx, ec); ok {
			return cached, nil
		}
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.doExplain(ctx, ec)
	})
	if err != nil {
		return nil, &domain.DegradedServiceError{Service: "explainer", Err: err}
	}

	explanation := result.(*domain.Explanation)
	if c.cache != nil {
		c.cache.Put(ctx, ec, explanation)
	}
	return explanation, nil
}

func (c *ExplainerClient) doExplain(ctx context.Context, ec *domain.ExplanationContext) (*domain.Explanation, error) {
	body, err := json.Marshal(ec)
	if err != nil {
		return nil, fmt.Errorf("encoding explain request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/explain", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building explain request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("explain request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("explainer returned status %d", resp.StatusCode)
	}

	var explanation domain.Explanation
	if err := json.NewDecoder(resp.Body).Decode(&explanation); err != nil {
		return nil, fmt.Errorf("decoding explain response: %w", err)
	}
	return &explanation, nil
}
