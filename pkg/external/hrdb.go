// Package external provides clients for external reference services.
package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/ahse-server/internal/domain"
)

// HRDBClient queries the Human Research Database for reference health
// baselines. Calls are rate limited and wrapped in a circuit breaker so
// an outage of the reference service cannot stall simulations.
type HRDBClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	retryCount int
	log        *logrus.Logger
}

// NewHRDBClient creates a new HRDB API client.
func NewHRDBClient(config domain.HRDBConfig, logger *logrus.Logger) *HRDBClient {
	settings := gobreaker.Settings{
		Name:        "hrdb",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	}

	rps := config.RateLimit
	if rps <= 0 {
		rps = 1
	}

	return &HRDBClient{
		baseURL: config.BaseURL,
		apiKey:  config.APIKey,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		limiter:    rate.NewLimiter(rate.Limit(rps), rps),
		breaker:    gobreaker.NewCircuitBreaker(settings),
		retryCount: config.RetryCount,
		log:        logger,
	}
}

// ReferenceBaseline is a population-normal health snapshot for a cohort.
type ReferenceBaseline struct {
	Cohort      string               `json:"cohort"`
	SampleSize  int                  `json:"sample_size"`
	Baseline    domain.HealthMetrics `json:"baseline"`
	LastUpdated time.Time            `json:"last_updated"`
}

// GetReferenceBaseline fetches the population baseline for an age/gender
// cohort. Callers use it to seed profiles when no individual baseline
// exists.
func (c *HRDBClient) GetReferenceBaseline(ctx context.Context, age int, gender string) (*ReferenceBaseline, error) {
	params := url.Values{
		"age":    {fmt.Sprintf("%d", age)},
		"gender": {gender},
	}
	var baseline ReferenceBaseline
	if err := c.getJSON(ctx, "baselines", params, &baseline); err != nil {
		return nil, fmt.Errorf("fetching reference baseline: %w", err)
	}
	return &baseline, nil
}

// MissionOutcome is an aggregated historical outcome record for a
// mission type.
type MissionOutcome struct {
	MissionType    string  `json:"mission_type"`
	Missions       int     `json:"missions"`
	MeanDurationD  int     `json:"mean_duration_days"`
	SuccessRate    float64 `json:"success_rate"`
	MeanFinalScore float64 `json:"mean_final_score"`
}

// GetMissionOutcomes fetches historical outcome aggregates for a mission
// type, used to contextualize predicted success probabilities.
func (c *HRDBClient) GetMissionOutcomes(ctx context.Context, missionType domain.MissionType) (*MissionOutcome, error) {
	params := url.Values{
		"mission_type": {string(missionType)},
	}
	var outcome MissionOutcome
	if err := c.getJSON(ctx, "outcomes", params, &outcome); err != nil {
		return nil, fmt.Errorf("fetching mission outcomes: %w", err)
	}
	return &outcome, nil
}

// getJSON performs a rate-limited, breaker-guarded GET with retries and
// decodes the JSON response into out.
func (c *HRDBClient) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}
	fullURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	var lastErr error
	attempts := c.retryCount + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		body, err := c.breaker.Execute(func() (interface{}, error) {
			return c.doRequest(ctx, fullURL)
		})
		if err == nil {
			return json.Unmarshal(body.([]byte), out)
		}
		lastErr = err

		// Breaker-open failures will not recover within a retry loop.
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return err
		}
		c.log.WithFields(logrus.Fields{
			"url":     fullURL,
			"attempt": attempt + 1,
			"error":   err,
		}).Warn("HRDB request failed")
	}
	return lastErr
}

func (c *HRDBClient) doRequest(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HRDB returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}
