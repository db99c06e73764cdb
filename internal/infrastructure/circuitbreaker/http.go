// Package circuitbreaker wraps outbound HTTP clients with a circuit
// breaker so a failing external provider sheds load fast instead of
// stacking up blocked webhook handlers.
package circuitbreaker

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// HTTPClient is an http.Client guarded by a gobreaker.CircuitBreaker.
// Responses with 5xx status count as failures; 4xx responses pass through
// untouched since they indicate a caller problem, not provider health.
type HTTPClient struct {
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	log     *zap.Logger
}

// Settings configures the client and its breaker.
type Settings struct {
	Name        string
	Timeout     time.Duration
	MaxRequests uint32
	Interval    time.Duration
	OpenTimeout time.Duration
}

// DefaultSettings returns the settings used for provider clients.
func DefaultSettings(name string) Settings {
	return Settings{
		Name:        name,
		Timeout:     30 * time.Second,
		MaxRequests: 3,
		Interval:    time.Minute,
		OpenTimeout: 30 * time.Second,
	}
}

// NewHTTPClient creates a breaker-protected HTTP client.
func NewHTTPClient(settings Settings, log *zap.Logger) *HTTPClient {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &HTTPClient{
		client:  &http.Client{Timeout: settings.Timeout},
		breaker: cb,
		log:     log,
	}
}

// Do executes the request through the breaker.
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			return resp, fmt.Errorf("server error: %d", resp.StatusCode)
		}
		return resp, nil
	})

	if err != nil {
		if err == gobreaker.ErrOpenState {
			c.log.Warn("Circuit breaker open, request blocked",
				zap.String("breaker", c.breaker.Name()),
				zap.String("url", req.URL.String()),
			)
			return nil, err
		}
		// A 5xx response is both the error and the result; hand the
		// response back so callers can read the provider's error body.
		if resp, ok := result.(*http.Response); ok {
			return resp, nil
		}
		return nil, err
	}

	return result.(*http.Response), nil
}
