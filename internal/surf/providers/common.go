package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/i474232898/surf-spot-ranking/internal/surf"
)

// HTTPClientConfig bundles the HTTP client and the outbound request budget.
type HTTPClientConfig struct {
	Client *http.Client
	// Limiter caps requests per second to the provider. Nil means unlimited.
	Limiter *rate.Limiter
}

// Options tunes a provider at construction time.
type Options struct {
	BaseURL string
	Limiter *rate.Limiter
}

var (
	errRateLimited  = errors.New("rate limited")
	errServerError  = errors.New("server error")
	errUnexpected   = errors.New("unexpected status code")
	errNoHTTPClient = errors.New("http client not configured")
)

const maxErrorBody = 512

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}

// doRequest executes a single attempt through the circuit breaker. There are
// no retries; a failed call is reported and the provider sits this request out.
func doRequest(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	req *http.Request,
) (*http.Response, error) {
	if cfg.Client == nil {
		return nil, errNoHTTPClient
	}
	if cfg.Limiter != nil {
		if err := cfg.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req = req.WithContext(ctx)

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := cfg.Client.Do(req)
		if execErr != nil {
			return nil, execErr
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			drain(resp)
			return nil, errRateLimited
		}
		if resp.StatusCode >= 500 {
			drain(resp)
			return nil, fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			resp.Body.Close()
			return nil, fmt.Errorf("%w: %d %s", errUnexpected, resp.StatusCode, body)
		}

		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %s: %v", surf.ErrProviderUnavailable, cb.Name(), err)
		}
		return nil, err
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return resp, nil
}

func decodeJSON(resp *http.Response, v any) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	resp.Body.Close()
}

func windowOrDefault(w surf.TimeWindow, now time.Time, horizon time.Duration) surf.TimeWindow {
	if w.Start.IsZero() {
		w.Start = now
	}
	if w.End.IsZero() || !w.End.After(w.Start) {
		w.End = w.Start.Add(horizon)
	}
	return w
}

func inWindow(t time.Time, w surf.TimeWindow) bool {
	// Keep the hour that started just before the window opened.
	return !t.Before(w.Start.Add(-time.Hour)) && !t.After(w.End)
}
