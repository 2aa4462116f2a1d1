// Package providers contains the upstream weather API clients.
package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// HTTPClientConfig bundles the HTTP client used by a provider.
type HTTPClientConfig struct {
	Client *http.Client
}

var (
	errRateLimited  = errors.New("rate limited")
	errServerError  = errors.New("server error")
	errUnexpected   = errors.New("unexpected status code")
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")

	// ErrMissingAPIKey is returned by providers that need a key and have none.
	ErrMissingAPIKey = errors.New("api key is not configured")
	// ErrNeedsCoordinates is returned by coordinate-only providers.
	ErrNeedsCoordinates = errors.New("latitude and longitude are required")
)

// permanentError marks a failure caused by the request itself.
type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Option customizes a provider.
type Option func(*base)

// WithBaseURL points the provider at a different endpoint.
func WithBaseURL(u string) Option {
	return func(b *base) { b.baseURL = u }
}

// base holds what every provider shares.
type base struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func newBase(name, baseURL string, client *http.Client, opts []Option) base {
	b := base{
		name:    name,
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{Client: client},
	}
	for _, opt := range opts {
		opt(&b)
	}
	b.circuit = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		// 4xx answers are the caller's fault, not the upstream's.
		IsSuccessful: func(err error) bool {
			var perm permanentError
			return err == nil || errors.As(err, &perm)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("provider", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})
	return b
}

// Name returns the provider name used in logs and contributions.
func (b *base) Name() string {
	return b.name
}

// getJSON issues a GET to path with the query values and decodes the body into v.
func (b *base) getJSON(ctx context.Context, path string, values url.Values, v any) error {
	u := b.baseURL + path
	if len(values) > 0 {
		u += "?" + values.Encode()
	}
	resp, err := doRequestWithResilience(ctx, b.httpCfg, b.circuit, func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, u, nil)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", b.name, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%s: decode response: %w", b.name, err)
	}
	return nil
}

// doRequestWithResilience executes the HTTP request through the circuit
// breaker. Failed requests are not retried; the scheduler's next run is the
// retry.
func doRequestWithResilience(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	buildRequest func() (*http.Request, error),
) (*http.Response, error) {
	if cfg.Client == nil {
		return nil, errNoHTTPClient
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req, err := buildRequest()
	if err != nil {
		return nil, err
	}
	req = req.WithContext(ctx)

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := cfg.Client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return resp, nil
		case resp.StatusCode == http.StatusTooManyRequests:
			execErr = errRateLimited
		case resp.StatusCode >= 500:
			execErr = fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
		default:
			execErr = permanentError{fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)}
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, execErr
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		log.Debug().Err(err).Str("endpoint", req.URL.Host+req.URL.Path).Msg("upstream request failed")
		return nil, err
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return resp, nil
}

// query builds the q parameter accepted by the name-based APIs.
func query(city, country string) string {
	if country == "" {
		return city
	}
	return city + "," + country
}
