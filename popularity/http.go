package popularity

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
)

// userAgent identifies requests to public APIs that ask for one.
const userAgent = "daytrip/1.0 (landmark popularity lookup)"

// StatusError is returned for a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// breakerFailures consecutive failures against one host open its circuit.
const breakerFailures = 5

// retryClient performs requests and retries 429 responses, honoring
// Retry-After when present and backing off exponentially otherwise. Each
// host sits behind its own circuit breaker so an unavailable source is
// skipped for the rest of a batch.
type retryClient struct {
	http       *http.Client
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	breakerTTL time.Duration
	logger     zerolog.Logger

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[[]byte]
}

func newRetryClient(client *http.Client, logger zerolog.Logger) *retryClient {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &retryClient{
		http:       client,
		maxRetries: 3,
		baseDelay:  time.Second,
		maxDelay:   30 * time.Second,
		breakerTTL: time.Minute,
		logger:     logger,
		breakers:   make(map[string]*gobreaker.CircuitBreaker[[]byte]),
	}
}

func (c *retryClient) breaker(host string) *gobreaker.CircuitBreaker[[]byte] {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cb, ok := c.breakers[host]; ok {
		return cb
	}
	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        host,
		MaxRequests: 1,
		Timeout:     c.breakerTTL,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailures
		},
		IsSuccessful: func(err error) bool {
			// Missing pages and cancellations say nothing about the host.
			var se *StatusError
			if errors.As(err, &se) && se.Code == http.StatusNotFound {
				return true
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn().Str("host", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state change")
		},
	})
	c.breakers[host] = cb
	return cb
}

// do sends the request built by newReq through the host's circuit breaker.
func (c *retryClient) do(ctx context.Context, newReq func(ctx context.Context) (*http.Request, error)) ([]byte, error) {
	req, err := newReq(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.breaker(req.URL.Host).Execute(func() ([]byte, error) {
		return c.doWithRetry(ctx, newReq)
	})
}

// doWithRetry sends the request built by newReq and returns the response
// body. newReq is called once per attempt since request bodies cannot be
// replayed.
func (c *retryClient) doWithRetry(ctx context.Context, newReq func(ctx context.Context) (*http.Request, error)) ([]byte, error) {
	for attempt := 0; ; attempt++ {
		req, err := newReq(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to call %s: %w", req.URL.Host, err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			if attempt == c.maxRetries {
				return nil, fmt.Errorf("rate limit exceeded after %d retries: %w", c.maxRetries, &StatusError{Code: resp.StatusCode, Body: string(body)})
			}

			retryAfter := resp.Header.Get("Retry-After")
			delay := parseRetryAfter(retryAfter)
			if delay <= 0 {
				delay = c.baseDelay * time.Duration(1<<attempt)
			}
			delay = min(delay, c.maxDelay)

			c.logger.Warn().
				Str("host", req.URL.Host).
				Int("attempt", attempt+1).
				Dur("delay", delay).
				Str("retry_after", retryAfter).
				Msg("rate limited, retrying")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &StatusError{Code: resp.StatusCode, Body: truncate(string(body), 200)}
		}
		return body, nil
	}
}

// parseRetryAfter accepts either delay-seconds or an HTTP date.
func parseRetryAfter(retryAfter string) time.Duration {
	if retryAfter == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(retryAfter); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if retryTime, err := http.ParseTime(retryAfter); err == nil {
		return time.Until(retryTime)
	}
	return 0
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
