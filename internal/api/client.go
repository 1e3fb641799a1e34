package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
)

const (
	// DefaultTimeout is the per-call request timeout. It must stay below the
	// gateway's hard request-duration ceiling.
	DefaultTimeout = 15 * time.Second

	maxErrorBodySize = 16 * 1024
)

// Client is the HTTP client for the lexicall backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	headers    map[string]string
	breaker    *gobreaker.CircuitBreaker[*httpResult]
}

// httpResult carries a completed response through the circuit breaker. Only
// network failures and 5xx responses count as breaker failures; a 4xx is a
// valid answer from a healthy backend.
type httpResult struct {
	statusCode int
	body       []byte
}

// Option configures a Client
type Option func(*Client)

// WithTimeout overrides the default per-call timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithHeader adds a header to every outgoing request
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// New creates a new backend client for the given base URL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		headers:    make(map[string]string),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.breaker = gobreaker.NewCircuitBreaker[*httpResult](gobreaker.Settings{
		Name:     "lexicall-backend",
		Interval: 60 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return c
}

// WithCallTimeout returns a shallow copy of the client using a different
// per-call timeout. The copy shares the HTTP client and circuit breaker.
func (c *Client) WithCallTimeout(d time.Duration) *Client {
	if d <= 0 {
		return c
	}
	clone := *c
	clone.timeout = d
	return &clone
}

// Timeout returns the per-call timeout currently in effect
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// doJSON performs one bounded-duration request and decodes the JSON response
// into out (which may be nil). The per-call timeout is layered on top of the
// caller's context so cancellation still propagates.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	result, err := c.breaker.Execute(func() (*httpResult, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}

		res := &httpResult{statusCode: resp.StatusCode, body: data}
		if resp.StatusCode >= 500 {
			// Count server errors against the breaker, but still hand the
			// response back so the caller sees a structured error.
			return res, &APIError{
				StatusCode: resp.StatusCode,
				Message:    extractErrorMessage(data),
				Body:       truncate(data, maxErrorBodySize),
			}
		}
		return res, nil
	})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return apiErr
		}
		return fmt.Errorf("request to %s failed: %w", path, err)
	}

	if result.statusCode < 200 || result.statusCode > 299 {
		return &APIError{
			StatusCode: result.statusCode,
			Message:    extractErrorMessage(result.body),
			Body:       truncate(result.body, maxErrorBodySize),
		}
	}

	if out != nil && len(result.body) > 0 {
		if err := json.Unmarshal(result.body, out); err != nil {
			return fmt.Errorf("failed to decode response from %s: %w", path, err)
		}
	}

	return nil
}

// extractErrorMessage pulls a human-readable message out of an error response
// body. The backend uses {"error": "..."} but some gateway responses use
// {"message": "..."} or plain text.
func extractErrorMessage(body []byte) string {
	var parsed struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Error != "" {
			return parsed.Error
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}

	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}

func truncate(data []byte, limit int) string {
	if len(data) > limit {
		return string(data[:limit])
	}
	return string(data)
}
