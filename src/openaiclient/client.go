// Package openaiclient implements the chat backend against any
// OpenAI-compatible completions endpoint.
package openaiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultTimeout = 120 * time.Second
)

var _ Doer = (*http.Client)(nil)

// Doer abstracts the HTTP transport, for tests.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds the connection parameters for a backend.
type Config struct {
	BaseURL    string
	APIKey     string
	RetryCount int
	RetryDelay time.Duration
	HTTPClient Doer
	Logger     *slog.Logger
}

// Client talks to one OpenAI-compatible API endpoint.
type Client struct {
	config     Config
	httpClient Doer
	logger     *slog.Logger
}

// NewClient creates a client for the configured endpoint.
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.RetryCount == 0 {
		config.RetryCount = 3
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = time.Second
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		config:     config,
		httpClient: httpClient,
		logger:     logger.With("component", "openai_client"),
	}
}

// newRequest creates an HTTP request with authentication headers set.
func (c *Client) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	url := c.config.BaseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}
	req.Header.Set("Content-Type", "application/json")

	return req, nil
}

// doRequestWithRetry performs an HTTP request, retrying server errors with
// linear backoff and rate limits per the Retry-After header. Other client
// errors, and the last attempt's response, are returned to the caller so it
// can turn them into typed API errors.
func (c *Client) doRequestWithRetry(req *http.Request, body []byte) (*http.Response, error) {
	var lastErr error

	logger := c.logger.With("method", "doRequestWithRetry", "url", req.URL.String())

	for i := 0; i < c.config.RetryCount; i++ {
		reqCopy := req.Clone(req.Context())
		reqCopy.Body = io.NopCloser(bytes.NewReader(body))

		resp, err := c.httpClient.Do(reqCopy)
		if err != nil {
			lastErr = err
			logger.Debug("request attempt failed", "attempt", i+1, "error", err)
			if !sleepCtx(req.Context(), c.config.RetryDelay*time.Duration(i+1)) {
				return nil, req.Context().Err()
			}
			continue
		}

		retryable := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		if !retryable || i == c.config.RetryCount-1 {
			return resp, nil
		}

		delay := c.config.RetryDelay * time.Duration(i+1)
		if resp.StatusCode == http.StatusTooManyRequests {
			if d, ok := parseRetryAfter(resp.Header.Get("Retry-After")); ok {
				delay = d
			}
		}
		resp.Body.Close()
		logger.Debug("retryable status, backing off", "attempt", i+1, "status_code", resp.StatusCode, "delay", delay)
		if !sleepCtx(req.Context(), delay) {
			return nil, req.Context().Err()
		}
	}

	logger.Error("request failed after all retries", "retry_count", c.config.RetryCount, "error", lastErr)
	return nil, fmt.Errorf("request failed after %d retries: %w", c.config.RetryCount, lastErr)
}

// parseRetryAfter interprets a Retry-After header as a delay in seconds,
// capped so a hostile header cannot stall the client.
func parseRetryAfter(header string) (time.Duration, bool) {
	if header == "" {
		return 0, false
	}
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return 0, false
	}
	if seconds > 60 {
		seconds = 60
	}
	return time.Duration(seconds) * time.Second, true
}

// handleError converts a non-200 response into an APIError.
func (c *Client) handleError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read error response: %w", err)
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.Message == "" {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			RequestID:  resp.Header.Get("X-Request-ID"),
		}
	}

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Type:       errResp.Error.Type,
		Message:    errResp.Error.Message,
		Code:       errResp.Error.Code,
		RequestID:  resp.Header.Get("X-Request-ID"),
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		apiErr.RetryAfter = resp.Header.Get("Retry-After")
	}

	return apiErr
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
