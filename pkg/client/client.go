// Package client is a synchronous Go client for the websearch-mcp HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 3
	defaultBackoff    = time.Second
	maxBackoff        = 30 * time.Second

	userAgent = "websearch-mcp-client/1.0"
)

// Client talks to one server. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithMaxRetries sets how many times a 429/5xx or transport failure is retried.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithBackoff sets the first retry delay; later delays double.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

// New creates a client for baseURL, e.g. http://localhost:8000.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		maxRetries: defaultMaxRetries,
		backoff:    defaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search runs POST /search. maxResults <= 0 leaves the server default.
func (c *Client) Search(ctx context.Context, query string, maxResults int) (*SearchResponse, error) {
	req := map[string]any{"query": query}
	if maxResults > 0 {
		req["max_results"] = maxResults
	}

	var out SearchResponse
	if err := c.doEnvelope(ctx, http.MethodPost, "/search", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health runs GET /health.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.doPlain(ctx, "/health", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ready runs GET /ready. A 503 still decodes the body and is returned
// together with an *APIError.
func (c *Client) Ready(ctx context.Context) (*Ready, error) {
	var out Ready
	err := c.doPlain(ctx, "/ready", &out)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusServiceUnavailable {
		return &out, err
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Metrics runs GET /metrics.
func (c *Client) Metrics(ctx context.Context) (*Metrics, error) {
	var out Metrics
	if err := c.doEnvelope(ctx, http.MethodGet, "/metrics", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ClearCache runs POST /cache/clear.
func (c *Client) ClearCache(ctx context.Context) error {
	return c.doEnvelope(ctx, http.MethodPost, "/cache/clear", nil, nil)
}

// SearchContext formats a search for inclusion in a model prompt.
func (c *Client) SearchContext(ctx context.Context, query string, maxResults int) (string, error) {
	health, err := c.Health(ctx)
	if err != nil {
		return "", err
	}
	if !health.Healthy() {
		return "", fmt.Errorf("search service is unavailable: status %q", health.Status)
	}

	resp, err := c.Search(ctx, query, maxResults)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Search Results for: '%s'", query)
	if resp.Cached {
		b.WriteString(" (from cache)")
	}
	fmt.Fprintf(&b, "\nTotal Results: %d\n\n", resp.Count)
	for i, r := range resp.Results {
		fmt.Fprintf(&b, "%d. %s\n   URL: %s\n   Summary: %s\n\n", i+1, r.Title, r.URL, r.Snippet)
	}
	return b.String(), nil
}

// doEnvelope unwraps the {code, message, data} body used by the REST API.
func (c *Client) doEnvelope(ctx context.Context, method, path string, in, out any) error {
	body, err := c.do(ctx, method, path, in)
	if err != nil {
		return err
	}

	env := gjson.ParseBytes(body)
	if code := env.Get("code").Int(); code != 0 {
		return &APIError{StatusCode: http.StatusOK, Code: int(code), Message: env.Get("message").String()}
	}
	if out == nil {
		return nil
	}
	data := env.Get("data")
	if !data.Exists() {
		return fmt.Errorf("response has no data field")
	}
	return json.Unmarshal([]byte(data.Raw), out)
}

// doPlain decodes an unwrapped JSON body. Error statuses still decode it.
func (c *Client) doPlain(ctx context.Context, path string, out any) error {
	body, err := c.do(ctx, http.MethodGet, path, nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) && len(body) > 0 {
		_ = json.Unmarshal(body, out)
		return apiErr
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

// do sends the request and returns the body. Non-2xx statuses yield an
// *APIError alongside the body.
func (c *Client) do(ctx context.Context, method, path string, in any) ([]byte, error) {
	resp, err := c.send(ctx, method, path, in, "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return body, newAPIError(resp.StatusCode, body)
	}
	return body, nil
}

// send performs the request, retrying transport failures and retryable
// statuses with exponential backoff. The caller closes the body.
func (c *Client) send(ctx context.Context, method, path string, in any, accept string) (*http.Response, error) {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.delay(attempt)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", accept)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			if attempt < c.maxRetries {
				continue
			}
			return nil, fmt.Errorf("request failed after %d attempts: %w", attempt+1, lastErr)
		}

		if retryable(resp.StatusCode) && attempt < c.maxRetries {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			continue
		}
		return resp, nil
	}
}

func (c *Client) delay(attempt int) time.Duration {
	d := c.backoff * time.Duration(1<<uint(attempt-1))
	if d > maxBackoff || d < 0 {
		d = maxBackoff
	}
	return d
}

func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func newAPIError(status int, body []byte) *APIError {
	e := &APIError{StatusCode: status, Message: http.StatusText(status)}
	if !gjson.ValidBytes(body) {
		return e
	}
	r := gjson.ParseBytes(body)
	e.Code = int(r.Get("code").Int())
	if msg := r.Get("message").String(); msg != "" {
		e.Message = msg
	} else if detail := r.Get("detail").String(); detail != "" {
		e.Message = detail
	}
	return e
}
