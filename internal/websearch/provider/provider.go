package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/lk2023060901/websearch-mcp/internal/websearch/types"
)

// UserAgent is sent with every upstream request.
const UserAgent = "Mozilla/5.0 (compatible; websearch-mcp/1.2; +https://github.com/lk2023060901/websearch-mcp)"

// Provider defines the interface for search providers
type Provider interface {
	// Search executes a search query. Failures are returned as
	// *types.ProviderError whenever the provider can tell what went wrong.
	Search(ctx context.Context, req *types.SearchRequest) (*types.SearchResponse, error)

	// GetID returns the provider ID
	GetID() types.ProviderID

	// GetName returns the provider name
	GetName() string

	// Validate validates the provider configuration
	Validate() error
}

// BaseProvider provides common functionality for all providers
type BaseProvider struct {
	config     *types.ProviderConfig
	httpClient *http.Client

	mu       sync.Mutex
	apiKeys  []string
	keyIndex int
}

// NewBaseProvider creates a new base provider
func NewBaseProvider(config *types.ProviderConfig) *BaseProvider {
	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	var apiKeys []string
	for _, k := range strings.Split(config.APIKey, ",") {
		if k = strings.TrimSpace(k); k != "" {
			apiKeys = append(apiKeys, k)
		}
	}

	return &BaseProvider{
		config: config,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		apiKeys: apiKeys,
	}
}

// GetID returns the provider ID
func (b *BaseProvider) GetID() types.ProviderID {
	return b.config.ID
}

// GetName returns the provider name
func (b *BaseProvider) GetName() string {
	return b.config.Name
}

// GetConfig returns the provider configuration
func (b *BaseProvider) GetConfig() *types.ProviderConfig {
	return b.config
}

// SetHTTPClient replaces the HTTP client, used by tests
func (b *BaseProvider) SetHTTPClient(c *http.Client) {
	b.httpClient = c
}

// GetAPIKey returns the next API key, rotating through comma-separated keys
func (b *BaseProvider) GetAPIKey() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.apiKeys) == 0 {
		return ""
	}
	key := b.apiKeys[b.keyIndex]
	b.keyIndex = (b.keyIndex + 1) % len(b.apiKeys)
	return key
}

// BuildDefaultHeaders builds default HTTP headers
func (b *BaseProvider) BuildDefaultHeaders() map[string]string {
	return map[string]string{
		"Accept":     "application/json",
		"User-Agent": UserAgent,
	}
}

// DoRequest executes req. Transport failures are retried up to MaxRetries
// attempts in total with exponential backoff; the default is a single attempt.
// Requests with a body must set GetBody to be retried.
func (b *BaseProvider) DoRequest(ctx context.Context, req *http.Request) (*http.Response, error) {
	attempts := b.config.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, err
				}
				req.Body = body
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(1<<uint(i-1)) * 500 * time.Millisecond):
			}
		}

		resp, err := b.httpClient.Do(req.WithContext(ctx))
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}

	if attempts == 1 {
		return nil, lastErr
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", attempts, lastErr)
}

// Validate validates the provider configuration
func (b *BaseProvider) Validate() error {
	return b.config.Validate()
}

// requestError wraps a transport failure. Its kind is left to types.Classify.
func (b *BaseProvider) requestError(err error) error {
	return &types.ProviderError{
		Provider: b.GetID(),
		Code:     "REQUEST_FAILED",
		Message:  "Failed to execute request",
		Err:      err,
	}
}

// statusError maps a non-200 upstream response onto a ProviderError.
// 400 and 422 mean the upstream refused the tuning parameters.
func (b *BaseProvider) statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	pe := &types.ProviderError{
		Provider: b.GetID(),
		Code:     fmt.Sprintf("HTTP_%d", resp.StatusCode),
		Message:  strings.TrimSpace(string(body)),
	}

	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		pe.Kind = types.KindUnsupportedParams
	case http.StatusUnauthorized, http.StatusForbidden:
		pe.Err = types.ErrProviderUnauthorized
	case http.StatusTooManyRequests:
		pe.Err = types.ErrProviderRateLimited
	}
	return pe
}

// decodeError reports an undecodable upstream body
func (b *BaseProvider) decodeError(err error) error {
	return &types.ProviderError{
		Provider: b.GetID(),
		Kind:     types.KindFormatDefect,
		Code:     "DECODE_FAILED",
		Message:  "Failed to decode response",
		Err:      err,
	}
}
