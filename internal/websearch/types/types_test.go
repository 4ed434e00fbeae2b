package types

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, KindFatal},
		{"explicit unsupported", &ProviderError{Kind: KindUnsupportedParams}, KindUnsupportedParams},
		{"explicit format defect wrapped", fmt.Errorf("search: %w", &ProviderError{Kind: KindFormatDefect}), KindFormatDefect},
		{"deadline", fmt.Errorf("get: %w", context.DeadlineExceeded), KindNetwork},
		{"dns", &net.DNSError{Err: "no such host", Name: "html.duckduckgo.com"}, KindNetwork},
		{"dial refused", &net.OpError{Op: "dial", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}, KindNetwork},
		{"bare errno", fmt.Errorf("read: %w", syscall.EHOSTUNREACH), KindNetwork},
		{"message hint", errors.New("Connection reset by peer"), KindNetwork},
		{"fatal provider error wrapping network", &ProviderError{Err: &net.DNSError{}}, KindNetwork},
		{"other", errors.New("quota exhausted"), KindFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestProviderConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *ProviderConfig
		wantErr error
	}{
		{"duckduckgo needs nothing", &ProviderConfig{ID: ProviderDuckDuckGo, Name: "DuckDuckGo"}, nil},
		{"searxng", &ProviderConfig{ID: ProviderSearXNG, Name: "SearXNG", APIHost: "http://searx"}, nil},
		{"searxng without host", &ProviderConfig{ID: ProviderSearXNG, Name: "SearXNG"}, ErrInvalidAPIHost},
		{"searxng half basic auth", &ProviderConfig{ID: ProviderSearXNG, Name: "SearXNG", APIHost: "http://searx", BasicAuthUsername: "u"}, ErrMissingBasicAuthPassword},
		{"tavily without key", &ProviderConfig{ID: ProviderTavily, Name: "Tavily", APIHost: "https://api.tavily.com"}, ErrMissingAPIKey},
		{"missing id", &ProviderConfig{Name: "x"}, ErrInvalidProviderID},
		{"missing name", &ProviderConfig{ID: ProviderTavily}, ErrInvalidProviderName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSearchRequest_Minimal(t *testing.T) {
	req := &SearchRequest{Query: "go", MaxResults: 3, Region: "us-en", SafeSearch: SafeSearchStrict, TimeLimit: TimeLimitWeek}
	assert.Equal(t, &SearchRequest{Query: "go", MaxResults: 3}, req.Minimal())
}
