package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/websearch-mcp/internal/websearch/types"
)

func TestNewBaseProvider(t *testing.T) {
	config := &types.ProviderConfig{
		ID:      types.ProviderTavily,
		Name:    "Tavily",
		APIHost: "https://api.tavily.com",
		APIKey:  "test-key",
		Timeout: 30,
	}

	base := NewBaseProvider(config)
	assert.NotNil(t, base)
	assert.Equal(t, types.ProviderTavily, base.GetID())
	assert.Equal(t, "Tavily", base.GetName())
	assert.Equal(t, "test-key", base.GetAPIKey())
}

func TestBaseProvider_GetAPIKey_Rotation(t *testing.T) {
	base := NewBaseProvider(&types.ProviderConfig{
		ID:      types.ProviderTavily,
		Name:    "Tavily",
		APIHost: "https://api.tavily.com",
		APIKey:  "key1, key2,,key3",
	})

	assert.Equal(t, "key1", base.GetAPIKey())
	assert.Equal(t, "key2", base.GetAPIKey())
	assert.Equal(t, "key3", base.GetAPIKey())
	assert.Equal(t, "key1", base.GetAPIKey())

	empty := NewBaseProvider(&types.ProviderConfig{ID: types.ProviderDuckDuckGo, Name: "ddg"})
	assert.Empty(t, empty.GetAPIKey())
}

func TestBaseProvider_DoRequest_SingleAttemptByDefault(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	base := NewBaseProvider(&types.ProviderConfig{ID: types.ProviderSearXNG, Name: "s", APIHost: srv.URL})
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := base.DoRequest(context.Background(), req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.EqualValues(t, 1, calls.Load())
}

func TestBaseProvider_DoRequest_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	base := NewBaseProvider(&types.ProviderConfig{ID: types.ProviderSearXNG, Name: "s", APIHost: url})
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)

	_, err = base.DoRequest(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, types.KindNetwork, types.Classify(base.requestError(err)))
}

func TestBaseProvider_StatusError(t *testing.T) {
	base := NewBaseProvider(&types.ProviderConfig{ID: types.ProviderSearXNG, Name: "s"})

	tests := []struct {
		status   int
		wantKind types.ErrorKind
		wantErr  error
	}{
		{http.StatusBadRequest, types.KindUnsupportedParams, nil},
		{http.StatusUnprocessableEntity, types.KindUnsupportedParams, nil},
		{http.StatusUnauthorized, types.KindFatal, types.ErrProviderUnauthorized},
		{http.StatusTooManyRequests, types.KindFatal, types.ErrProviderRateLimited},
		{http.StatusInternalServerError, types.KindFatal, nil},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			rec := httptest.NewRecorder()
			rec.WriteHeader(tt.status)
			rec.WriteString("nope")

			err := base.statusError(rec.Result())
			var pe *types.ProviderError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.wantKind, pe.Kind)
			assert.Equal(t, "nope", pe.Message)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
