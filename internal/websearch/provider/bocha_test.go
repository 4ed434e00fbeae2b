package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/websearch-mcp/internal/websearch/types"
)

func TestBocha_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/web-search", r.URL.Path)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))

		var body bochaRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "golang", body.Query)
		assert.Equal(t, 2, body.Count)
		assert.Equal(t, "oneMonth", body.Freshness)

		w.Write([]byte(`{"code":200,"data":{"webPages":{"value":[
			{"name":"Go","url":"https://go.dev","snippet":"short","summary":"long summary"},
			{"name":"Tour","url":"https://go.dev/tour","snippet":"only snippet"}]}}}`))
	}))
	defer srv.Close()

	p, err := NewBochaProvider(&types.ProviderConfig{ID: types.ProviderBocha, Name: "Bocha", APIHost: srv.URL, APIKey: "k"})
	require.NoError(t, err)

	resp, err := p.Search(context.Background(), &types.SearchRequest{
		Query: "golang", MaxResults: 2, TimeLimit: types.TimeLimitMonth,
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "Go", resp.Results[0].Title)
	assert.Equal(t, "long summary", resp.Results[0].Content)
	assert.Equal(t, "only snippet", resp.Results[1].Content)
}

func TestBocha_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":403,"msg":"insufficient balance"}`))
	}))
	defer srv.Close()

	p, err := NewBochaProvider(&types.ProviderConfig{ID: types.ProviderBocha, Name: "Bocha", APIHost: srv.URL, APIKey: "k"})
	require.NoError(t, err)

	_, err = p.Search(context.Background(), &types.SearchRequest{Query: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient balance")
	assert.Equal(t, types.KindFatal, types.Classify(err))
}
