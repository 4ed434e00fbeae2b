package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/websearch-mcp/internal/websearch/types"
)

func TestSearXNG_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "golang", q.Get("q"))
		assert.Equal(t, "json", q.Get("format"))
		assert.Equal(t, "en-US", q.Get("language"))
		assert.Equal(t, "0", q.Get("safesearch"))
		assert.Equal(t, "month", q.Get("time_range"))
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "u:p", user+":"+pass)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"query":"golang","results":[
			{"title":"A","url":"https://a","content":"a"},
			{"title":"B","url":"https://b","content":"b"},
			{"title":"C","url":"https://c","content":"c"}]}`))
	}))
	defer srv.Close()

	p, err := NewSearXNGProvider(&types.ProviderConfig{
		ID: types.ProviderSearXNG, Name: "SearXNG", APIHost: srv.URL,
		BasicAuthUsername: "u", BasicAuthPassword: "p",
	})
	require.NoError(t, err)

	resp, err := p.Search(context.Background(), &types.SearchRequest{
		Query: "golang", MaxResults: 2, Region: "us-en",
		SafeSearch: types.SafeSearchOff, TimeLimit: types.TimeLimitMonth,
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "B", resp.Results[1].Title)
}

func TestSearXNG_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	p, err := NewSearXNGProvider(&types.ProviderConfig{ID: types.ProviderSearXNG, Name: "SearXNG", APIHost: srv.URL})
	require.NoError(t, err)

	_, err = p.Search(context.Background(), &types.SearchRequest{Query: "x"})
	assert.Equal(t, types.KindFormatDefect, types.Classify(err))
}

func TestSearXNGLanguage(t *testing.T) {
	assert.Equal(t, "all", searxngLanguage(""))
	assert.Equal(t, "all", searxngLanguage(types.DefaultRegion))
	assert.Equal(t, "en-UK", searxngLanguage("uk-en"))
	assert.Equal(t, "fr", searxngLanguage("fr"))
}
