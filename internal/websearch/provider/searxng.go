package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lk2023060901/websearch-mcp/internal/websearch/types"
)

// SearXNGProvider implements the SearXNG search API
type SearXNGProvider struct {
	*BaseProvider
}

// NewSearXNGProvider creates a new SearXNG provider
func NewSearXNGProvider(config *types.ProviderConfig) (Provider, error) {
	return &SearXNGProvider{BaseProvider: NewBaseProvider(config)}, nil
}

type searxngResponse struct {
	Results []struct {
		Title         string `json:"title"`
		URL           string `json:"url"`
		Content       string `json:"content"`
		PublishedDate string `json:"publishedDate,omitempty"`
	} `json:"results"`
	Query string `json:"query"`
}

var searxngSafeSearch = map[types.SafeSearch]int{
	types.SafeSearchOff:      0,
	types.SafeSearchModerate: 1,
	types.SafeSearchStrict:   2,
}

var searxngTimeRange = map[types.TimeLimit]string{
	types.TimeLimitDay:   "day",
	types.TimeLimitWeek:  "week",
	types.TimeLimitMonth: "month",
	types.TimeLimitYear:  "year",
}

// searxngLanguage turns a DuckDuckGo style region ("us-en") into a
// SearXNG locale ("en-US"). The worldwide region maps to "all".
func searxngLanguage(region string) string {
	if region == "" || region == types.DefaultRegion {
		return "all"
	}
	country, lang, ok := strings.Cut(region, "-")
	if !ok {
		return region
	}
	return lang + "-" + strings.ToUpper(country)
}

// Search executes a search query using the SearXNG API
func (p *SearXNGProvider) Search(ctx context.Context, req *types.SearchRequest) (*types.SearchResponse, error) {
	startTime := time.Now()

	params := url.Values{}
	params.Set("q", req.Query)
	params.Set("format", "json")
	params.Set("pageno", "1")
	if req.Region != "" {
		params.Set("language", searxngLanguage(req.Region))
	}
	if level, ok := searxngSafeSearch[req.SafeSearch]; ok {
		params.Set("safesearch", strconv.Itoa(level))
	}
	if tr, ok := searxngTimeRange[req.TimeLimit]; ok {
		params.Set("time_range", tr)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.APIHost+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, p.requestError(err)
	}
	for k, v := range p.BuildDefaultHeaders() {
		httpReq.Header.Set(k, v)
	}
	if p.config.BasicAuthUsername != "" && p.config.BasicAuthPassword != "" {
		httpReq.SetBasicAuth(p.config.BasicAuthUsername, p.config.BasicAuthPassword)
	}

	resp, err := p.DoRequest(ctx, httpReq)
	if err != nil {
		return nil, p.requestError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, p.statusError(resp)
	}

	var searxngResp searxngResponse
	if err := json.NewDecoder(resp.Body).Decode(&searxngResp); err != nil {
		return nil, p.decodeError(err)
	}

	// SearXNG ignores result counts, so trim here
	n := len(searxngResp.Results)
	if req.MaxResults > 0 && n > req.MaxResults {
		n = req.MaxResults
	}
	results := make([]*types.SearchResult, n)
	for i, r := range searxngResp.Results[:n] {
		results[i] = &types.SearchResult{
			Title:       r.Title,
			URL:         r.URL,
			Content:     r.Content,
			PublishedAt: r.PublishedDate,
		}
	}

	return &types.SearchResponse{
		Query:      req.Query,
		Results:    results,
		TotalCount: len(results),
		Took:       time.Since(startTime).Milliseconds(),
		Provider:   p.GetID(),
	}, nil
}
