package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/lk2023060901/websearch-mcp/internal/websearch/types"
)

// TavilyProvider implements the Tavily search API
type TavilyProvider struct {
	*BaseProvider
}

// NewTavilyProvider creates a new Tavily provider
func NewTavilyProvider(config *types.ProviderConfig) (Provider, error) {
	return &TavilyProvider{BaseProvider: NewBaseProvider(config)}, nil
}

type tavilyRequest struct {
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth,omitempty"`
	MaxResults  int    `json:"max_results,omitempty"`
	TimeRange   string `json:"time_range,omitempty"`
}

type tavilyResponse struct {
	Results []struct {
		Title         string  `json:"title"`
		URL           string  `json:"url"`
		Content       string  `json:"content"`
		Score         float32 `json:"score"`
		PublishedDate string  `json:"published_date,omitempty"`
	} `json:"results"`
	Query string `json:"query"`
}

// Search executes a search query using the Tavily API. Region and
// safesearch have no Tavily equivalent and are ignored.
func (p *TavilyProvider) Search(ctx context.Context, req *types.SearchRequest) (*types.SearchResponse, error) {
	startTime := time.Now()

	tavilyReq := tavilyRequest{
		Query:       req.Query,
		SearchDepth: "basic",
		MaxResults:  req.MaxResults,
		TimeRange:   searxngTimeRange[req.TimeLimit],
	}
	if tavilyReq.MaxResults == 0 {
		tavilyReq.MaxResults = 10
	}

	reqBody, err := json.Marshal(tavilyReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.APIHost+"/search", bytes.NewReader(reqBody))
	if err != nil {
		return nil, p.requestError(err)
	}
	for k, v := range p.BuildDefaultHeaders() {
		httpReq.Header.Set(k, v)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.GetAPIKey())

	resp, err := p.DoRequest(ctx, httpReq)
	if err != nil {
		return nil, p.requestError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, p.statusError(resp)
	}

	var tavilyResp tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&tavilyResp); err != nil {
		return nil, p.decodeError(err)
	}

	results := make([]*types.SearchResult, len(tavilyResp.Results))
	for i, r := range tavilyResp.Results {
		results[i] = &types.SearchResult{
			Title:       r.Title,
			URL:         r.URL,
			Content:     r.Content,
			Score:       r.Score,
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
