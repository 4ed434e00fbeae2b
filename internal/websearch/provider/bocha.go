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

// BochaProvider implements the Bocha AI web search API
type BochaProvider struct {
	*BaseProvider
}

// NewBochaProvider creates a new Bocha provider
func NewBochaProvider(config *types.ProviderConfig) (Provider, error) {
	return &BochaProvider{BaseProvider: NewBaseProvider(config)}, nil
}

type bochaRequest struct {
	Query     string `json:"query"`
	Count     int    `json:"count,omitempty"`
	Freshness string `json:"freshness,omitempty"`
	Summary   bool   `json:"summary"`
}

// bochaResponse follows the Bing-compatible layout of the web-search endpoint
type bochaResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg,omitempty"`
	Data struct {
		WebPages struct {
			Value []struct {
				Name          string `json:"name"`
				URL           string `json:"url"`
				Snippet       string `json:"snippet"`
				Summary       string `json:"summary,omitempty"`
				DatePublished string `json:"datePublished,omitempty"`
			} `json:"value"`
		} `json:"webPages"`
	} `json:"data"`
}

var bochaFreshness = map[types.TimeLimit]string{
	types.TimeLimitDay:   "oneDay",
	types.TimeLimitWeek:  "oneWeek",
	types.TimeLimitMonth: "oneMonth",
	types.TimeLimitYear:  "oneYear",
}

// Search executes a search query using the Bocha API
func (p *BochaProvider) Search(ctx context.Context, req *types.SearchRequest) (*types.SearchResponse, error) {
	startTime := time.Now()

	bochaReq := bochaRequest{
		Query:     req.Query,
		Count:     req.MaxResults,
		Freshness: bochaFreshness[req.TimeLimit],
		Summary:   true,
	}
	if bochaReq.Count == 0 {
		bochaReq.Count = 10
	}

	reqBody, err := json.Marshal(bochaReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.APIHost+"/v1/web-search", bytes.NewReader(reqBody))
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

	var bochaResp bochaResponse
	if err := json.NewDecoder(resp.Body).Decode(&bochaResp); err != nil {
		return nil, p.decodeError(err)
	}
	if bochaResp.Code != 0 && bochaResp.Code != http.StatusOK {
		return nil, &types.ProviderError{
			Provider: p.GetID(),
			Code:     fmt.Sprintf("API_%d", bochaResp.Code),
			Message:  bochaResp.Msg,
		}
	}

	pages := bochaResp.Data.WebPages.Value
	results := make([]*types.SearchResult, len(pages))
	for i, r := range pages {
		content := r.Summary
		if content == "" {
			content = r.Snippet
		}
		results[i] = &types.SearchResult{
			Title:       r.Name,
			URL:         r.URL,
			Content:     content,
			PublishedAt: r.DatePublished,
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
