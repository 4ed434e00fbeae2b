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

// ZhipuProvider implements the Zhipu AI web search API. APIHost is the
// full endpoint URL.
type ZhipuProvider struct {
	*BaseProvider
}

// NewZhipuProvider creates a new Zhipu provider
func NewZhipuProvider(config *types.ProviderConfig) (Provider, error) {
	return &ZhipuProvider{BaseProvider: NewBaseProvider(config)}, nil
}

type zhipuRequest struct {
	SearchQuery         string `json:"search_query"`
	SearchEngine        string `json:"search_engine"`
	Count               int    `json:"count,omitempty"`
	SearchRecencyFilter string `json:"search_recency_filter,omitempty"`
}

type zhipuResponse struct {
	SearchResult []struct {
		Title       string `json:"title"`
		Link        string `json:"link"`
		Content     string `json:"content"`
		PublishDate string `json:"publish_date,omitempty"`
	} `json:"search_result"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

var zhipuRecency = map[types.TimeLimit]string{
	types.TimeLimitDay:   "oneDay",
	types.TimeLimitWeek:  "oneWeek",
	types.TimeLimitMonth: "oneMonth",
	types.TimeLimitYear:  "oneYear",
}

// Search executes a search query using the Zhipu API
func (p *ZhipuProvider) Search(ctx context.Context, req *types.SearchRequest) (*types.SearchResponse, error) {
	startTime := time.Now()

	zhipuReq := zhipuRequest{
		SearchQuery:         req.Query,
		SearchEngine:        "search_std",
		Count:               req.MaxResults,
		SearchRecencyFilter: zhipuRecency[req.TimeLimit],
	}
	if zhipuReq.Count == 0 {
		zhipuReq.Count = 10
	}

	reqBody, err := json.Marshal(zhipuReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.APIHost, bytes.NewReader(reqBody))
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

	var zhipuResp zhipuResponse
	if err := json.NewDecoder(resp.Body).Decode(&zhipuResp); err != nil {
		return nil, p.decodeError(err)
	}
	if zhipuResp.Error != nil {
		return nil, &types.ProviderError{
			Provider: p.GetID(),
			Code:     "API_ERROR",
			Message:  zhipuResp.Error.Message,
		}
	}

	results := make([]*types.SearchResult, len(zhipuResp.SearchResult))
	for i, r := range zhipuResp.SearchResult {
		results[i] = &types.SearchResult{
			Title:       r.Title,
			URL:         r.Link,
			Content:     r.Content,
			PublishedAt: r.PublishDate,
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
