package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/lk2023060901/websearch-mcp/internal/websearch/types"
)

// ExaProvider implements the Exa AI search API
type ExaProvider struct {
	*BaseProvider
	now func() time.Time
}

// NewExaProvider creates a new Exa provider
func NewExaProvider(config *types.ProviderConfig) (Provider, error) {
	return &ExaProvider{BaseProvider: NewBaseProvider(config), now: time.Now}, nil
}

type exaRequest struct {
	Query              string         `json:"query"`
	NumResults         int            `json:"numResults,omitempty"`
	StartPublishedDate string         `json:"startPublishedDate,omitempty"`
	Type               string         `json:"type,omitempty"` // neural, keyword or auto
	Contents           map[string]any `json:"contents,omitempty"`
}

type exaResponse struct {
	Results []struct {
		Title         string   `json:"title"`
		URL           string   `json:"url"`
		Text          string   `json:"text,omitempty"`
		Highlights    []string `json:"highlights,omitempty"`
		Score         float32  `json:"score"`
		PublishedDate string   `json:"publishedDate,omitempty"`
	} `json:"results"`
}

// exaWindow maps a time limit onto how far back results may be published
var exaWindow = map[types.TimeLimit]time.Duration{
	types.TimeLimitDay:   24 * time.Hour,
	types.TimeLimitWeek:  7 * 24 * time.Hour,
	types.TimeLimitMonth: 30 * 24 * time.Hour,
	types.TimeLimitYear:  365 * 24 * time.Hour,
}

// Search executes a search query using the Exa API. Region and safesearch
// have no Exa equivalent and are ignored.
func (p *ExaProvider) Search(ctx context.Context, req *types.SearchRequest) (*types.SearchResponse, error) {
	startTime := time.Now()

	exaReq := exaRequest{
		Query:      req.Query,
		NumResults: req.MaxResults,
		Type:       "auto",
		Contents:   map[string]any{"text": map[string]int{"maxCharacters": 1000}},
	}
	if exaReq.NumResults == 0 {
		exaReq.NumResults = 10
	}
	if window, ok := exaWindow[req.TimeLimit]; ok {
		exaReq.StartPublishedDate = p.now().Add(-window).UTC().Format(time.RFC3339)
	}

	reqBody, err := json.Marshal(exaReq)
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
	httpReq.Header.Set("x-api-key", p.GetAPIKey())

	resp, err := p.DoRequest(ctx, httpReq)
	if err != nil {
		return nil, p.requestError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, p.statusError(resp)
	}

	var exaResp exaResponse
	if err := json.NewDecoder(resp.Body).Decode(&exaResp); err != nil {
		return nil, p.decodeError(err)
	}

	results := make([]*types.SearchResult, len(exaResp.Results))
	for i, r := range exaResp.Results {
		content := r.Text
		if len(r.Highlights) > 0 {
			content = strings.Join(r.Highlights, " ")
		}
		results[i] = &types.SearchResult{
			Title:       r.Title,
			URL:         r.URL,
			Content:     content,
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
