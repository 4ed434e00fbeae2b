package provider

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/lk2023060901/websearch-mcp/internal/websearch/types"
)

// DefaultDuckDuckGoHost serves the script-free result pages.
const DefaultDuckDuckGoHost = "https://html.duckduckgo.com"

// DuckDuckGoProvider scrapes the DuckDuckGo HTML endpoint. It needs no API key.
type DuckDuckGoProvider struct {
	*BaseProvider
}

// NewDuckDuckGoProvider creates a new DuckDuckGo provider
func NewDuckDuckGoProvider(config *types.ProviderConfig) (Provider, error) {
	if config.APIHost == "" {
		config.APIHost = DefaultDuckDuckGoHost
	}
	return &DuckDuckGoProvider{BaseProvider: NewBaseProvider(config)}, nil
}

// kp values understood by the HTML endpoint
var ddgSafeSearch = map[types.SafeSearch]string{
	types.SafeSearchOff:      "-2",
	types.SafeSearchModerate: "-1",
	types.SafeSearchStrict:   "1",
}

func (p *DuckDuckGoProvider) form(req *types.SearchRequest) url.Values {
	form := url.Values{}
	form.Set("q", req.Query)
	form.Set("b", "")
	if req.Region != "" {
		form.Set("kl", req.Region)
	}
	if kp, ok := ddgSafeSearch[req.SafeSearch]; ok {
		form.Set("kp", kp)
	}
	if req.TimeLimit != types.TimeLimitNone {
		form.Set("df", string(req.TimeLimit))
	}
	return form
}

// Search executes a search query against the HTML endpoint
func (p *DuckDuckGoProvider) Search(ctx context.Context, req *types.SearchRequest) (*types.SearchResponse, error) {
	startTime := time.Now()

	body := p.form(req).Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.APIHost+"/html/", strings.NewReader(body))
	if err != nil {
		return nil, p.requestError(err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("User-Agent", UserAgent)
	httpReq.Header.Set("Accept", "text/html")
	httpReq.Header.Set("Referer", p.config.APIHost+"/")

	resp, err := p.DoRequest(ctx, httpReq)
	if err != nil {
		return nil, p.requestError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, p.statusError(resp)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, p.decodeError(err)
	}

	results, err := p.parse(doc, req.MaxResults)
	if err != nil {
		return nil, err
	}

	return &types.SearchResponse{
		Query:      req.Query,
		Results:    results,
		TotalCount: len(results),
		Took:       time.Since(startTime).Milliseconds(),
		Provider:   p.GetID(),
	}, nil
}

// parse extracts organic results that have both a title and a snippet, up
// to limit. A page without the results container is an upstream layout the
// parser does not understand.
func (p *DuckDuckGoProvider) parse(doc *goquery.Document, limit int) ([]*types.SearchResult, error) {
	if doc.Find("#links, .results, .no-results").Length() == 0 {
		return nil, &types.ProviderError{
			Provider: p.GetID(),
			Kind:     types.KindFormatDefect,
			Code:     "UNEXPECTED_LAYOUT",
			Message:  "result container not found",
		}
	}

	var results []*types.SearchResult
	doc.Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if limit > 0 && len(results) >= limit {
			return false
		}
		if s.HasClass("result--ad") {
			return true
		}

		link := s.Find("a.result__a").First()
		title := strings.TrimSpace(link.Text())
		snippet := strings.TrimSpace(s.Find(".result__snippet").First().Text())
		if title == "" || snippet == "" {
			return true
		}
		href, _ := link.Attr("href")
		results = append(results, &types.SearchResult{
			Title:   title,
			URL:     resolveRedirect(href),
			Content: snippet,
		})
		return true
	})
	return results, nil
}

// resolveRedirect unwraps //duckduckgo.com/l/?uddg=<target> links.
func resolveRedirect(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if strings.HasSuffix(u.Host, "duckduckgo.com") && u.Path == "/l/" {
		if target := u.Query().Get("uddg"); target != "" {
			return target
		}
	}
	if u.Scheme == "" && strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	return href
}
