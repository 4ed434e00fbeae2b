package biz

import (
	"context"
	"sync"

	"github.com/lk2023060901/websearch-mcp/internal/websearch/types"
)

// fakeProvider replays scripted replies, one per call; the last reply repeats.
type fakeProvider struct {
	mu       sync.Mutex
	replies  []fakeReply
	requests []*types.SearchRequest
}

type fakeReply struct {
	results []*types.SearchResult
	err     error
}

func newFakeProvider(replies ...fakeReply) *fakeProvider {
	return &fakeProvider{replies: replies}
}

func (f *fakeProvider) Search(_ context.Context, req *types.SearchRequest) (*types.SearchResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)
	r := fakeReply{}
	if len(f.replies) > 0 {
		i := min(len(f.requests), len(f.replies)) - 1
		r = f.replies[i]
	}
	if r.err != nil {
		return nil, r.err
	}
	return &types.SearchResponse{Query: req.Query, Results: r.results, Provider: f.GetID()}, nil
}

func (f *fakeProvider) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeProvider) Request(i int) *types.SearchRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[i]
}

func (f *fakeProvider) GetID() types.ProviderID { return "fake" }
func (f *fakeProvider) GetName() string         { return "Fake" }
func (f *fakeProvider) Validate() error         { return nil }

func result(title, url, content string) *types.SearchResult {
	return &types.SearchResult{Title: title, URL: url, Content: content}
}
