package mcp

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/lk2023060901/websearch-mcp/internal/pkg/logger"
	"github.com/lk2023060901/websearch-mcp/internal/pkg/sse"
	"github.com/lk2023060901/websearch-mcp/internal/websearch/biz"
	"github.com/lk2023060901/websearch-mcp/internal/websearch/cache"
	"github.com/lk2023060901/websearch-mcp/internal/websearch/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// bufferSink records frames in wire format.
type bufferSink struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *bufferSink) Send(ctx context.Context, e sse.Event) error {
	if ctx.Err() != nil {
		return sse.ErrClosed
	}
	frame, err := e.Encode()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf.Write(frame)
	return nil
}

func (s *bufferSink) frames(t *testing.T) []sse.Frame {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	frames, err := sse.ReadAll(bytes.NewReader(s.buf.Bytes()))
	require.NoError(t, err)
	return frames
}

// stubProvider answers every search with the same reply and counts calls.
type stubProvider struct {
	mu      sync.Mutex
	calls   int
	results []*types.SearchResult
	err     error
}

func (p *stubProvider) Search(_ context.Context, req *types.SearchRequest) (*types.SearchResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &types.SearchResponse{Query: req.Query, Results: p.results}, nil
}

func (p *stubProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func (p *stubProvider) GetID() types.ProviderID { return "stub" }
func (p *stubProvider) GetName() string         { return "Stub" }
func (p *stubProvider) Validate() error         { return nil }

// searchFunc adapts a function to SearchService.
type searchFunc func(ctx context.Context, p biz.Params) (*biz.Outcome, error)

func (f searchFunc) Search(ctx context.Context, p biz.Params) (*biz.Outcome, error) {
	return f(ctx, p)
}

func newTestDispatcher(p *stubProvider) *Dispatcher {
	log := logger.NewNop()
	store := cache.NewMemoryStore(cache.Config{Enabled: true, TTL: time.Hour, MaxSize: 10})
	uc := biz.NewSearchUseCase(biz.NewSearcher(p, log), store, log)
	return NewDispatcher(uc, ServerInfo{}, log)
}

func dispatch(t *testing.T, d *Dispatcher, body string) []sse.Frame {
	t.Helper()
	sink := &bufferSink{}
	_ = d.Dispatch(context.Background(), []byte(body), sink)
	return sink.frames(t)
}
