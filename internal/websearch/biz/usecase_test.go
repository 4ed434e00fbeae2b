package biz

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lk2023060901/websearch-mcp/internal/pkg/errors"
	"github.com/lk2023060901/websearch-mcp/internal/pkg/logger"
	"github.com/lk2023060901/websearch-mcp/internal/websearch/cache"
	"github.com/lk2023060901/websearch-mcp/internal/websearch/types"
)

func newUseCase(fp *fakeProvider, cfg cache.Config) *SearchUseCase {
	log := logger.NewNop()
	return NewSearchUseCase(NewSearcher(fp, log), cache.NewMemoryStore(cfg), log)
}

var enabledCache = cache.Config{Enabled: true, TTL: time.Hour, MaxSize: 100}

func TestSearchUseCase_CachesIdenticalRequests(t *testing.T) {
	fp := newFakeProvider(fakeReply{results: []*types.SearchResult{
		result("Go", "https://go.dev", "The Go language"),
		result("Go again", "https://go.dev", "duplicate"),
	}})
	uc := newUseCase(fp, enabledCache)
	ctx := context.Background()
	p, err := NewParams(RawParams{Query: "golang"})
	require.NoError(t, err)

	first, err := uc.Search(ctx, p)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, 1, first.Count)

	second, err := uc.Search(ctx, p)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Results, second.Results)
	assert.Equal(t, first.Text, second.Text)

	assert.Equal(t, 1, fp.Calls())
	assert.Equal(t, Counters{Searches: 2, CacheHits: 1, ProviderCalls: 1}, uc.Counters())
}

func TestSearchUseCase_CountIsPartOfKey(t *testing.T) {
	fp := newFakeProvider(fakeReply{results: []*types.SearchResult{result("A", "https://a", "a")}})
	uc := newUseCase(fp, enabledCache)
	ctx := context.Background()

	_, err := uc.Search(ctx, Params{Query: "q", Count: 5})
	require.NoError(t, err)
	_, err = uc.Search(ctx, Params{Query: "q", Count: 6})
	require.NoError(t, err)
	assert.Equal(t, 2, fp.Calls())
}

func TestSearchUseCase_DisabledCache(t *testing.T) {
	fp := newFakeProvider(fakeReply{results: []*types.SearchResult{result("A", "https://a", "a")}})
	uc := newUseCase(fp, cache.Config{})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		out, err := uc.Search(ctx, Params{Query: "q", Count: 5})
		require.NoError(t, err)
		assert.False(t, out.Cached)
	}
	assert.Equal(t, 2, fp.Calls())
}

func TestSearchUseCase_NetworkFailureIsEmptyAndUncached(t *testing.T) {
	fp := newFakeProvider(fakeReply{err: &net.DNSError{Err: "no such host", Name: "html.duckduckgo.com"}})
	uc := newUseCase(fp, enabledCache)
	ctx := context.Background()

	out, err := uc.Search(ctx, Params{Query: "offline", Count: 5})
	require.NoError(t, err)
	assert.Empty(t, out.Results)
	assert.Equal(t, "No results found for: offline", out.Text)
	assert.Equal(t, 0, uc.CacheStats(ctx).Size)
}

func TestSearchUseCase_CachesEmptyResults(t *testing.T) {
	fp := newFakeProvider(fakeReply{})
	uc := newUseCase(fp, enabledCache)
	ctx := context.Background()
	p := Params{Query: "zzqqxx nothing matches", Count: 5}

	first, err := uc.Search(ctx, p)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Empty(t, first.Results)

	second, err := uc.Search(ctx, p)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, 1, fp.Calls())
}

func TestSearchUseCase_FatalFailure(t *testing.T) {
	boom := errors.New("upstream exploded")
	uc := newUseCase(newFakeProvider(fakeReply{err: boom}), enabledCache)

	_, err := uc.Search(context.Background(), Params{Query: "q", Count: 5})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrSearchFailed))
	assert.ErrorIs(t, err, boom)
	assert.EqualValues(t, 1, uc.Counters().Failures)
}

func TestSearchUseCase_ClearCache(t *testing.T) {
	fp := newFakeProvider(fakeReply{results: []*types.SearchResult{result("A", "https://a", "a")}})
	uc := newUseCase(fp, enabledCache)
	ctx := context.Background()

	_, err := uc.Search(ctx, Params{Query: "q", Count: 5})
	require.NoError(t, err)
	assert.Equal(t, 1, uc.CacheStats(ctx).Size)

	require.NoError(t, uc.ClearCache(ctx))
	assert.Equal(t, 0, uc.CacheStats(ctx).Size)

	_, err = uc.Search(ctx, Params{Query: "q", Count: 5})
	require.NoError(t, err)
	assert.Equal(t, 2, fp.Calls())
	assert.Equal(t, "fake", uc.ProviderID())
}
