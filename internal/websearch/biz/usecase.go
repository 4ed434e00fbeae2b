package biz

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"go.uber.org/zap"

	apperrors "github.com/lk2023060901/websearch-mcp/internal/pkg/errors"
	"github.com/lk2023060901/websearch-mcp/internal/pkg/logger"
	"github.com/lk2023060901/websearch-mcp/internal/websearch/cache"
)

// Outcome is the result of one search, fresh or cached.
type Outcome struct {
	Query   string   `json:"query"`
	Count   int      `json:"count"`
	Results []Record `json:"results"`
	Cached  bool     `json:"cached"`
	Text    string   `json:"-"`
}

// cachedOutcome is the payload stored in the cache
type cachedOutcome struct {
	Results []Record `json:"results"`
	Text    string   `json:"text"`
}

// Counters are process lifetime totals reported by the metrics endpoint.
type Counters struct {
	Searches      int64 `json:"searches"`
	CacheHits     int64 `json:"cache_hits"`
	ProviderCalls int64 `json:"provider_calls"`
	Failures      int64 `json:"failures"`
}

// SearchUseCase runs the cache, provider and transformer pipeline.
type SearchUseCase struct {
	searcher *Searcher
	cache    cache.Store
	logger   *logger.Logger

	searches      atomic.Int64
	cacheHits     atomic.Int64
	providerCalls atomic.Int64
	failures      atomic.Int64
}

// NewSearchUseCase creates a new search use case
func NewSearchUseCase(searcher *Searcher, store cache.Store, log *logger.Logger) *SearchUseCase {
	return &SearchUseCase{
		searcher: searcher,
		cache:    store,
		logger:   log.Named("search"),
	}
}

// Search serves p from the cache when possible, otherwise from the provider.
// Outcomes recovered from a network or format failure are not cached so
// that a transient outage is not remembered.
func (uc *SearchUseCase) Search(ctx context.Context, p Params) (*Outcome, error) {
	uc.searches.Add(1)
	log := uc.logger.WithContext(ctx)

	if data, ok := uc.cache.Lookup(ctx, p.Query, p.Count); ok {
		var c cachedOutcome
		if err := json.Unmarshal(data, &c); err == nil {
			uc.cacheHits.Add(1)
			log.Debug("cache hit", zap.String("query", p.Query), zap.Int("count", p.Count))
			return &Outcome{Query: p.Query, Count: len(c.Results), Results: c.Results, Cached: true, Text: c.Text}, nil
		}
		log.Warn("discarding unreadable cache entry", zap.String("query", p.Query))
	}

	log.Info("searching",
		zap.String("query", p.Query),
		zap.Int("count", p.Count),
		zap.Bool("all_results", p.AllResults),
		zap.String("region", p.Region),
		zap.String("safesearch", string(p.SafeSearch)),
		zap.String("timelimit", string(p.TimeLimit)),
	)

	uc.providerCalls.Add(1)
	raw, recovered, err := uc.searcher.Search(ctx, p.Request())
	if err != nil {
		uc.failures.Add(1)
		return nil, apperrors.Wrap(err, apperrors.ErrSearchFailed)
	}

	records := Normalize(raw)
	out := &Outcome{
		Query:   p.Query,
		Count:   len(records),
		Results: records,
		Text:    RenderText(p.Query, records),
	}

	if !recovered {
		data, err := json.Marshal(cachedOutcome{Results: records, Text: out.Text})
		if err == nil {
			err = uc.cache.Store(ctx, p.Query, p.Count, data)
		}
		if err != nil {
			log.Warn("failed to cache search results", zap.Error(err))
		}
	}
	return out, nil
}

// Probe checks that the provider answers.
func (uc *SearchUseCase) Probe(ctx context.Context) error {
	return uc.searcher.Probe(ctx)
}

// ClearCache empties the result cache.
func (uc *SearchUseCase) ClearCache(ctx context.Context) error {
	if err := uc.cache.Clear(ctx); err != nil {
		return apperrors.Wrap(err, apperrors.ErrSearchCacheFailed)
	}
	uc.logger.WithContext(ctx).Info("search cache cleared")
	return nil
}

// CacheStats reports the cache state.
func (uc *SearchUseCase) CacheStats(ctx context.Context) cache.Stats {
	return uc.cache.Stats(ctx)
}

// Counters returns a snapshot of the pipeline counters.
func (uc *SearchUseCase) Counters() Counters {
	return Counters{
		Searches:      uc.searches.Load(),
		CacheHits:     uc.cacheHits.Load(),
		ProviderCalls: uc.providerCalls.Load(),
		Failures:      uc.failures.Load(),
	}
}

// ProviderID names the configured provider.
func (uc *SearchUseCase) ProviderID() string {
	return string(uc.searcher.Provider().GetID())
}
