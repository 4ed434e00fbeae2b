package biz

import (
	"context"

	"go.uber.org/zap"

	"github.com/lk2023060901/websearch-mcp/internal/pkg/logger"
	"github.com/lk2023060901/websearch-mcp/internal/websearch/provider"
	"github.com/lk2023060901/websearch-mcp/internal/websearch/types"
)

// Searcher wraps a provider so that recoverable failures become empty
// result lists. Only fatal failures reach the caller.
type Searcher struct {
	provider provider.Provider
	logger   *logger.Logger
}

// NewSearcher creates a new provider adapter
func NewSearcher(p provider.Provider, log *logger.Logger) *Searcher {
	return &Searcher{provider: p, logger: log.Named("searcher")}
}

// Provider returns the wrapped provider
func (s *Searcher) Provider() provider.Provider {
	return s.provider
}

// Search runs req. A rejected parameter set is retried once with the query
// and count only. Network and format failures yield no results and report
// recovered as true.
func (s *Searcher) Search(ctx context.Context, req *types.SearchRequest) (results []*types.SearchResult, recovered bool, err error) {
	log := s.logger.WithContext(ctx).With(
		zap.String("provider", string(s.provider.GetID())),
		zap.String("query", req.Query),
	)

	resp, err := s.provider.Search(ctx, req)
	if err == nil {
		return resp.Results, false, nil
	}

	kind := types.Classify(err)
	if kind == types.KindUnsupportedParams {
		log.Warn("provider rejected search parameters, retrying with defaults", zap.Error(err))
		resp, err = s.provider.Search(ctx, req.Minimal())
		if err == nil {
			return resp.Results, false, nil
		}
		if kind = types.Classify(err); kind == types.KindUnsupportedParams {
			kind = types.KindFatal
		}
	}

	switch kind {
	case types.KindFormatDefect:
		log.Warn("provider returned unreadable output, returning empty results", zap.Error(err))
		return nil, true, nil
	case types.KindNetwork:
		log.Warn("network error during search, returning empty results", zap.Error(err))
		return nil, true, nil
	default:
		return nil, false, err
	}
}

// Probe performs a one result search without any recovery, for readiness checks.
func (s *Searcher) Probe(ctx context.Context) error {
	_, err := s.provider.Search(ctx, &types.SearchRequest{Query: "test", MaxResults: 1})
	return err
}
