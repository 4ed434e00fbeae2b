package biz

import (
	"strings"

	"github.com/lk2023060901/websearch-mcp/internal/websearch/types"
)

const (
	// MaxResultsCap is the most results ever requested from a provider.
	MaxResultsCap = 10
	// DefaultMaxResults applies when the requested count is missing or unparsable.
	DefaultMaxResults = 5
)

// Params are normalized search arguments. Build them with NewParams.
type Params struct {
	Query      string
	Count      int
	AllResults bool
	Region     string
	SafeSearch types.SafeSearch
	TimeLimit  types.TimeLimit
}

// RawParams carries arguments as the caller sent them. Each field is
// defaulted independently; invalid values fall back instead of failing.
type RawParams struct {
	Query      string
	MaxResults *int // nil when absent or unparsable
	AllResults bool
	Region     string
	SafeSearch string
	TimeLimit  string
}

// NewParams normalizes raw arguments. The only error is a blank query.
func NewParams(raw RawParams) (Params, error) {
	query := strings.TrimSpace(raw.Query)
	if query == "" {
		return Params{}, types.ErrEmptyQuery
	}
	return Params{
		Query:      query,
		Count:      EffectiveCount(raw.AllResults, raw.MaxResults),
		AllResults: raw.AllResults,
		Region:     NormalizeRegion(raw.Region),
		SafeSearch: NormalizeSafeSearch(raw.SafeSearch),
		TimeLimit:  NormalizeTimeLimit(raw.TimeLimit),
	}, nil
}

// EffectiveCount resolves the count sent upstream: the cap when all results
// are wanted, else the requested count (default 5) clamped into [1, cap].
func EffectiveCount(allResults bool, requested *int) int {
	if allResults {
		return MaxResultsCap
	}
	n := DefaultMaxResults
	if requested != nil {
		n = *requested
	}
	return max(1, min(n, MaxResultsCap))
}

// NormalizeRegion defaults a blank region to worldwide.
func NormalizeRegion(region string) string {
	if r := strings.TrimSpace(region); r != "" {
		return r
	}
	return types.DefaultRegion
}

// NormalizeSafeSearch accepts off, moderate and strict in any case.
func NormalizeSafeSearch(v string) types.SafeSearch {
	switch s := types.SafeSearch(strings.ToLower(strings.TrimSpace(v))); s {
	case types.SafeSearchOff, types.SafeSearchModerate, types.SafeSearchStrict:
		return s
	}
	return types.SafeSearchModerate
}

// NormalizeTimeLimit accepts d/w/m/y and day/week/month/year; anything else
// means no limit.
func NormalizeTimeLimit(v string) types.TimeLimit {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "d", "day":
		return types.TimeLimitDay
	case "w", "week":
		return types.TimeLimitWeek
	case "m", "month":
		return types.TimeLimitMonth
	case "y", "year":
		return types.TimeLimitYear
	}
	return types.TimeLimitNone
}

// Request builds the provider request.
func (p Params) Request() *types.SearchRequest {
	return &types.SearchRequest{
		Query:      p.Query,
		MaxResults: p.Count,
		Region:     p.Region,
		SafeSearch: p.SafeSearch,
		TimeLimit:  p.TimeLimit,
	}
}
