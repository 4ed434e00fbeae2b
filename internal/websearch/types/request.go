package types

// SafeSearch levels understood by every provider.
type SafeSearch string

const (
	SafeSearchOff      SafeSearch = "off"
	SafeSearchModerate SafeSearch = "moderate"
	SafeSearchStrict   SafeSearch = "strict"
)

// TimeLimit restricts results to a recent window. The zero value means no limit.
type TimeLimit string

const (
	TimeLimitNone  TimeLimit = ""
	TimeLimitDay   TimeLimit = "d"
	TimeLimitWeek  TimeLimit = "w"
	TimeLimitMonth TimeLimit = "m"
	TimeLimitYear  TimeLimit = "y"
)

// DefaultRegion is the worldwide region code.
const DefaultRegion = "wt-wt"

// SearchRequest represents a search request
type SearchRequest struct {
	Query      string     `json:"query"`
	MaxResults int        `json:"max_results,omitempty"`
	Region     string     `json:"region,omitempty"`
	SafeSearch SafeSearch `json:"safesearch,omitempty"`
	TimeLimit  TimeLimit  `json:"timelimit,omitempty"`
}

// Minimal returns a copy that carries only the query and result count.
func (r *SearchRequest) Minimal() *SearchRequest {
	return &SearchRequest{Query: r.Query, MaxResults: r.MaxResults}
}
