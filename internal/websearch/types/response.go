package types

// SearchResponse represents a search response
type SearchResponse struct {
	Query      string          `json:"query"`
	Results    []*SearchResult `json:"results"`
	TotalCount int             `json:"total_count,omitempty"`
	Took       int64           `json:"took"` // milliseconds
	Provider   ProviderID      `json:"provider"`
}

// SearchResult is one raw upstream record, before validation and dedupe.
type SearchResult struct {
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Content     string  `json:"content"`
	Score       float32 `json:"score,omitempty"`
	PublishedAt string  `json:"published_at,omitempty"`
}
