package biz

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/lk2023060901/websearch-mcp/internal/websearch/types"
)

// SnippetLimit is the longest snippet shown in the text summary, in characters.
const SnippetLimit = 200

// Record is a validated search result.
type Record struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Normalize trims raw results, drops those missing a title or snippet and
// keeps the first record for every URL. Records without a URL are never
// treated as duplicates.
func Normalize(raw []*types.SearchResult) []Record {
	seen := make(map[string]struct{}, len(raw))
	records := make([]Record, 0, len(raw))

	for _, r := range raw {
		if r == nil {
			continue
		}
		title := strings.TrimSpace(r.Title)
		body := strings.TrimSpace(r.Content)
		href := strings.TrimSpace(r.URL)
		if title == "" || body == "" {
			continue
		}
		if href != "" {
			if _, dup := seen[href]; dup {
				continue
			}
			seen[href] = struct{}{}
		}
		records = append(records, Record{
			Title:   title,
			URL:     href,
			Snippet: strings.Join(strings.Fields(body), " "),
		})
	}
	return records
}

// Truncate collapses whitespace and cuts s to SnippetLimit characters,
// ending in "..." when shortened.
func Truncate(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= SnippetLimit {
		return s
	}
	return string(r[:SnippetLimit-3]) + "..."
}

// Domain returns the host of href, or "link" when there is none.
func Domain(href string) string {
	u, err := url.Parse(href)
	if err != nil || u.Host == "" {
		return "link"
	}
	return u.Host
}

// RenderText formats records as the markdown summary shown to users.
func RenderText(query string, records []Record) string {
	if len(records) == 0 {
		return "No results found for: " + query
	}

	entries := make([]string, len(records))
	for i, r := range records {
		if r.URL != "" {
			entries[i] = fmt.Sprintf("**%d. [%s](%s)**\n   📍 %s\n   %s", i+1, r.Title, r.URL, Domain(r.URL), Truncate(r.Snippet))
		} else {
			entries[i] = fmt.Sprintf("**%d. %s**\n   %s", i+1, r.Title, Truncate(r.Snippet))
		}
	}

	plural := "s"
	if len(records) == 1 {
		plural = ""
	}
	return fmt.Sprintf("## Search Results for: _%s_\n**Found %d result%s**\n\n", query, len(records), plural) +
		strings.Join(entries, "\n\n")
}
