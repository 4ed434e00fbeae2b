package mcp

import (
	"errors"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/lk2023060901/websearch-mcp/internal/websearch/biz"
)

// searchArguments extracts web_search arguments. Values of the wrong type
// are treated as absent so that each field falls back to its default.
func searchArguments(args gjson.Result) biz.RawParams {
	return biz.RawParams{
		Query:      scalar(args.Get("query")),
		MaxResults: count(args.Get("max_results")),
		AllResults: args.Get("all_results").Bool(),
		Region:     scalar(args.Get("region")),
		SafeSearch: scalar(args.Get("safesearch")),
		TimeLimit:  scalar(args.Get("timelimit")),
	}
}

// scalar renders strings, numbers and booleans as text.
func scalar(r gjson.Result) string {
	switch r.Type {
	case gjson.String:
		return r.Str
	case gjson.Number:
		return r.Raw
	case gjson.True, gjson.False:
		return r.String()
	default:
		return ""
	}
}

// count parses a requested result count; fractions are truncated and
// values beyond the cap saturate instead of overflowing.
func count(r gjson.Result) *int {
	var n int
	switch r.Type {
	case gjson.Number:
		switch f := r.Float(); {
		case f >= biz.MaxResultsCap:
			n = biz.MaxResultsCap
		case f < 1:
			n = 0
		default:
			n = int(f)
		}
	case gjson.String:
		s := strings.TrimSpace(r.Str)
		v, err := strconv.Atoi(s)
		switch {
		case errors.Is(err, strconv.ErrRange) && strings.HasPrefix(s, "-"):
			n = 0
		case errors.Is(err, strconv.ErrRange):
			n = biz.MaxResultsCap
		case err != nil:
			return nil
		default:
			n = v
		}
	case gjson.True:
		n = 1
	case gjson.False:
		n = 0
	default:
		return nil
	}
	return &n
}
