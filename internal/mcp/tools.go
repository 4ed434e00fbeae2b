package mcp

import (
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/lk2023060901/websearch-mcp/internal/websearch/biz"
)

const (
	// ProtocolVersion is reported in the initialize handshake.
	ProtocolVersion = "2025-06-18"

	// SearchToolName is the only tool this server offers.
	SearchToolName = "web_search"

	searchToolDescription = "Search the web using DuckDuckGo"
	resourceURI           = "mcp://duckduckgo/search"
)

// ServerInfo identifies the server in the handshake.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// DefaultServerInfo is used when no name or version is configured.
var DefaultServerInfo = ServerInfo{Name: "DuckDuckGo Web Search", Version: "1.2.1"}

type initializeResult struct {
	ProtocolVersion string       `json:"protocolVersion"`
	Capabilities    capabilities `json:"capabilities"`
	ServerInfo      ServerInfo   `json:"serverInfo"`
}

type capabilities struct {
	Tools     struct{} `json:"tools"`
	Resources struct{} `json:"resources"`
}

type resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type resourcesResult struct {
	Resources []resource `json:"resources"`
}

type toolDescriptor struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema *jsonschema.Schema `json:"inputSchema"`
}

type toolsResult struct {
	Tools []toolDescriptor `json:"tools"`
}

type textContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type toolCallResult struct {
	Content           []textContent `json:"content"`
	StructuredContent *biz.Outcome  `json:"structuredContent"`
	IsError           bool          `json:"isError"`
}

func newInitializeResult(info ServerInfo) initializeResult {
	return initializeResult{ProtocolVersion: ProtocolVersion, ServerInfo: info}
}

func newResourcesResult() resourcesResult {
	return resourcesResult{Resources: []resource{{
		URI:         resourceURI,
		Name:        "DuckDuckGo Search",
		Description: "Web search via DuckDuckGo",
	}}}
}

func newToolsResult() toolsResult {
	return toolsResult{Tools: []toolDescriptor{{
		Name:        SearchToolName,
		Description: searchToolDescription,
		InputSchema: SearchInputSchema(),
	}}}
}

func newToolCallResult(out *biz.Outcome) toolCallResult {
	return toolCallResult{
		Content:           []textContent{{Type: "text", Text: out.Text}},
		StructuredContent: out,
	}
}

// SearchInputSchema describes the web_search arguments.
func SearchInputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"query": {
				Type:        "string",
				Description: "The search query",
			},
			"max_results": {
				Type:        "integer",
				Description: "Maximum number of results (capped at 10)",
				Default:     json.RawMessage("5"),
				Minimum:     bound(1),
				Maximum:     bound(biz.MaxResultsCap),
			},
			"all_results": {
				Type:        "boolean",
				Description: "Fetch maximum results (capped at 10)",
				Default:     json.RawMessage("false"),
			},
			"region": {
				Type:        "string",
				Description: "Search region, e.g., wt-wt (global), us-en, uk-en",
				Default:     json.RawMessage(`"wt-wt"`),
			},
			"safesearch": {
				Type:        "string",
				Description: "SafeSearch level: off | moderate | strict",
				Default:     json.RawMessage(`"moderate"`),
				Enum:        []any{"off", "moderate", "strict"},
			},
			"timelimit": {
				Type:        "string",
				Description: "Time limit for results: d (day), w (week), m (month), y (year)",
				Enum:        []any{"d", "w", "m", "y"},
			},
		},
		Required: []string{"query"},
	}
}

func bound(v float64) *float64 { return &v }
