package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/lk2023060901/websearch-mcp/internal/pkg/logger"
	"github.com/lk2023060901/websearch-mcp/internal/websearch/biz"
)

// StdioServer serves the search tool to clients that spawn the process and
// talk MCP over stdin/stdout.
type StdioServer struct {
	server *mcpsdk.Server
	search SearchService
	logger *logger.Logger
}

// NewStdioServer creates a new stdio server
func NewStdioServer(search SearchService, info ServerInfo, log *logger.Logger) *StdioServer {
	if info.Name == "" {
		info = DefaultServerInfo
	}
	s := &StdioServer{
		server: mcpsdk.NewServer(&mcpsdk.Implementation{Name: info.Name, Version: info.Version}, nil),
		search: search,
		logger: log.Named("mcp.stdio"),
	}
	s.server.AddTool(&mcpsdk.Tool{
		Name:        SearchToolName,
		Description: searchToolDescription,
		InputSchema: SearchInputSchema(),
	}, s.handleSearch)
	return s
}

// Run serves until ctx is done or the client disconnects.
func (s *StdioServer) Run(ctx context.Context) error {
	s.logger.Info("serving MCP over stdio")
	return s.server.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *StdioServer) handleSearch(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	p, err := biz.NewParams(searchArguments(gjson.ParseBytes(req.Params.Arguments)))
	if err != nil {
		return &mcpsdk.CallToolResult{
			IsError: true,
			Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: msgQueryRequired}},
		}, nil
	}

	out, err := s.search.Search(ctx, p)
	if err != nil {
		s.logger.WithContext(ctx).Error("search failed", zap.String("query", p.Query), zap.Error(err))
		return nil, err
	}
	return &mcpsdk.CallToolResult{
		Content:           []mcpsdk.Content{&mcpsdk.TextContent{Text: out.Text}},
		StructuredContent: out,
	}, nil
}
