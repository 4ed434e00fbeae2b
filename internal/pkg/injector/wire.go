//go:build wireinject
// +build wireinject

package injector

import (
	"github.com/google/wire"

	"github.com/lk2023060901/websearch-mcp/internal/conf"
	"github.com/lk2023060901/websearch-mcp/internal/mcp"
	"github.com/lk2023060901/websearch-mcp/internal/pkg/logger"
	"github.com/lk2023060901/websearch-mcp/internal/server"
	"github.com/lk2023060901/websearch-mcp/internal/websearch/biz"
)

// ProviderSet is the Wire provider set for all dependencies
var ProviderSet = wire.NewSet(
	// Data layer
	dataProviderSet,

	// Use cases
	useCaseProviderSet,

	// HTTP/MCP services
	serviceProviderSet,

	// Servers
	serverProviderSet,
)

var dataProviderSet = wire.NewSet(
	provideSearchProvider,
	provideRedisClient,
	provideCacheStore,
)

var useCaseProviderSet = wire.NewSet(
	biz.NewSearcher,
	biz.NewSearchUseCase,
	wire.Bind(new(mcp.SearchService), new(*biz.SearchUseCase)),
)

var serviceProviderSet = wire.NewSet(
	provideRequestStats,
	provideSearchService,
	provideServerInfo,
	provideHandlerConfig,
	mcp.NewDispatcher,
	mcp.NewHandler,
	mcp.NewStdioServer,
)

var serverProviderSet = wire.NewSet(
	provideLimiter,
	server.NewHTTPServer,
	server.NewGRPCServer,
)

// InitializeApp initializes the application with Wire
func InitializeApp(config *conf.Config, log *logger.Logger) (*App, func(), error) {
	wire.Build(ProviderSet, newApp)
	return nil, nil, nil
}
