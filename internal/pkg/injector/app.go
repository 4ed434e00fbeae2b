package injector

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/lk2023060901/websearch-mcp/internal/conf"
	"github.com/lk2023060901/websearch-mcp/internal/mcp"
	"github.com/lk2023060901/websearch-mcp/internal/pkg/logger"
	"github.com/lk2023060901/websearch-mcp/internal/server"
	"github.com/lk2023060901/websearch-mcp/internal/websearch/biz"
)

// App encapsulates all application dependencies
type App struct {
	Config      *conf.Config
	Logger      *logger.Logger
	Search      *biz.SearchUseCase
	HTTPServer  *server.HTTPServer
	GRPCServer  *server.GRPCServer
	StdioServer *mcp.StdioServer
	cleanup     func()
}

func newApp(
	config *conf.Config,
	log *logger.Logger,
	search *biz.SearchUseCase,
	httpServer *server.HTTPServer,
	grpcServer *server.GRPCServer,
	stdioServer *mcp.StdioServer,
) (*App, func()) {
	app := &App{
		Config:      config,
		Logger:      log,
		Search:      search,
		HTTPServer:  httpServer,
		GRPCServer:  grpcServer,
		StdioServer: stdioServer,
	}
	app.cleanup = func() {
		log.Info("cleaning up application resources")
	}
	return app, app.cleanup
}

// Shutdown stops the servers and flushes the in-process cache. A redis
// backed cache is shared with other instances and is left alone.
func (a *App) Shutdown(ctx context.Context) error {
	if a.GRPCServer.Enabled() {
		a.GRPCServer.Stop()
	}

	var errs []error
	if err := a.HTTPServer.Stop(ctx); err != nil {
		a.Logger.Error("HTTP server forced to shutdown", zap.Error(err))
		errs = append(errs, err)
	}

	if a.Config.Cache.Backend != conf.BackendRedis {
		if err := a.Search.ClearCache(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Cleanup releases all resources
func (a *App) Cleanup() {
	if a.cleanup != nil {
		a.cleanup()
	}
}
