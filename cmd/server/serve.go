package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lk2023060901/websearch-mcp/internal/pkg/injector"
)

func newServeCmd(configFile *string) *cobra.Command {
	var stdio bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the server",
		Example: `  websearch-mcp serve
  websearch-mcp serve --stdio
  MCP_SERVER_PORT=9000 websearch-mcp serve -c configs/config.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := bootstrap(*configFile, stdio)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if stdio {
				return runStdio(ctx, app)
			}
			return runServers(ctx, app)
		},
	}

	cmd.Flags().BoolVar(&stdio, "stdio", false, "Serve MCP over stdin/stdout instead of HTTP")
	return cmd
}

func runStdio(ctx context.Context, app *injector.App) error {
	err := app.StdioServer.Run(ctx)
	if ctx.Err() != nil {
		err = nil
	}
	if clearErr := app.Search.ClearCache(context.Background()); clearErr != nil {
		app.Logger.Warn("failed to clear cache on exit", zap.Error(clearErr))
	}
	return err
}

func runServers(ctx context.Context, app *injector.App) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.HTTPServer.Start()
	})

	if app.GRPCServer.Enabled() {
		g.Go(func() error {
			return app.GRPCServer.Start()
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		app.Logger.Info("shutting down servers...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
		defer cancel()
		return app.Shutdown(shutdownCtx)
	})

	app.Logger.Info("servers started successfully",
		zap.String("http_addr", app.Config.Server.Addr()),
		zap.Int("grpc_port", app.Config.Server.GRPCPort),
	)

	if err := g.Wait(); err != nil {
		app.Logger.Error("server exited with error", zap.Error(err))
		return err
	}

	app.Logger.Info("servers exited")
	return nil
}
