package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/lk2023060901/websearch-mcp/internal/conf"
	"github.com/lk2023060901/websearch-mcp/internal/pkg/injector"
	"github.com/lk2023060901/websearch-mcp/internal/pkg/logger"
)

// bootstrap loads configuration and builds the application graph. Protocol
// modes that own stdout get their log output moved to stderr.
func bootstrap(configFile string, quietStdout bool) (*injector.App, func(), error) {
	config, err := conf.LoadConfig(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if quietStdout {
		switch config.Log.Output {
		case logger.OutputStdout, "":
			config.Log.Output = logger.OutputStderr
		case logger.OutputBoth:
			config.Log.Output = logger.OutputFile
		}
	}

	log, err := logger.New(&config.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.SetGlobal(log)

	log.Info("config loaded successfully",
		zap.String("provider", config.Search.Provider),
		zap.String("cache_backend", config.Cache.Backend),
	)

	app, cleanup, err := injector.InitializeApp(config, log)
	if err != nil {
		_ = log.Sync()
		return nil, nil, fmt.Errorf("failed to initialize application: %w", err)
	}

	return app, func() {
		cleanup()
		_ = log.Sync()
	}, nil
}
