package server

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lk2023060901/websearch-mcp/internal/conf"
	"github.com/lk2023060901/websearch-mcp/internal/mcp"
	"github.com/lk2023060901/websearch-mcp/internal/pkg/logger"
	"github.com/lk2023060901/websearch-mcp/internal/server/middleware"
	"github.com/lk2023060901/websearch-mcp/internal/websearch/service"
)

// HTTPServer 对外 HTTP 服务: MCP SSE 入口与 REST 接口
type HTTPServer struct {
	server *http.Server
	logger *logger.Logger
}

// NewHTTPServer 创建 HTTP 服务器. limiter 为 nil 时不限流
func NewHTTPServer(
	config *conf.Config,
	log *logger.Logger,
	stats *service.RequestStats,
	searchService *service.SearchService,
	mcpHandler *mcp.Handler,
	limiter middleware.Limiter,
) *HTTPServer {
	if config.Server.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(logger.GinRecovery(log))
	router.Use(logger.GinLoggerWithConfig(log, logger.MiddlewareOptions{
		SkipPaths: []string{"/health", "/ready", "/metrics"},
	}))
	router.Use(stats.Middleware())
	if config.CORS.Enabled {
		router.Use(middleware.CORS(config.CORS.Origins))
	}

	var searchMiddleware []gin.HandlerFunc
	if config.RateLimit.Enabled && limiter != nil {
		searchMiddleware = append(searchMiddleware, middleware.RateLimiter(limiter, middleware.RateLimiterConfig{
			MaxRequests: config.RateLimit.Requests,
			Window:      config.RateLimit.Period,
		}, log))
	}

	mcpHandler.RegisterRoutes(router)
	searchService.RegisterRoutes(router, searchMiddleware...)

	router.NoRoute(func(c *gin.Context) {
		mcp.ErrorFrame(c, http.StatusNotFound, "Not Found")
	})
	router.NoMethod(func(c *gin.Context) {
		mcp.ErrorFrame(c, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	return &HTTPServer{
		server: &http.Server{
			Addr:    config.Server.Addr(),
			Handler: router,
		},
		logger: log,
	}
}

// Handler 返回路由, 供测试直接调用
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

// Start 监听并阻塞直到服务器关闭
func (s *HTTPServer) Start() error {
	lis, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	return s.Serve(lis)
}

// Serve 在给定 listener 上提供服务
func (s *HTTPServer) Serve(lis net.Listener) error {
	s.logger.Info("starting HTTP server", zap.String("addr", lis.Addr().String()))

	if err := s.server.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop 优雅关闭, 等待进行中的流结束或 ctx 超时
func (s *HTTPServer) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	return s.server.Shutdown(ctx)
}
