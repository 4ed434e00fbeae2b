package server

import (
	"fmt"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/lk2023060901/websearch-mcp/internal/conf"
	"github.com/lk2023060901/websearch-mcp/internal/pkg/logger"
)

// SearchServiceName 健康检查中使用的服务名
const SearchServiceName = "websearch.Search"

// GRPCServer gRPC 健康检查服务器, 供编排系统探活
type GRPCServer struct {
	config     *conf.Config
	logger     *logger.Logger
	grpcServer *grpc.Server
	health     *health.Server
}

// NewGRPCServer 创建 gRPC 服务器
func NewGRPCServer(config *conf.Config, log *logger.Logger) *GRPCServer {
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logger.RecoveryInterceptor(log),
			logger.UnaryServerInterceptor(log),
		),
	)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)

	// 启用反射（用于 grpcurl 等工具）
	reflection.Register(grpcServer)

	return &GRPCServer{
		config:     config,
		logger:     log,
		grpcServer: grpcServer,
		health:     hs,
	}
}

// Enabled grpc_port 为 0 时不启动
func (s *GRPCServer) Enabled() bool {
	return s.config.Server.GRPCPort > 0
}

// Start 启动 gRPC 服务器
func (s *GRPCServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.GRPCPort)

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return s.Serve(lis)
}

// Serve 在给定 listener 上提供服务
func (s *GRPCServer) Serve(lis net.Listener) error {
	s.logger.Info("starting gRPC server", zap.String("addr", lis.Addr().String()))

	s.SetServing(true)
	if err := s.grpcServer.Serve(lis); err != nil {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

// SetServing 更新健康状态
func (s *GRPCServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(SearchServiceName, status)
}

// Stop 停止 gRPC 服务器
func (s *GRPCServer) Stop() {
	s.logger.Info("stopping gRPC server")
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
