package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/ogurasousui/codex-shift-clean-arch/internal/platform/config"
)

// ServiceName はヘルスチェックで公開するサービス名です。
const ServiceName = "shift.v1.ShiftRegistry"

// Server は HTTP API とヘルスチェック用 gRPC サーバーのライフサイクルを管理します。
type Server struct {
	httpAddr        string
	grpcAddr        string
	shutdownTimeout time.Duration

	httpServer *http.Server
	grpcServer *grpc.Server
	health     *health.Server
	logger     *zap.Logger
}

// New は設定に従ってサーバーを構築します。grpc_addr が空の場合 gRPC サーバーは起動しません。
func New(cfg config.ServerConfig, handler http.Handler, logger *zap.Logger, opts ...grpc.ServerOption) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	healthSrv := health.NewServer()
	grpcSrv := grpc.NewServer(opts...)
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)

	return &Server{
		httpAddr:        cfg.HTTPAddr,
		grpcAddr:        cfg.GRPCAddr,
		shutdownTimeout: cfg.ShutdownTimeout,
		httpServer: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		grpcServer: grpcSrv,
		health:     healthSrv,
		logger:     logger.Named("server"),
	}
}

// Health はヘルスチェックサーバーを返します。
func (s *Server) Health() *health.Server {
	return s.health
}

// Run はサーバーを起動し、コンテキストがキャンセルされると停止します。
func (s *Server) Run(ctx context.Context) error {
	httpLis, err := net.Listen("tcp", s.httpAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpAddr, err)
	}

	var grpcLis net.Listener
	if s.grpcAddr != "" {
		grpcLis, err = net.Listen("tcp", s.grpcAddr)
		if err != nil {
			_ = httpLis.Close()
			return fmt.Errorf("listen on %s: %w", s.grpcAddr, err)
		}
	}

	return s.serve(ctx, httpLis, grpcLis)
}

func (s *Server) serve(ctx context.Context, httpLis, grpcLis net.Listener) error {
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("http server listening", zap.String("addr", httpLis.Addr().String()))
		if err := s.httpServer.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve HTTP: %w", err)
		}
		return nil
	})

	if grpcLis != nil {
		g.Go(func() error {
			s.logger.Info("grpc health server listening", zap.String("addr", grpcLis.Addr().String()))
			if err := s.grpcServer.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("serve gRPC: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return s.shutdown()
	})

	return g.Wait()
}

func (s *Server) shutdown() error {
	s.health.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down")
	err := s.httpServer.Shutdown(ctx)
	s.grpcServer.GracefulStop()
	if err != nil {
		return fmt.Errorf("shutdown HTTP: %w", err)
	}
	return nil
}
