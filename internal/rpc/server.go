package rpc

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/rshade/adtech-emissions/internal/service"
)

// Server hosts the emissions gRPC service and the standard health service.
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
	logger     zerolog.Logger
}

// New creates a Server backed by svc.
func New(svc *service.Service, logger zerolog.Logger) *Server {
	logger = logger.With().Str("component", "rpc").Logger()
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(loggingInterceptor(logger)))
	healthServer := health.NewServer()
	RegisterEmissionsServer(grpcServer, &emissionsServer{svc: svc})
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	return &Server{grpcServer: grpcServer, health: healthServer, logger: logger}
}

// Run listens on addr and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then stops gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info().Str("addr", ln.Addr().String()).Msg("gRPC server listening")
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.grpcServer.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		s.health.Shutdown()
		s.grpcServer.GracefulStop()
		err := <-serveErr
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	case err := <-serveErr:
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	}
}
