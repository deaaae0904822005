package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/stecc88/roommatch/internal/config"
)

const shutdownTimeout = 10 * time.Second

// NewGRPCServer builds a gRPC server with logging interceptors, health,
// reflection and all provided services.
func NewGRPCServer(log *slog.Logger, registrars ...Registrar) (*grpc.Server, *health.Server) {
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(UnaryLogging(log)),
		grpc.ChainStreamInterceptor(StreamLogging(log)),
	)

	// register all services
	for _, r := range registrars {
		r.Register(grpcServer)
	}

	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)

	// enable reflection for easier debugging with grpcurl
	reflection.Register(grpcServer)

	return grpcServer, hs
}

// StartGRPCServer serves on the configured address until ctx is done, then
// stops gracefully.
func StartGRPCServer(ctx context.Context, cfg *config.Config, log *slog.Logger, registrars ...Registrar) error {
	addr := fmt.Sprintf("%s:%s", cfg.GRPC.Host, cfg.GRPC.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return Serve(ctx, lis, log, registrars...)
}

// Serve runs the server on lis until ctx is done.
func Serve(ctx context.Context, lis net.Listener, log *slog.Logger, registrars ...Registrar) error {
	grpcServer, hs := NewGRPCServer(log, registrars...)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("gRPC server listening", "addr", lis.Addr().String())
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down gRPC server")
		hs.Shutdown()

		// event streams stay open until their client leaves; cut them off
		stopped := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-time.After(shutdownTimeout):
			log.Warn("graceful stop timed out, closing remaining streams")
			grpcServer.Stop()
		}
		return nil
	})

	if err := g.Wait(); err != nil && err != grpc.ErrServerStopped {
		return err
	}
	return nil
}
