package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/stecc88/roommatch/internal/logger"
)

// RequestIDHeader lets a client supply its own request id.
const RequestIDHeader = "x-request-id"

func requestID(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if ids := md.Get(RequestIDHeader); len(ids) > 0 && ids[0] != "" {
			return ids[0]
		}
	}
	return uuid.NewString()
}

func withRequestLogger(ctx context.Context, base *slog.Logger, method string) (context.Context, *slog.Logger) {
	log := base.With("req_id", requestID(ctx), "method", method)
	return logger.NewContext(ctx, log), log
}

// UnaryLogging gives every call a request-scoped logger and logs its outcome.
func UnaryLogging(base *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		ctx, log := withRequestLogger(ctx, base, info.FullMethod)

		resp, err := handler(ctx, req)
		log.Debug("rpc finished", "code", status.Code(err).String(), "took", time.Since(start))
		return resp, err
	}
}

type loggedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *loggedStream) Context() context.Context { return s.ctx }

// StreamLogging is UnaryLogging for streams.
func StreamLogging(base *slog.Logger) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		ctx, log := withRequestLogger(ss.Context(), base, info.FullMethod)

		err := handler(srv, &loggedStream{ServerStream: ss, ctx: ctx})
		log.Debug("stream finished", "code", status.Code(err).String(), "took", time.Since(start))
		return err
	}
}
