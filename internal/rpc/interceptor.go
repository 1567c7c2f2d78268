package rpc

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/rshade/adtech-emissions/internal/carbon"
)

// TraceIDMetadataKey is the metadata key carrying the trace ID.
const TraceIDMetadataKey = "x-trace-id"

type callKey struct{}

type callInfo struct {
	traceID string
	trace   *carbon.Trace
}

// TraceID returns the trace ID of the call in ctx.
func TraceID(ctx context.Context) string {
	if c, ok := ctx.Value(callKey{}).(callInfo); ok {
		return c.traceID
	}
	return ""
}

func traceFrom(ctx context.Context) *carbon.Trace {
	if c, ok := ctx.Value(callKey{}).(callInfo); ok {
		return c.trace
	}
	return nil
}

// traceIDFromMetadata reads the caller's trace ID or generates a UUID.
func traceIDFromMetadata(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(TraceIDMetadataKey); len(values) > 0 && values[0] != "" {
			return values[0]
		}
	}
	return uuid.New().String()
}

// loggingInterceptor attaches a trace ID and a derivation trace to every
// call, echoes the trace ID in the response header and logs the outcome.
func loggingInterceptor(logger zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		traceID := traceIDFromMetadata(ctx)
		callLogger := logger.With().Str("trace_id", traceID).Str("method", info.FullMethod).Logger()
		ctx = context.WithValue(ctx, callKey{}, callInfo{traceID: traceID, trace: carbon.NewTrace(callLogger)})
		if err := grpc.SetHeader(ctx, metadata.Pairs(TraceIDMetadataKey, traceID)); err != nil {
			callLogger.Warn().Err(err).Msg("failed to set trace header")
		}

		resp, err := handler(ctx, req)

		event := callLogger.Info()
		if err != nil {
			event = callLogger.Warn().Err(err)
		}
		event.Str("code", status.Code(err).String()).
			Dur("duration", time.Since(start)).
			Msg("call served")
		return resp, err
	}
}
