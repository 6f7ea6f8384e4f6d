package grpc_waveform

import (
	"context"
	"time"

	"waveform-streamer/src/interfaces"
	"waveform-streamer/src/logger"
	"waveform-streamer/src/models"

	"google.golang.org/grpc"
)

// -----------------------------------------------------------------------------

// UnaryLogging logs each unary call with its caller and latency, and records
// transport-level failures into sink.
func UnaryLogging(log *logger.Logger, sink interfaces.IMetricsSink) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		if err != nil {
			log.Warning("%s from %q failed after %v: %v", info.FullMethod, sessionName(ctx), time.Since(start), err)
			sink.RecordError(info.FullMethod, err)
			return resp, err
		}
		if r, ok := resp.(*StatusReply); ok && r.Status != models.Success {
			log.Debug("%s from %q -> status %d", info.FullMethod, sessionName(ctx), r.Status)
		}
		return resp, nil
	}
}

// StreamLogging is the streaming counterpart of UnaryLogging.
func StreamLogging(log *logger.Logger, sink interfaces.IMetricsSink) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		err := handler(srv, ss)
		if err != nil {
			log.Warning("%s from %q failed after %v: %v", info.FullMethod, sessionName(ss.Context()), time.Since(start), err)
			sink.RecordError(info.FullMethod, err)
		}
		return err
	}
}
