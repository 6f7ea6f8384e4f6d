package main

import (
	"fmt"
	"net"
	"time"

	"waveform-streamer/src/config"
	"waveform-streamer/src/grpc_waveform"
	"waveform-streamer/src/instrument"
	"waveform-streamer/src/logger"
	"waveform-streamer/src/metrics"
	"waveform-streamer/src/server"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
)

// -----------------------------------------------------------------------------

// startGrpc listens on the configured gRPC address and serves the waveform
// service in the background.
func startGrpc(
	conf *config.Config,
	service *grpc_waveform.WaveformService,
	diag *metrics.Diagnostics,
	appLogger *logger.Logger,
) (*grpc.Server, error) {
	addr := fmt.Sprintf("%s:%d", conf.GrpcHost, conf.GrpcPort)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen for gRPC: %w", err)
	}

	rpcLogger := appLogger.Named("RPC")
	grpcServer := grpc.NewServer(
		grpc_waveform.ServerCodec(),
		grpc.ChainUnaryInterceptor(grpc_waveform.UnaryLogging(rpcLogger, diag.Sink)),
		grpc.ChainStreamInterceptor(grpc_waveform.StreamLogging(rpcLogger, diag.Sink)),
	)
	grpc_waveform.RegisterWaveformServiceServer(grpcServer, service)

	go func() {
		appLogger.Info("Starting gRPC Waveform Server on %s", addr)
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Error("failed to serve gRPC: %v", err)
		}
	}()
	return grpcServer, nil
}

// -----------------------------------------------------------------------------

// stopGrpc drains in-flight calls, forcing the stop once timeout elapses.
// Parked WaitForDataAccess calls would otherwise hold GracefulStop forever.
func stopGrpc(s *grpc.Server, timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		s.Stop()
	}
}

// -----------------------------------------------------------------------------

// startStatus serves health, metrics and session status over HTTP.
func startStatus(
	conf *config.Config,
	service *grpc_waveform.WaveformService,
	sim *instrument.Simulator,
	diag *metrics.Diagnostics,
	appLogger *logger.Logger,
) *server.StatusServer {
	status := server.NewStatusServer(conf.MConfig, appLogger.Named("StatusServer"), diag.Prom.Registry(), func() gin.H {
		return gin.H{
			"role":        "server",
			"sessions":    service.Sessions(),
			"acquisition": sim.Sequence(),
			"window_open": sim.WindowOpen(),
			"channels":    sim.AvailableNames(),
		}
	})

	go func() {
		if err := status.Start(); err != nil {
			appLogger.Error("Status server failed: %v", err)
		}
	}()
	return status
}
