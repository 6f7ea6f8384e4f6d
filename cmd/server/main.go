package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"waveform-streamer/src/config"
	"waveform-streamer/src/grpc_waveform"
	"waveform-streamer/src/instrument"
	"waveform-streamer/src/logger"
	"waveform-streamer/src/metrics"
)

const shutdownTimeout = 5 * time.Second

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	port := flag.Int("port", 0, "override the status server port")
	flag.Parse()

	// Load config from YAML file
	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		conf.Port = *port
	}

	// Setup logger
	appLogger := logger.NewLogger(conf.MConfig, conf.Name)

	diag, err := metrics.Setup(conf.Diagnostics, appLogger.Named("Journal"))
	if err != nil {
		appLogger.Critical("Failed to init diagnostics: %v", err)
	}
	defer diag.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Instrument
	sim := instrument.NewSimulator(conf.Instrument, appLogger.Named("Instrument"))
	go func() {
		if err := sim.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			appLogger.Error("Instrument stopped: %v", err)
		}
	}()

	// 2. Servers
	service := grpc_waveform.NewWaveformService(&conf.Instrument, sim, diag.Sink, appLogger.Named("WaveformService"))
	grpcServer, err := startGrpc(conf, service, diag, appLogger)
	if err != nil {
		appLogger.Critical("Failed to start gRPC: %v", err)
	}
	status := startStatus(conf, service, sim, diag, appLogger)

	appLogger.Info("Streaming %d channels", len(conf.Instrument.Channels))

	// 3. Wait for shutdown signal
	<-ctx.Done()
	appLogger.Info("Shutting down...")

	stopGrpc(grpcServer, shutdownTimeout)
	if err := status.Stop(); err != nil {
		appLogger.Error("Status server shutdown: %v", err)
	}
	appLogger.Info("Bye")
}
