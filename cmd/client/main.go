package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"waveform-streamer/src/config"
	"waveform-streamer/src/gate"
	"waveform-streamer/src/logger"
	"waveform-streamer/src/metrics"
)

const connectTimeout = 10 * time.Second

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	address := flag.String("address", "", "override the waveform server address")
	symbols := flag.String("symbols", "", "comma separated sources, overrides the config")
	port := flag.Int("port", 0, "override the status server port")
	follow := flag.Bool("follow", false, "log every acquisition from a WaitForData loop")
	flag.Parse()

	// Load config from YAML file
	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *address != "" {
		conf.Client.ServerAddress = *address
	}
	if *symbols != "" {
		conf.Client.Symbols = strings.Split(*symbols, ",")
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

	g, err := gate.NewGate(conf.MConfig, diag.Sink, appLogger.Named("AcquisitionGate"))
	if err != nil {
		appLogger.Critical("Failed to create gate: %v", err)
	}
	status := startStatus(conf, g, diag, appLogger)
	g.OnAcquisition(publisher(g, status, appLogger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Connect and start the pump
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	err = g.Connect(connectCtx, conf.Client.ServerAddress, conf.Client.Symbols)
	cancel()
	if err != nil {
		appLogger.Critical("Failed to connect to %s: %v", conf.Client.ServerAddress, err)
	}
	if err := g.Start(); err != nil {
		appLogger.Critical("Failed to start gate: %v", err)
	}
	appLogger.Info("Session %s following %v (criterion %s)", g.ClientName(), g.Symbols(), g.Criterion())

	if *follow {
		go followAcquisitions(ctx, g, appLogger.Named("Follow"))
	}

	// 2. Wait for shutdown signal
	<-ctx.Done()
	appLogger.Info("Shutting down...")

	g.Stop()
	if err := status.Stop(); err != nil {
		appLogger.Error("Status server shutdown: %v", err)
	}
	appLogger.Info("Bye after %d acquisitions", g.Completed())
}
