package main

import (
	"context"
	"errors"
	"time"

	"waveform-streamer/src/config"
	"waveform-streamer/src/gate"
	"waveform-streamer/src/logger"
	"waveform-streamer/src/metrics"
	"waveform-streamer/src/server"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------

// startStatus serves health, metrics and the cycle feed over HTTP.
func startStatus(conf *config.Config, g *gate.Gate, diag *metrics.Diagnostics, appLogger *logger.Logger) *server.StatusServer {
	status := server.NewStatusServer(conf.MConfig, appLogger.Named("StatusServer"), diag.Prom.Registry(), func() gin.H {
		return gin.H{
			"role":      "client",
			"client":    g.ClientName(),
			"state":     g.State().String(),
			"symbols":   g.Symbols(),
			"criterion": g.Criterion().String(),
			"completed": g.Completed(),
		}
	})

	go func() {
		if err := status.Start(); err != nil {
			appLogger.Error("Status server failed: %v", err)
		}
	}()
	return status
}

// -----------------------------------------------------------------------------

// publisher summarizes each acquisition and pushes it to the viewers.
func publisher(g *gate.Gate, status *server.StatusServer, appLogger *logger.Logger) gate.Callback {
	return func(acq gate.Acquisition) {
		summary := gate.Summarize(context.Background(), acq)
		for name, err := range acq.Failed {
			appLogger.Warning("Acquisition %d: %s skipped: %v", acq.Sequence, name, err)
		}
		for name, s := range summary.Symbols {
			appLogger.Debug("Acquisition %d: %s n=%d mean=%.4g p2p=%.4g std=%.4g",
				acq.Sequence, name, s.SampleCount, s.Mean, s.PeakToPeak, s.StdDev)
		}
		status.Broadcast(&summary)
	}
}

// -----------------------------------------------------------------------------

// followAcquisitions blocks on each new acquisition and logs its first sample
// per symbol.
func followAcquisitions(ctx context.Context, g *gate.Gate, log *logger.Logger) {
	for {
		seq, err := g.WaitForData(ctx, gate.Next, time.Time{})
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Error("WaitForData: %v", err)
			}
			return
		}
		for _, name := range g.Symbols() {
			v, ok := g.Vector(name)
			if !ok || v.Len() == 0 {
				continue
			}
			first, err := v.Float64At(0)
			if err != nil {
				continue
			}
			log.Info("Acquisition %d: %s[0] = %g %s", seq, name, first, v.Header().VerticalUnits)
		}
	}
}
