package gate

import (
	"context"
	"time"

	"waveform-streamer/src/analysis/core"
	"waveform-streamer/src/models"
)

// Summarize computes the per-symbol statistics of acq for viewers. Values
// that are not finite are reported as 0 so the summary stays JSON encodable.
func Summarize(ctx context.Context, acq Acquisition) models.MCycleSummary {
	summary := models.MCycleSummary{
		Type:        "UPDATE",
		Acquisition: acq.Sequence,
		Timestamp:   time.Now().UnixMilli(),
		Symbols:     make(map[string]models.MSymbolSummary, len(acq.Vectors)),
		ProcessingMetrics: models.MProcessingMetrics{
			CycleTimeSeconds: time.Since(acq.Started).Seconds(),
			ReadTimeSeconds:  acq.ReadDuration.Seconds(),
			SymbolsRequested: len(acq.Vectors) + len(acq.Failed),
			SymbolsRead:      len(acq.Vectors),
		},
	}
	if acq.Sequence == 1 {
		summary.Type = "INITIAL"
	}

	for name, v := range acq.Vectors {
		if ctx.Err() != nil {
			break
		}
		hdr := v.Header()
		st := v.Statistics()
		summary.Symbols[name] = models.MSymbolSummary{
			SampleCount:   hdr.SampleCount,
			WireType:      hdr.WireType.String(),
			TransactionID: hdr.TransactionID,
			Mean:          core.Finite(st.Mean),
			Minimum:       core.Finite(st.Minimum),
			Maximum:       core.Finite(st.Maximum),
			PeakToPeak:    core.Finite(st.PeakToPeak),
			StdDev:        core.Finite(st.StdDev),
		}
	}
	return summary
}
