package gate

import (
	"context"
	"math"
	"testing"
	"time"

	"waveform-streamer/src/codec"
	"waveform-streamer/src/models"
	"waveform-streamer/src/store"
)

func floatVector(t *testing.T, name string, values codec.Float32Samples) store.Vector {
	t.Helper()
	hdr := models.WaveformHeader{
		SourceName:      name,
		SampleCount:     uint64(len(values)),
		SourceWidth:     4,
		WireType:        models.WireAnalogFloat,
		VerticalSpacing: 1,
		TransactionID:   9,
	}
	v, err := store.NewVector(hdr, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(values) > 0 {
		plan, _ := codec.NewPlan(hdr.SampleCount, 4, 1<<10)
		for i := 0; i < plan.Chunks; i++ {
			if err := v.Append(models.Chunk{Index: i, Payload: codec.EncodeSlice(values, plan, i)}); err != nil {
				t.Fatal(err)
			}
		}
	}
	return v
}

func TestSummarize(t *testing.T) {
	acq := Acquisition{
		Sequence:     1,
		Started:      time.Now().Add(-time.Second),
		ReadDuration: 250 * time.Millisecond,
		Vectors: map[string]store.Vector{
			"ch1":   floatVector(t, "ch1", codec.Float32Samples{1, 2, 3, 4}),
			"empty": floatVector(t, "empty", nil),
		},
		Failed: map[string]error{"meas1": errNoHeader},
	}

	s := Summarize(context.Background(), acq)
	if s.Type != "INITIAL" || s.Acquisition != 1 {
		t.Fatalf("summary %+v", s)
	}
	if s.ProcessingMetrics.SymbolsRequested != 3 || s.ProcessingMetrics.SymbolsRead != 2 {
		t.Fatalf("metrics %+v", s.ProcessingMetrics)
	}
	if s.ProcessingMetrics.ReadTimeSeconds != 0.25 || s.ProcessingMetrics.CycleTimeSeconds < 1 {
		t.Fatalf("timings %+v", s.ProcessingMetrics)
	}

	ch1 := s.Symbols["ch1"]
	if ch1.Mean != 2.5 || ch1.Minimum != 1 || ch1.Maximum != 4 || ch1.PeakToPeak != 3 {
		t.Fatalf("ch1 %+v", ch1)
	}
	if math.Abs(ch1.StdDev-math.Sqrt(5.0/3.0)) > 1e-12 {
		t.Fatalf("std dev %v", ch1.StdDev)
	}
	if ch1.WireType != "AnalogFloat" || ch1.TransactionID != 9 {
		t.Fatalf("ch1 %+v", ch1)
	}

	empty := s.Symbols["empty"]
	if empty.SampleCount != 0 || empty.Mean != 0 || empty.StdDev != 0 {
		t.Fatalf("empty symbol must summarize to zeros, got %+v", empty)
	}

	acq.Sequence = 2
	if Summarize(context.Background(), acq).Type != "UPDATE" {
		t.Fatal("later cycles are updates")
	}
}
