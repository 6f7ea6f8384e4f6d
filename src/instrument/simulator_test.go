package instrument

import (
	"context"
	"errors"
	"testing"
	"time"

	"waveform-streamer/src/codec"
	"waveform-streamer/src/logger"
	"waveform-streamer/src/models"
)

func testConfig() models.MInstrumentConfig {
	return models.MInstrumentConfig{
		AcquisitionIntervalMs: 1,
		DefaultChunkSize:      1 << 16,
		Channels: []models.MChannelConfig{
			{Name: "ch1", Type: "float32", RecordLength: 1000, HorizontalSpacing: 1e-9},
			{Name: "ch2", Type: "int16", RecordLength: 500},
			{Name: "iq", Type: "iq16", RecordLength: 64},
			{Name: "bus", Type: "digital8", RecordLength: 32},
			{Name: "meas1", Type: "measurement"},
		},
	}
}

func newSim() *Simulator {
	return NewSimulator(testConfig(), logger.NewLogger(nil, "Instrument"))
}

func TestAcquirePublishesObjects(t *testing.T) {
	sim := newSim()
	if _, ok := sim.Resolve("ch1"); ok {
		t.Fatal("nothing is published before the first acquisition")
	}
	seq := sim.Acquire()

	obj, ok := sim.Resolve("ch1")
	if !ok {
		t.Fatal("ch1 missing")
	}
	wf := obj.(*Waveform)
	if wf.Samples.Len() != 1000 || wf.TransactionID != seq || wf.HorizontalSpacing != 1e-9 {
		t.Fatalf("unexpected waveform %+v", wf)
	}
	if _, ok := wf.Samples.(codec.Float32Samples); !ok {
		t.Fatalf("ch1 samples are %T", wf.Samples)
	}
	iq, _ := sim.Resolve("iq")
	if _, ok := iq.(*Waveform).Samples.(codec.IQ16Samples); !ok {
		t.Fatal("iq channel must carry IQ16 samples")
	}
	meas, _ := sim.Resolve("meas1")
	if _, ok := meas.(*Measurement); !ok {
		t.Fatalf("meas1 resolved to %T", meas)
	}
	if got := sim.AvailableNames(); len(got) != 5 || got[0] != "ch1" {
		t.Fatalf("names %v", got)
	}
}

func TestWindowGrantedOncePerAcquisition(t *testing.T) {
	sim := newSim()
	sim.Acquire()
	ctx := context.Background()

	if err := sim.WaitForAccess(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if !sim.FinishedWithAccess("a") {
		t.Fatal("a was holding the window")
	}
	if sim.FinishedWithAccess("a") {
		t.Fatal("a second release must report nothing held")
	}
	if sim.WindowOpen() {
		t.Fatal("the window closes when its last reader finishes")
	}

	// a already read acquisition 1: it must wait for the next one.
	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := sim.WaitForAccess(short, "a"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected to block, got %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- sim.WaitForAccess(ctx, "a") }()
	sim.Acquire()
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(time.Second):
		t.Fatal("waiter not woken by a new acquisition")
	}
}

func TestRunWaitsForReaders(t *testing.T) {
	sim := newSim()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sim.Run(ctx)

	for i := 0; i < 3; i++ {
		if err := sim.WaitForAccess(ctx, "reader"); err != nil {
			t.Fatal(err)
		}
		seq := sim.Sequence()
		time.Sleep(5 * time.Millisecond)
		if sim.Sequence() != seq {
			t.Fatal("a new acquisition started while the window was held")
		}
		sim.FinishedWithAccess("reader")
	}
}

func TestRequestNewSequenceSkipsInterval(t *testing.T) {
	cfg := testConfig()
	cfg.AcquisitionIntervalMs = 60000
	sim := NewSimulator(cfg, logger.NewLogger(nil, "Instrument"))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sim.Run(ctx)

	if err := sim.WaitForAccess(ctx, "r"); err != nil {
		t.Fatal(err)
	}
	sim.RequestNewSequence()
	sim.FinishedWithAccess("r")

	wait, stop := context.WithTimeout(ctx, 2*time.Second)
	defer stop()
	if err := sim.WaitForAccess(wait, "r"); err != nil {
		t.Fatalf("forced sequence not produced: %v", err)
	}
	if sim.Sequence() != 2 {
		t.Fatalf("sequence %d", sim.Sequence())
	}
}

func TestSynthesizeQuantizes(t *testing.T) {
	ch := models.MChannelConfig{Name: "x", Type: "int8", RecordLength: 100, Amplitude: 2}
	wf := synthesize(ch, 1, 1).(*Waveform)
	s := wf.Samples.(codec.Int8Samples)
	for i, v := range s {
		volts := float64(v) * wf.VerticalSpacing
		if volts > 2.05 || volts < -2.05 {
			t.Fatalf("sample %d = %v V outside the amplitude", i, volts)
		}
	}
	if synthesize(models.MChannelConfig{Type: "bogus"}, 1, 1) != nil {
		t.Fatal("unknown channel types produce nothing")
	}
}
