package metrics

import (
	"errors"
	"testing"

	"waveform-streamer/src/interfaces"
	"waveform-streamer/src/logger"
	"waveform-streamer/src/models"
)

var (
	_ interfaces.IMetricsSink = (*PromSink)(nil)
	_ interfaces.IMetricsSink = (*JournalSink)(nil)
	_ interfaces.IMetricsSink = MultiSink(nil)
	_ interfaces.IMetricsSink = NopSink{}
)

func TestPromSink(t *testing.T) {
	p := NewPromSink()
	p.RecordTimed("cycle_seconds", 0.5)
	p.RecordTimed("cycle_seconds", 0.25)
	p.RecordError("gate.read.ch1", errors.New("boom"))

	if got := p.Last("cycle_seconds"); got != 0.25 {
		t.Fatalf("last = %v", got)
	}
	if got := p.Observations("cycle_seconds"); got != 2 {
		t.Fatalf("observations = %d", got)
	}
	if got := p.Errors("gate.read.ch1"); got != 1 {
		t.Fatalf("errors = %d", got)
	}

	families, err := p.Registry().Gather()
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "waveform_streamer_timed_last" {
			found = true
		}
	}
	if !found {
		t.Fatal("timed_last family not gathered")
	}
}

func TestJournalSink(t *testing.T) {
	j, err := NewJournalSink(":memory:", logger.NewLogger(nil, "Journal"))
	if err != nil {
		t.Fatal(err)
	}
	defer j.Close()

	j.RecordTimed("get_waveform_throughput", 1e6)
	j.RecordError("WaveformService", errors.New("stream broken"))
	j.Flush()
	// Recording after a flush is ignored.
	j.RecordTimed("late", 1)

	all, err := j.Events("")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d events", len(all))
	}
	errs, err := j.Events("error")
	if err != nil {
		t.Fatal(err)
	}
	if len(errs) != 1 || errs[0].Name != "WaveformService" || errs[0].Message != "stream broken" {
		t.Fatalf("unexpected error rows %+v", errs)
	}
	timed, _ := j.Events("timed")
	if len(timed) != 1 || timed[0].Value != 1e6 {
		t.Fatalf("unexpected timed rows %+v", timed)
	}
}

type countingSink struct{ timed, errs int }

func (c *countingSink) RecordTimed(string, float64) { c.timed++ }
func (c *countingSink) RecordError(string, error)   { c.errs++ }

func TestMultiSink(t *testing.T) {
	a, b := &countingSink{}, &countingSink{}
	m := MultiSink{a, b, NopSink{}}
	m.RecordTimed("x", 1)
	m.RecordError("y", nil)
	if a.timed != 1 || b.timed != 1 || a.errs != 1 || b.errs != 1 {
		t.Fatalf("fan out mismatch: %+v %+v", a, b)
	}
}

func TestSetupWithoutJournal(t *testing.T) {
	d, err := Setup(models.MDiagnosticsConfig{}, logger.NewLogger(&models.MConfig{}, "test"))
	if err != nil {
		t.Fatal(err)
	}
	if d.Journal != nil || d.Sink != interfaces.IMetricsSink(d.Prom) {
		t.Fatalf("expected the prometheus sink alone, got %+v", d)
	}
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestSetupWithJournal(t *testing.T) {
	d, err := Setup(models.MDiagnosticsConfig{JournalPath: ":memory:"}, logger.NewLogger(&models.MConfig{}, "test"))
	if err != nil {
		t.Fatal(err)
	}
	d.Sink.RecordTimed("cycle_seconds", 0.25)
	d.Journal.Flush()
	if v := d.Prom.Last("cycle_seconds"); v != 0.25 {
		t.Fatalf("prometheus missed the record: %v", v)
	}
	events, err := d.Journal.Events("")
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Fatalf("journal events = %d", len(events))
	}
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}
}
