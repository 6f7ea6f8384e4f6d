// Package metrics provides the diagnostics sinks the streamer records into.
package metrics

import (
	"waveform-streamer/src/interfaces"
	"waveform-streamer/src/logger"
	"waveform-streamer/src/models"
)

// MultiSink fans every record out to several sinks.
type MultiSink []interfaces.IMetricsSink

func (m MultiSink) RecordTimed(name string, value float64) {
	for _, s := range m {
		s.RecordTimed(name, value)
	}
}

func (m MultiSink) RecordError(source string, err error) {
	for _, s := range m {
		s.RecordError(source, err)
	}
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) RecordTimed(string, float64) {}
func (NopSink) RecordError(string, error)   {}

// -----------------------------------------------------------------------------

// Diagnostics bundles the sinks a process records into.
type Diagnostics struct {
	Prom    *PromSink
	Journal *JournalSink // nil when no journal path is configured
	Sink    interfaces.IMetricsSink

	log *logger.Logger
}

// Setup builds the Prometheus sink and, when cfg names a path, the sqlite
// journal, and fans records out to both.
func Setup(cfg models.MDiagnosticsConfig, log *logger.Logger) (*Diagnostics, error) {
	d := &Diagnostics{Prom: NewPromSink(), log: log}
	if cfg.JournalPath == "" {
		d.Sink = d.Prom
		return d, nil
	}

	journal, err := NewJournalSink(cfg.JournalPath, log)
	if err != nil {
		return nil, err
	}
	d.Journal = journal
	d.Sink = MultiSink{d.Prom, journal}
	return d, nil
}

// Close flushes and closes the journal.
func (d *Diagnostics) Close() error {
	if d.Journal == nil {
		return nil
	}
	err := d.Journal.Close()
	if n := d.Journal.Dropped(); n > 0 {
		d.log.Warning("Journal dropped %d events", n)
	}
	return err
}
