package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

const namespace = "waveform_streamer"

// PromSink records timed metrics and errors into a private Prometheus
// registry, which the status server exposes.
//
// Every timed metric feeds two sets keyed by the "name" label:
//   - a Summary named "timed" for the distribution,
//   - a Gauge named "timed_last" holding the latest value.
//
// Errors increment the "errors" counter keyed by "source".
type PromSink struct {
	registry *prometheus.Registry
	timed    *prometheus.SummaryVec
	last     *prometheus.GaugeVec
	errors   *prometheus.CounterVec
}

// NewPromSink returns a sink with its own registry, which also carries the
// Go runtime and process collectors.
func NewPromSink() *PromSink {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)
	return &PromSink{
		registry: reg,
		timed: factory.NewSummaryVec(prometheus.SummaryOpts{
			Namespace:  namespace,
			Name:       "timed",
			Help:       "Timed measurements recorded by the streamer.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}, []string{"name"}),
		last: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "timed_last",
			Help:      "Latest value of each timed measurement.",
		}, []string{"name"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors",
			Help:      "Errors recorded per source.",
		}, []string{"source"}),
	}
}

// Registry is the registry holding the sink's collectors.
func (p *PromSink) Registry() *prometheus.Registry {
	return p.registry
}

func (p *PromSink) RecordTimed(name string, value float64) {
	p.timed.WithLabelValues(name).Observe(value)
	p.last.WithLabelValues(name).Set(value)
}

func (p *PromSink) RecordError(source string, err error) {
	p.errors.WithLabelValues(source).Inc()
}

// Last returns the latest value recorded under name.
func (p *PromSink) Last(name string) float64 {
	var value dto.Metric
	if p.last.WithLabelValues(name).Write(&value) != nil || value.Gauge == nil {
		return 0
	}
	return value.Gauge.GetValue()
}

// Observations returns how many values were recorded under name.
func (p *PromSink) Observations(name string) uint64 {
	obs, ok := p.timed.WithLabelValues(name).(prometheus.Summary)
	if !ok {
		return 0
	}
	var value dto.Metric
	if obs.Write(&value) != nil || value.Summary == nil {
		return 0
	}
	return value.Summary.GetSampleCount()
}

// Errors returns how many errors source recorded.
func (p *PromSink) Errors(source string) uint64 {
	var value dto.Metric
	if p.errors.WithLabelValues(source).Write(&value) != nil || value.Counter == nil {
		return 0
	}
	return uint64(value.Counter.GetValue())
}
