// Package prometheus provides Prometheus implementations for metrics.
// Individual metrics are mapped to their Prometheus counterparts, and
// (depending on the constructor used) may be automatically registered in the
// global Prometheus metrics registry.
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/go-kit/cmdrpc/metrics"
)

// LabelValueUnknown is reported for every declared label that was not given
// a value through With. Labels that were not declared are dropped.
const LabelValueUnknown = "unknown"

// Counter implements Counter, via a Prometheus CounterVec.
type Counter struct {
	cv     *prometheus.CounterVec
	labels labelSet
}

// NewCounterFrom constructs and registers a Prometheus CounterVec,
// and returns a usable Counter object. A nil Registerer means the default
// registry.
func NewCounterFrom(reg prometheus.Registerer, opts prometheus.CounterOpts, labelNames []string) *Counter {
	cv := prometheus.NewCounterVec(opts, labelNames)
	registerer(reg).MustRegister(cv)
	return &Counter{cv: cv, labels: labelSet{names: labelNames}}
}

// With implements Counter.
func (c *Counter) With(labelValues ...string) metrics.Counter {
	return &Counter{cv: c.cv, labels: c.labels.with(labelValues)}
}

// Add implements Counter.
func (c *Counter) Add(delta float64) {
	c.cv.With(c.labels.prometheus()).Add(delta)
}

// Histogram implements Histogram via a Prometheus HistogramVec.
type Histogram struct {
	hv     *prometheus.HistogramVec
	labels labelSet
}

// NewHistogramFrom constructs and registers a Prometheus HistogramVec,
// and returns a usable Histogram object. A nil Registerer means the default
// registry.
func NewHistogramFrom(reg prometheus.Registerer, opts prometheus.HistogramOpts, labelNames []string) *Histogram {
	hv := prometheus.NewHistogramVec(opts, labelNames)
	registerer(reg).MustRegister(hv)
	return &Histogram{hv: hv, labels: labelSet{names: labelNames}}
}

// With implements Histogram.
func (h *Histogram) With(labelValues ...string) metrics.Histogram {
	return &Histogram{hv: h.hv, labels: h.labels.with(labelValues)}
}

// Observe implements Histogram.
func (h *Histogram) Observe(value float64) {
	h.hv.With(h.labels.prometheus()).Observe(value)
}

func registerer(reg prometheus.Registerer) prometheus.Registerer {
	if reg == nil {
		return prometheus.DefaultRegisterer
	}
	return reg
}

// labelSet is the declared label names plus the name, value pairs given so
// far. Later pairs win.
type labelSet struct {
	names []string
	pairs []string
}

func (s labelSet) with(labelValues []string) labelSet {
	if len(labelValues)%2 != 0 {
		labelValues = append(labelValues, LabelValueUnknown)
	}
	return labelSet{
		names: s.names,
		pairs: append(s.pairs[:len(s.pairs):len(s.pairs)], labelValues...),
	}
}

func (s labelSet) prometheus() prometheus.Labels {
	labels := make(prometheus.Labels, len(s.names))
	for _, name := range s.names {
		labels[name] = LabelValueUnknown
	}
	for i := 0; i < len(s.pairs); i += 2 {
		if _, ok := labels[s.pairs[i]]; ok {
			labels[s.pairs[i]] = s.pairs[i+1]
		}
	}
	return labels
}
