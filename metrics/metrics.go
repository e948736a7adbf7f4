// Package metrics defines the instrument interfaces used by the dispatcher.
// Labels are passed to With as alternating name, value pairs. Backends live
// in subpackages.
package metrics

import "time"

// Counter describes a metric that accumulates values monotonically.
// An example of a counter is the number of received HTTP requests.
type Counter interface {
	With(labelValues ...string) Counter
	Add(delta float64)
}

// Histogram describes a metric that takes repeated observations of the same
// kind of thing, and produces a statistical summary of those observations,
// typically expressed as quantiles or buckets. An example of a histogram is
// HTTP request latencies.
type Histogram interface {
	With(labelValues ...string) Histogram
	Observe(value float64)
}

// ObserveSince records the seconds elapsed since begin.
func ObserveSince(h Histogram, begin time.Time) {
	d := time.Since(begin).Seconds()
	if d < 0 {
		// Time has gone backwards.
		d = 0
	}
	h.Observe(d)
}
