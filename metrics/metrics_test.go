package metrics_test

import (
	"testing"
	"time"

	"github.com/go-kit/cmdrpc/metrics"
)

type recordingHistogram struct{ values []float64 }

func (h *recordingHistogram) With(...string) metrics.Histogram { return h }
func (h *recordingHistogram) Observe(v float64)                { h.values = append(h.values, v) }

func TestObserveSince(t *testing.T) {
	h := &recordingHistogram{}
	metrics.ObserveSince(h, time.Now().Add(-time.Second))
	metrics.ObserveSince(h, time.Now().Add(time.Hour))

	if want, have := 2, len(h.values); want != have {
		t.Fatalf("want %d observations, have %d", want, have)
	}
	if h.values[0] < 1 {
		t.Errorf("want at least 1s, have %v", h.values[0])
	}
	if want, have := 0.0, h.values[1]; want != have {
		t.Errorf("future start: want %v, have %v", want, have)
	}
}
