package prometheus_test

import (
	"strings"
	"testing"

	stdprometheus "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/go-kit/cmdrpc/metrics/prometheus"
)

func TestCounter(t *testing.T) {
	reg := stdprometheus.NewRegistry()
	c := prometheus.NewCounterFrom(reg, stdprometheus.CounterOpts{
		Namespace: "test",
		Subsystem: "prometheus",
		Name:      "counter",
		Help:      "Lorem ipsum.",
	}, []string{"command"})

	c.With("command", "echo").Add(1)
	c.With("command", "echo").Add(2)
	c.With("command", "other").Add(4)

	expected := `
# HELP test_prometheus_counter Lorem ipsum.
# TYPE test_prometheus_counter counter
test_prometheus_counter{command="echo"} 3
test_prometheus_counter{command="other"} 4
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "test_prometheus_counter"); err != nil {
		t.Error(err)
	}
}

func TestLabelBehavior(t *testing.T) {
	reg := stdprometheus.NewRegistry()
	c := prometheus.NewCounterFrom(reg, stdprometheus.CounterOpts{
		Namespace: "test",
		Subsystem: "prometheus",
		Name:      "label_behavior",
		Help:      "Abc def.",
	}, []string{"used_key", "unused_key"})

	c.With("used_key", "declared", "undeclared_key", "dropped").Add(1)
	c.Add(1)
	c.With("used_key", "first").With("used_key", "second").Add(1)

	expected := `
# HELP test_prometheus_label_behavior Abc def.
# TYPE test_prometheus_label_behavior counter
test_prometheus_label_behavior{unused_key="unknown",used_key="declared"} 1
test_prometheus_label_behavior{unused_key="unknown",used_key="second"} 1
test_prometheus_label_behavior{unused_key="unknown",used_key="unknown"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "test_prometheus_label_behavior"); err != nil {
		t.Error(err)
	}
}

func TestHistogram(t *testing.T) {
	reg := stdprometheus.NewRegistry()
	h := prometheus.NewHistogramFrom(reg, stdprometheus.HistogramOpts{
		Namespace: "test",
		Subsystem: "prometheus",
		Name:      "histogram",
		Help:      "Dolor sit.",
		Buckets:   []float64{1, 10},
	}, []string{"command"})

	h.With("command", "echo").Observe(0.5)
	h.With("command", "echo").Observe(5)
	h.With("command", "echo").Observe(50)

	expected := `
# HELP test_prometheus_histogram Dolor sit.
# TYPE test_prometheus_histogram histogram
test_prometheus_histogram_bucket{command="echo",le="1"} 1
test_prometheus_histogram_bucket{command="echo",le="10"} 2
test_prometheus_histogram_bucket{command="echo",le="+Inf"} 3
test_prometheus_histogram_sum{command="echo"} 55.5
test_prometheus_histogram_count{command="echo"} 3
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "test_prometheus_histogram"); err != nil {
		t.Error(err)
	}
}
