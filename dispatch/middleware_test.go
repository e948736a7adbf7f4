package dispatch_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/go-kit/cmdrpc/dispatch"
	kitprometheus "github.com/go-kit/cmdrpc/metrics/prometheus"
	httptransport "github.com/go-kit/cmdrpc/transport/http"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	labels := []string{"command", "success"}
	requests := kitprometheus.NewCounterFrom(reg, prometheus.CounterOpts{
		Namespace: "cmdrpc",
		Name:      "requests_total",
		Help:      "Dispatched requests.",
	}, labels)
	duration := kitprometheus.NewHistogramFrom(reg, prometheus.HistogramOpts{
		Namespace: "cmdrpc",
		Name:      "request_duration_seconds",
		Help:      "Time spent in handlers.",
	}, labels)

	_, c := newTestServer(t, dispatch.WithMetrics(requests, duration))
	ctx := context.Background()
	httptransport.Post[string](ctx, c, "echo", "a")
	httptransport.Post[string](ctx, c, "echo", "b")
	httptransport.Post[string](ctx, c, "maybe", "fail")

	want := `
# HELP cmdrpc_requests_total Dispatched requests.
# TYPE cmdrpc_requests_total counter
cmdrpc_requests_total{command="echo",success="true"} 2
cmdrpc_requests_total{command="maybe",success="false"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(want), "cmdrpc_requests_total"); err != nil {
		t.Error(err)
	}
	n, err := testutil.GatherAndCount(reg, "cmdrpc_request_duration_seconds")
	if err != nil {
		t.Fatal(err)
	}
	if want, have := 2, n; want != have {
		t.Errorf("duration series: want %d, have %d", want, have)
	}
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewLogfmtLogger(log.NewSyncWriter(&buf))

	_, c := newTestServer(t, dispatch.WithLogger(logger))
	httptransport.Post[string](context.Background(), c, "maybe", "fail")

	out := buf.String()
	for _, want := range []string{
		"level=debug command=maybe request_id=",
		"err=refused",
		"level=error command=maybe",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("want %q in log:\n%s", want, out)
		}
	}
}
