package zipkin

import (
	"github.com/openzipkin/zipkin-go"
	"github.com/openzipkin/zipkin-go/reporter"
	zipkinhttp "github.com/openzipkin/zipkin-go/reporter/http"
)

// NewTracer returns a tracer for serviceName that reports every span to the
// Zipkin collector at collectorURL, such as
// http://localhost:9411/api/v2/spans. The reporter must be closed to flush
// buffered spans.
func NewTracer(serviceName, collectorURL string) (*zipkin.Tracer, reporter.Reporter, error) {
	rep := zipkinhttp.NewReporter(collectorURL)
	tracer, err := NewTracerWith(serviceName, rep)
	if err != nil {
		rep.Close()
		return nil, nil, err
	}
	return tracer, rep, nil
}

// NewTracerWith is NewTracer with a caller-supplied reporter. Client and
// server spans of one exchange get distinct span IDs.
func NewTracerWith(serviceName string, rep reporter.Reporter) (*zipkin.Tracer, error) {
	ep, err := zipkin.NewEndpoint(serviceName, "")
	if err != nil {
		return nil, err
	}
	return zipkin.NewTracer(rep,
		zipkin.WithLocalEndpoint(ep),
		zipkin.WithSampler(zipkin.AlwaysSample),
		zipkin.WithSharedSpans(false),
	)
}
