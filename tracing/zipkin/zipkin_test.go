package zipkin_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/openzipkin/zipkin-go"
	"github.com/openzipkin/zipkin-go/model"
	"github.com/openzipkin/zipkin-go/propagation/b3"
	"github.com/openzipkin/zipkin-go/reporter/recorder"

	"github.com/go-kit/cmdrpc/dispatch"
	"github.com/go-kit/cmdrpc/endpoint"
	kitzipkin "github.com/go-kit/cmdrpc/tracing/zipkin"
	httptransport "github.com/go-kit/cmdrpc/transport/http"
)

func newTracer(t *testing.T) (*zipkin.Tracer, *recorder.ReporterRecorder) {
	t.Helper()
	rec := recorder.NewReporter()
	t.Cleanup(func() { rec.Close() })
	tracer, err := kitzipkin.NewTracerWith("cmdrpc-test", rec)
	if err != nil {
		t.Fatalf("unable to create tracer: %+v", err)
	}
	return tracer, rec
}

func TestHTTPHeaderRoundtrip(t *testing.T) {
	tracer, _ := newTracer(t)

	parent := tracer.StartSpan("echo", zipkin.Kind(model.Client))
	defer parent.Finish()

	req := httptest.NewRequest(http.MethodPost, "http://test.local/echo", nil)
	kitzipkin.ContextToHTTP(log.NewNopLogger())(zipkin.NewContext(context.Background(), parent), req)

	if want, have := parent.Context().TraceID.String(), req.Header.Get(b3.TraceID); want != have {
		t.Errorf("trace id header: want %q, have %q", want, have)
	}

	ctx := kitzipkin.HTTPToContext(tracer)(context.Background(), req)
	child := zipkin.SpanFromContext(ctx)
	if child == nil {
		t.Fatal("no server span in context")
	}
	defer child.Finish()

	if want, have := parent.Context().TraceID, child.Context().TraceID; want != have {
		t.Errorf("trace id: want %s, have %s", want, have)
	}
	if child.Context().ParentID == nil || *child.Context().ParentID != parent.Context().ID {
		t.Errorf("parent id: want %s, have %v", parent.Context().ID, child.Context().ParentID)
	}
	if child.Context().ID == parent.Context().ID {
		t.Error("server span shares the client span id")
	}
}

func TestContextToHTTPWithoutSpan(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "http://test.local/echo", nil)
	kitzipkin.ContextToHTTP(log.NewNopLogger())(context.Background(), req)
	if have := req.Header.Get(b3.TraceID); have != "" {
		t.Errorf("want no trace header, have %q", have)
	}
}

func TestExchangeJoinsTrace(t *testing.T) {
	tracer, rec := newTracer(t)

	r := dispatch.New(struct{}{}, dispatch.WithServerOptions(kitzipkin.ServerOptions(tracer)...))
	if err := dispatch.Register(r, "echo", func(_ context.Context, _ struct{}, s string) (string, error) {
		return s, nil
	}); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(r)
	defer srv.Close()

	c, err := httptransport.NewClient(srv.URL, httptransport.ClientBefore(kitzipkin.ContextToHTTP(log.NewNopLogger())))
	if err != nil {
		t.Fatal(err)
	}
	e := httptransport.NewEndpoint[string, string](c, http.MethodPost, "echo")
	e = endpoint.Chain(kitzipkin.TraceClient[string, string](tracer, "echo"))(e)

	if have, err := e(context.Background(), "hi"); err != nil || have != "hi" {
		t.Fatalf("echo: have %q, %v", have, err)
	}

	// The server span finishes after the response is written.
	var spans []model.SpanModel
	deadline := time.Now().Add(2 * time.Second)
	for len(spans) < 2 && time.Now().Before(deadline) {
		spans = append(spans, rec.Flush()...)
		time.Sleep(10 * time.Millisecond)
	}
	if want, have := 2, len(spans); want != have {
		t.Fatalf("spans: want %d, have %d", want, have)
	}

	byKind := map[model.Kind]model.SpanModel{}
	for _, s := range spans {
		byKind[s.Kind] = s
	}
	client, server := byKind[model.Client], byKind[model.Server]
	if want, have := "echo", server.Name; want != have {
		t.Errorf("server span name: want %q, have %q", want, have)
	}
	if want, have := client.TraceID, server.TraceID; want != have {
		t.Errorf("trace id: want %s, have %s", want, have)
	}
	if server.ParentID == nil || *server.ParentID != client.ID {
		t.Errorf("server parent: want %s, have %v", client.ID, server.ParentID)
	}
	if want, have := "200", server.Tags[string(zipkin.TagHTTPStatusCode)]; want != have {
		t.Errorf("status tag: want %q, have %q", want, have)
	}
}
