package zipkin

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/openzipkin/zipkin-go"
	"github.com/openzipkin/zipkin-go/model"
	"github.com/openzipkin/zipkin-go/propagation/b3"

	"github.com/go-kit/cmdrpc/endpoint"
	httptransport "github.com/go-kit/cmdrpc/transport/http"
)

// ContextToHTTP returns a client RequestFunc that injects the Zipkin span
// found in ctx into the request headers. If there is no span, it does
// nothing.
func ContextToHTTP(logger log.Logger) httptransport.RequestFunc {
	return func(ctx context.Context, req *http.Request) context.Context {
		if span := zipkin.SpanFromContext(ctx); span != nil {
			zipkin.TagHTTPMethod.Set(span, req.Method)
			zipkin.TagHTTPUrl.Set(span, req.URL.String())
			if ep, err := zipkin.NewEndpoint("", req.URL.Host); err == nil {
				span.SetRemoteEndpoint(ep)
			}
			if err := b3.InjectHTTP(req)(span.Context()); err != nil {
				level.Warn(logger).Log("msg", "inject trace headers", "err", err)
			}
		}
		return ctx
	}
}

// HTTPToContext returns a server RequestFunc that joins the trace found in
// the request headers, or starts a new one, with a server span named after
// the command. The span is stored in the returned context.
func HTTPToContext(tracer *zipkin.Tracer) httptransport.RequestFunc {
	return func(ctx context.Context, req *http.Request) context.Context {
		name := endpoint.NameFromContext(ctx)
		if name == "" {
			name = req.URL.Path
		}
		span := tracer.StartSpan(name,
			zipkin.Kind(model.Server),
			zipkin.Parent(tracer.Extract(b3.ExtractHTTP(req))),
		)
		zipkin.TagHTTPMethod.Set(span, req.Method)
		zipkin.TagHTTPPath.Set(span, req.URL.Path)
		return zipkin.NewContext(ctx, span)
	}
}

// HTTPServerFinalizer records the response status on the server span started
// by HTTPToContext and finishes it.
func HTTPServerFinalizer(ctx context.Context, code int, _ *http.Request) {
	span := zipkin.SpanFromContext(ctx)
	if span == nil {
		return
	}
	zipkin.TagHTTPStatusCode.Set(span, strconv.Itoa(code))
	if code >= http.StatusInternalServerError {
		zipkin.TagError.Set(span, http.StatusText(code))
	}
	span.Finish()
}

// ServerOptions returns the server options that trace every request with
// tracer.
func ServerOptions(tracer *zipkin.Tracer) []httptransport.ServerOption {
	return []httptransport.ServerOption{
		httptransport.ServerBefore(HTTPToContext(tracer)),
		httptransport.ServerFinalizer(HTTPServerFinalizer),
	}
}
