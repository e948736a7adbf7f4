package zipkin

import (
	"context"

	"github.com/openzipkin/zipkin-go"
	"github.com/openzipkin/zipkin-go/model"

	"github.com/go-kit/cmdrpc/endpoint"
)

// TraceClient returns a Middleware that wraps the next Endpoint in a client
// span called operationName, a child of the span in ctx if there is one. A
// failed call is tagged with its error.
func TraceClient[Request, Response any](tracer *zipkin.Tracer, operationName string) endpoint.Middleware[Request, Response] {
	return func(next endpoint.Endpoint[Request, Response]) endpoint.Endpoint[Request, Response] {
		return func(ctx context.Context, request Request) (response Response, err error) {
			opts := []zipkin.SpanOption{zipkin.Kind(model.Client)}
			if parent := zipkin.SpanFromContext(ctx); parent != nil {
				opts = append(opts, zipkin.Parent(parent.Context()))
			}
			sp := tracer.StartSpan(operationName, opts...)
			defer func() {
				if err != nil {
					zipkin.TagError.Set(sp, err.Error())
				}
				sp.Finish()
			}()
			return next(zipkin.NewContext(ctx, sp), request)
		}
	}
}
