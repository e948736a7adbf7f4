package dispatch

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/go-kit/cmdrpc/endpoint"
	"github.com/go-kit/cmdrpc/metrics"
	httptransport "github.com/go-kit/cmdrpc/transport/http"
)

// LoggingMiddleware logs every invocation at debug level, with the command
// name, the request identifier, the time taken and any error.
func LoggingMiddleware[Request, Response any](logger log.Logger) endpoint.Middleware[Request, Response] {
	return func(next endpoint.Endpoint[Request, Response]) endpoint.Endpoint[Request, Response] {
		return func(ctx context.Context, request Request) (response Response, err error) {
			defer func(begin time.Time) {
				level.Debug(logger).Log(
					"command", endpoint.NameFromContext(ctx),
					"request_id", httptransport.RequestIDFromContext(ctx),
					"took", time.Since(begin),
					"err", err,
				)
			}(time.Now())
			return next(ctx, request)
		}
	}
}

// InstrumentingMiddleware counts invocations and records their duration in
// seconds, labelled by command name and success.
func InstrumentingMiddleware[Request, Response any](requests metrics.Counter, duration metrics.Histogram) endpoint.Middleware[Request, Response] {
	return func(next endpoint.Endpoint[Request, Response]) endpoint.Endpoint[Request, Response] {
		return func(ctx context.Context, request Request) (response Response, err error) {
			defer func(begin time.Time) {
				lvs := []string{"command", endpoint.NameFromContext(ctx), "success", strconv.FormatBool(err == nil)}
				requests.With(lvs...).Add(1)
				metrics.ObserveSince(duration.With(lvs...), begin)
			}(time.Now())
			return next(ctx, request)
		}
	}
}

// recoverMiddleware turns a handler panic into an error, so the outer
// middlewares see the failure.
func recoverMiddleware[Request, Response any](next endpoint.Endpoint[Request, Response]) endpoint.Endpoint[Request, Response] {
	return func(ctx context.Context, request Request) (response Response, err error) {
		defer func() {
			if v := recover(); v != nil {
				err = fmt.Errorf("handler panic: %v", v)
			}
		}()
		return next(ctx, request)
	}
}
