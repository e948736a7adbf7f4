// Package endpoint defines the typed function shape shared by the client and
// server halves of a command: one request value in, one response value out.
package endpoint

import (
	"context"
)

// Endpoint is the fundamental building block of servers and clients.
// It represents a single command.
type Endpoint[Request, Response any] func(ctx context.Context, request Request) (response Response, err error)

// Nop is an endpoint that does nothing and returns a nil error.
// Useful for tests.
func Nop[Request, Response any](context.Context, Request) (Response, error) {
	return *new(Response), nil
}

// Middleware is a chainable behavior modifier for endpoints.
type Middleware[Request, Response any] func(Endpoint[Request, Response]) Endpoint[Request, Response]

// Chain is a helper function for composing middlewares. Requests will
// traverse them in the order they're declared. That is, the first middleware
// is treated as the outermost middleware.
func Chain[Request, Response any](outer Middleware[Request, Response], others ...Middleware[Request, Response]) Middleware[Request, Response] {
	return func(next Endpoint[Request, Response]) Endpoint[Request, Response] {
		for i := len(others) - 1; i >= 0; i-- { // reverse
			next = others[i](next)
		}
		return outer(next)
	}
}

// Failer may be implemented by response types that carry a business error
// alongside their payload. Response encoders can check for it and write the
// error instead of the payload.
type Failer interface {
	Failed() error
}

type contextKey int

const (
	// ContextKeyEndpointName is populated in the context by
	// EndpointNameMiddleware. Its value is the command name.
	ContextKeyEndpointName contextKey = iota
)

// EndpointNameMiddleware populates the context with the command name, so
// that handlers and inner middlewares can refer to it.
func EndpointNameMiddleware[Request, Response any](name string) Middleware[Request, Response] {
	return func(next Endpoint[Request, Response]) Endpoint[Request, Response] {
		return func(ctx context.Context, request Request) (Response, error) {
			return next(context.WithValue(ctx, ContextKeyEndpointName, name), request)
		}
	}
}

// NameFromContext returns the command name stored by EndpointNameMiddleware,
// or "" if there is none.
func NameFromContext(ctx context.Context) string {
	name, _ := ctx.Value(ContextKeyEndpointName).(string)
	return name
}
