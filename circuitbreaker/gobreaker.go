package circuitbreaker

import (
	"context"
	"errors"

	"github.com/sony/gobreaker"

	"github.com/go-kit/cmdrpc/endpoint"
	httptransport "github.com/go-kit/cmdrpc/transport/http"
)

// Gobreaker returns an endpoint.Middleware that implements the circuit
// breaker pattern using the sony/gobreaker package. Only errors returned by
// the wrapped endpoint count against the circuit breaker's error count.
// Calls refused by the breaker fail with a KindUnavailable error that wraps
// gobreaker.ErrOpenState or gobreaker.ErrTooManyRequests.
//
// See http://godoc.org/github.com/sony/gobreaker for more information.
func Gobreaker[Request, Response any](cb *gobreaker.CircuitBreaker) endpoint.Middleware[Request, Response] {
	return func(next endpoint.Endpoint[Request, Response]) endpoint.Endpoint[Request, Response] {
		return func(ctx context.Context, request Request) (Response, error) {
			res, err := cb.Execute(func() (interface{}, error) { return next(ctx, request) })
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return *new(Response), rejected(ctx, httptransport.KindUnavailable, err)
			}
			if err != nil {
				return *new(Response), err
			}
			response, _ := res.(Response)
			return response, nil
		}
	}
}
