package circuitbreaker

import (
	"context"
	"errors"

	"github.com/afex/hystrix-go/hystrix"

	"github.com/go-kit/cmdrpc/endpoint"
	httptransport "github.com/go-kit/cmdrpc/transport/http"
)

// Hystrix returns an endpoint.Middleware that implements the circuit
// breaker pattern using the afex/hystrix-go package.
//
// When using this circuit breaker, please configure your commands separately.
// A call hystrix refuses fails with a KindUnavailable error, and one it times
// out with a KindTimeout error; both unwrap to the hystrix error.
//
// See https://godoc.org/github.com/afex/hystrix-go/hystrix for more
// information.
func Hystrix[Request, Response any](commandName string) endpoint.Middleware[Request, Response] {
	return func(next endpoint.Endpoint[Request, Response]) endpoint.Endpoint[Request, Response] {
		return func(ctx context.Context, request Request) (Response, error) {
			var resp Response
			if err := hystrix.Do(commandName, func() (err error) {
				resp, err = next(ctx, request)
				return err
			}, nil); err != nil {
				switch {
				case errors.Is(err, hystrix.ErrTimeout):
					return *new(Response), rejected(ctx, httptransport.KindTimeout, err)
				case errors.Is(err, hystrix.ErrCircuitOpen), errors.Is(err, hystrix.ErrMaxConcurrency):
					return *new(Response), rejected(ctx, httptransport.KindUnavailable, err)
				}
				return *new(Response), err
			}
			return resp, nil
		}
	}
}
