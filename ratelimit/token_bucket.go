package ratelimit

import (
	"context"
	"net/http"

	"golang.org/x/sync/semaphore"

	"github.com/go-kit/cmdrpc/endpoint"
)

// ErrLimited is returned in the request path when the rate limiter is
// triggered and the request is rejected. It carries status 429 so servers
// report it as Too Many Requests.
var ErrLimited error = limitedError{}

type limitedError struct{}

func (limitedError) Error() string   { return "rate limit exceeded" }
func (limitedError) StatusCode() int { return http.StatusTooManyRequests }

// Allower dictates whether or not a request is acceptable to run.
// The Limiter from "golang.org/x/time/rate" already implements this interface,
// one is able to use that in NewErroringLimiter without any modifications.
type Allower interface {
	Allow() bool
}

// NewErroringLimiter returns an endpoint.Middleware that acts as a rate
// limiter. Requests that would exceed the
// maximum request rate are simply rejected with an error.
func NewErroringLimiter[Request, Response any](limit Allower) endpoint.Middleware[Request, Response] {
	return func(next endpoint.Endpoint[Request, Response]) endpoint.Endpoint[Request, Response] {
		return func(ctx context.Context, request Request) (Response, error) {
			if !limit.Allow() {
				return *new(Response), ErrLimited
			}
			return next(ctx, request)
		}
	}
}

// Waiter dictates how long a request must be delayed.
// The Limiter from "golang.org/x/time/rate" already implements this interface,
// one is able to use that in NewDelayingLimiter without any modifications.
type Waiter interface {
	Wait(ctx context.Context) error
}

// NewDelayingLimiter returns an endpoint.Middleware that acts as a
// request throttler. Requests that would
// exceed the maximum request rate are delayed via the Waiter function
func NewDelayingLimiter[Request, Response any](limit Waiter) endpoint.Middleware[Request, Response] {
	return func(next endpoint.Endpoint[Request, Response]) endpoint.Endpoint[Request, Response] {
		return func(ctx context.Context, request Request) (Response, error) {
			if err := limit.Wait(ctx); err != nil {
				return *new(Response), err
			}
			return next(ctx, request)
		}
	}
}

// NewConcurrencyLimiter returns an endpoint.Middleware that lets at most as
// many requests run at once as sem has capacity. Other requests wait for a
// slot until their context ends.
func NewConcurrencyLimiter[Request, Response any](sem *semaphore.Weighted) endpoint.Middleware[Request, Response] {
	return func(next endpoint.Endpoint[Request, Response]) endpoint.Endpoint[Request, Response] {
		return func(ctx context.Context, request Request) (Response, error) {
			if err := sem.Acquire(ctx, 1); err != nil {
				return *new(Response), err
			}
			defer sem.Release(1)
			return next(ctx, request)
		}
	}
}

// AllowerFunc is an adapter that lets a function operate as if
// it implements Allower
type AllowerFunc func() bool

// Allow makes the adapter implement Allower
func (f AllowerFunc) Allow() bool {
	return f()
}

// WaiterFunc is an adapter that lets a function operate as if
// it implements Waiter
type WaiterFunc func(ctx context.Context) error

// Wait makes the adapter implement Waiter
func (f WaiterFunc) Wait(ctx context.Context) error {
	return f(ctx)
}
