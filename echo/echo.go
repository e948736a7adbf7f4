// Package echo is the demonstration command: it returns its input unchanged.
package echo

import (
	"context"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/go-kit/cmdrpc/dispatch"
	"github.com/go-kit/cmdrpc/endpoint"
	httptransport "github.com/go-kit/cmdrpc/transport/http"
)

// Command is the name the echo handler is bound to.
const Command = "echo"

// State is the shared server state of an echo server.
type State struct {
	Logger   log.Logger
	Received *dispatch.Shared[uint64]
}

// NewState returns a State that logs to logger and has received nothing.
func NewState(logger log.Logger) State {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return State{Logger: logger, Received: dispatch.NewShared[uint64](0)}
}

// Echo logs and counts the request and returns it unchanged.
func Echo(ctx context.Context, s State, request string) (string, error) {
	n := s.Received.Update(func(n uint64) uint64 { return n + 1 })
	level.Info(s.Logger).Log(
		"msg", "message received",
		"request", request,
		"received", n,
		"request_id", httptransport.RequestIDFromContext(ctx),
	)
	return request, nil
}

// Register binds Echo to Command in r, wrapped in the given middlewares,
// outermost first.
func Register(r *dispatch.Registry[State], middlewares ...endpoint.Middleware[string, string]) error {
	e := dispatch.MakeEndpoint(r.State(), Echo)
	for i := len(middlewares) - 1; i >= 0; i-- {
		e = middlewares[i](e)
	}
	return dispatch.RegisterEndpoint(r, Command, e)
}

// NewEndpoint returns a client endpoint that sends its request to the echo
// command of c's server.
func NewEndpoint(c *httptransport.Client) endpoint.Endpoint[string, string] {
	return httptransport.NewEndpoint[string, string](c, "POST", Command)
}

// Call sends s to the echo command of c's server and returns the reply.
func Call(ctx context.Context, c *httptransport.Client, s string) (string, error) {
	return httptransport.Post[string](ctx, c, Command, s)
}
