package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/afex/hystrix-go/hystrix"
	"github.com/creachadair/command"
	"github.com/creachadair/taskgroup"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/sony/gobreaker"
	"github.com/streadway/handy/breaker"

	"github.com/go-kit/cmdrpc/circuitbreaker"
	"github.com/go-kit/cmdrpc/echo"
	"github.com/go-kit/cmdrpc/endpoint"
	kitzipkin "github.com/go-kit/cmdrpc/tracing/zipkin"
	httptransport "github.com/go-kit/cmdrpc/transport/http"
)

const clientHelp = `Send lines read from standard input to the echo command of the
server at <url>, and print each reply.

A failed exchange is reported and the prompt continues, so the
message can be sent again. End of input stops the client.`

var clientFlags struct {
	Timeout time.Duration `flag:"timeout,default=10s,Bound on each exchange (0 for none)"`
	Breaker string        `flag:"breaker,Circuit breaker around the echo command (gobreaker, hystrix, handy)"`
}

func runClient(ctx context.Context, _ *command.Env, rawURL string) error {
	tracer, flush, err := newTracer("cmdrpc-client")
	if err != nil {
		return err
	}
	defer flush()

	opts := []httptransport.ClientOption{
		httptransport.ClientTimeout(clientFlags.Timeout),
		httptransport.ClientBefore(httptransport.SetRequestID),
	}
	if tracer != nil {
		opts = append(opts, httptransport.ClientBefore(kitzipkin.ContextToHTTP(logger)))
	}
	c, err := httptransport.NewClient(rawURL, opts...)
	if err != nil {
		return errors.Wrap(err, "client")
	}
	e, err := withBreaker(echo.NewEndpoint(c), clientFlags.Breaker, clientFlags.Timeout)
	if err != nil {
		return err
	}
	if tracer != nil {
		e = kitzipkin.TraceClient[string, string](tracer, echo.Command)(e)
	}
	e = endpoint.EndpointNameMiddleware[string, string](echo.Command)(e)
	level.Debug(logger).Log("server", c.URL(), "breaker", clientFlags.Breaker)
	return prompt(ctx, e, os.Stdin, os.Stdout, logger)
}

// maxLineBytes bounds one line of prompt input. It matches the largest
// request body a server accepts.
const maxLineBytes = 4 << 20

// withBreaker wraps e in the named circuit breaker. The empty name means none.
func withBreaker(e endpoint.Endpoint[string, string], name string, timeout time.Duration) (endpoint.Endpoint[string, string], error) {
	switch name {
	case "":
		return e, nil
	case "gobreaker":
		cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{Name: echo.Command})
		return circuitbreaker.Gobreaker[string, string](cb)(e), nil
	case "hystrix":
		hystrix.ConfigureCommand(echo.Command, hystrixConfig(timeout))
		return circuitbreaker.Hystrix[string, string](echo.Command)(e), nil
	case "handy":
		return circuitbreaker.HandyBreaker[string, string](breaker.NewBreaker(0.05))(e), nil
	}
	return nil, fmt.Errorf("unknown circuit breaker %q", name)
}

// hystrixConfig returns the hystrix settings for an exchange bound of
// timeout. Hystrix has no unbounded timeout and treats 0 as its 1s default,
// so no bound becomes the largest one it accepts.
func hystrixConfig(timeout time.Duration) hystrix.CommandConfig {
	cfg := hystrix.CommandConfig{Timeout: math.MaxInt32}
	if timeout > 0 {
		cfg.Timeout = int(timeout / time.Millisecond)
	}
	return cfg
}

// prompt sends each line of in to e and writes the reply to out. Lines are
// read on their own goroutine, so a pending read does not hold up shutdown
// when ctx ends.
func prompt(ctx context.Context, e endpoint.Endpoint[string, string], in io.Reader, out io.Writer, logger log.Logger) error {
	lines := make(chan string)
	reader := taskgroup.Go(func() error {
		defer close(lines)
		s := bufio.NewScanner(in)
		s.Buffer(make([]byte, 0, 64<<10), maxLineBytes)
		for s.Scan() {
			select {
			case lines <- s.Text():
			case <-ctx.Done():
				return nil
			}
		}
		return s.Err()
	})

	for {
		fmt.Fprint(out, "message> ")
		var (
			line string
			ok   bool
		)
		select {
		case line, ok = <-lines:
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		}
		if !ok {
			fmt.Fprintln(out)
			return errors.Wrap(reader.Wait(), "reading input")
		}

		reply, err := e(ctx, line)
		if err != nil {
			level.Warn(logger).Log("msg", "exchange failed", "err", err)
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		fmt.Fprintf(out, "%q\n", reply)
	}
}
