package main

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/creachadair/command"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/oklog/run"
	"github.com/openzipkin/zipkin-go"
	"github.com/pkg/errors"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/go-kit/cmdrpc/dispatch"
	"github.com/go-kit/cmdrpc/echo"
	"github.com/go-kit/cmdrpc/endpoint"
	"github.com/go-kit/cmdrpc/metrics/prometheus"
	"github.com/go-kit/cmdrpc/ratelimit"
	kitzipkin "github.com/go-kit/cmdrpc/tracing/zipkin"
	httptransport "github.com/go-kit/cmdrpc/transport/http"
)

const serverHelp = `Serve the echo command at the host and port of <url>, which must be
an http URL. The port defaults to 80. TLS is not served.

With -debug.addr set, Prometheus metrics are served at /metrics on that
address. The server stops on interrupt, letting requests in flight finish.`

type serverConfig struct {
	DebugAddr   string  `flag:"debug.addr,Debug and metrics listen address (empty disables)"`
	Rate        float64 `flag:"rate,Echo requests per second (0 for no limit)"`
	Burst       int     `flag:"burst,default=1,Echo requests allowed in a burst"`
	MaxInFlight int64   `flag:"max-inflight,Echo requests handled at once (0 for no limit)"`
}

var serverFlags serverConfig

// shutdownTimeout bounds how long requests in flight may take to finish once
// the server is stopping.
const shutdownTimeout = 5 * time.Second

func runServer(ctx context.Context, _ *command.Env, rawURL string) error {
	addr, err := listenAddr(rawURL)
	if err != nil {
		return err
	}

	reg := stdprometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	tracer, flush, err := newTracer("cmdrpc-server")
	if err != nil {
		return err
	}
	defer flush()

	handler, err := newHandler(logger, reg, tracer, serverFlags)
	if err != nil {
		return err
	}

	var g run.Group
	httpListener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", addr)
	}
	addServer(&g, logger, "HTTP", httpListener, handler)

	if serverFlags.DebugAddr != "" {
		ln, err := net.Listen("tcp", serverFlags.DebugAddr)
		if err != nil {
			httpListener.Close()
			return errors.Wrapf(err, "listen on %s", serverFlags.DebugAddr)
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		addServer(&g, logger, "debug/HTTP", ln, mux)
	}
	{
		ctx, cancel := context.WithCancel(ctx)
		g.Add(func() error {
			<-ctx.Done()
			level.Info(logger).Log("msg", "stopping")
			return nil
		}, func(error) {
			cancel()
		})
	}
	return g.Run()
}

// listenAddr returns the host and port to serve rawURL on. A URL without a
// port is served on port 80. TLS is not served, so https URLs are refused.
func listenAddr(rawURL string) (string, error) {
	u, err := httptransport.ParseServerURL(rawURL)
	if err != nil {
		return "", errors.Wrap(err, "server")
	}
	if u.Scheme != "http" {
		return "", errors.Errorf("server: scheme %q is not served, use http", u.Scheme)
	}
	port := u.Port()
	if port == "" {
		port = "80"
	}
	return net.JoinHostPort(u.Hostname(), port), nil
}

// newHandler builds the registry serving echo, with the limits set in cfg and
// its instruments registered in reg. A nil tracer disables tracing.
func newHandler(logger log.Logger, reg stdprometheus.Registerer, tracer *zipkin.Tracer, cfg serverConfig) (*dispatch.Registry[echo.State], error) {
	labels := []string{"command", "success"}
	requests := prometheus.NewCounterFrom(reg, stdprometheus.CounterOpts{
		Namespace: "cmdrpc",
		Subsystem: "server",
		Name:      "requests_total",
		Help:      "Total count of dispatched command requests.",
	}, labels)
	duration := prometheus.NewHistogramFrom(reg, stdprometheus.HistogramOpts{
		Namespace: "cmdrpc",
		Subsystem: "server",
		Name:      "request_duration_seconds",
		Help:      "Command handling duration in seconds.",
	}, labels)

	opts := []dispatch.Option{
		dispatch.WithLogger(logger),
		dispatch.WithMetrics(requests, duration),
	}
	if tracer != nil {
		opts = append(opts, dispatch.WithServerOptions(kitzipkin.ServerOptions(tracer)...))
	}
	r := dispatch.New(echo.NewState(logger), opts...)

	var mw []endpoint.Middleware[string, string]
	if cfg.Rate > 0 {
		limit := rate.NewLimiter(rate.Limit(cfg.Rate), max(cfg.Burst, 1))
		mw = append(mw, ratelimit.NewErroringLimiter[string, string](limit))
	}
	if cfg.MaxInFlight > 0 {
		mw = append(mw, ratelimit.NewConcurrencyLimiter[string, string](semaphore.NewWeighted(cfg.MaxInFlight)))
	}
	if err := echo.Register(r, mw...); err != nil {
		return nil, err
	}
	return r, nil
}

// addServer adds an actor serving h on ln, shut down gracefully when the
// group stops.
func addServer(g *run.Group, logger log.Logger, transport string, ln net.Listener, h http.Handler) {
	srv := &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second}
	g.Add(func() error {
		level.Info(logger).Log("transport", transport, "addr", ln.Addr())
		if err := srv.Serve(ln); err != http.ErrServerClosed {
			return err
		}
		return nil
	}, func(error) {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		srv.Shutdown(ctx)
	})
}
