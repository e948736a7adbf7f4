// Program cmdrpc runs the echo command over typed HTTP RPC, either as an
// interactive client or as a server.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/creachadair/command"
	"github.com/creachadair/flax"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/openzipkin/zipkin-go"
	"github.com/pkg/errors"

	cmdlog "github.com/go-kit/cmdrpc/log"
	kitzipkin "github.com/go-kit/cmdrpc/tracing/zipkin"
)

var globalFlags struct {
	Jobs      int    `flag:"j,Number of worker threads (0 means one per CPU)"`
	LogLevel  string `flag:"log.level,default=info,Log level (debug, info, warn, error)"`
	LogFormat string `flag:"log.format,default=logfmt,Log format (logfmt, json, logrus)"`
	ZipkinURL string `flag:"zipkin.url,Zipkin collector URL to trace exchanges to (empty disables)"`
}

// logger is set up by the root command before any subcommand runs.
var logger log.Logger = log.NewNopLogger()

func main() {
	root := &command.C{
		Name:     filepath.Base(os.Args[0]),
		Usage:    "[flags] command [args]",
		Help:     "Send and serve typed command requests over HTTP.",
		SetFlags: command.Flags(flax.MustBind, &globalFlags),
		Init:     setup,
		Commands: []*command.C{
			{
				Name:     "client",
				Usage:    "[flags] <url>",
				Help:     clientHelp,
				SetFlags: command.Flags(flax.MustBind, &clientFlags),
				Run:      withSignals(runClient),
			},
			{
				Name:     "server",
				Usage:    "[flags] <url>",
				Help:     serverHelp,
				SetFlags: command.Flags(flax.MustBind, &serverFlags),
				Run:      withSignals(runServer),
			},
			command.HelpCommand(nil),
		},
	}
	command.RunOrFail(root.NewEnv(nil).MergeFlags(true), os.Args[1:])
}

func setup(env *command.Env) error {
	l, err := cmdlog.New(os.Stderr, globalFlags.LogFormat, globalFlags.LogLevel)
	if err != nil {
		return env.Usagef("%v", err)
	}
	logger = l

	if globalFlags.Jobs < 0 {
		return env.Usagef("invalid worker count %d", globalFlags.Jobs)
	}
	workers := globalFlags.Jobs
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	runtime.GOMAXPROCS(workers)
	level.Debug(logger).Log("workers", workers)
	return nil
}

// withSignals adapts run to a command, with a context that ends on interrupt
// or termination and exactly one URL argument.
func withSignals(run func(ctx context.Context, env *command.Env, rawURL string) error) func(*command.Env) error {
	return func(env *command.Env) error {
		if len(env.Args) != 1 {
			return env.Usagef("want exactly one server URL, got %d arguments", len(env.Args))
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := run(ctx, env, env.Args[0]); err != nil {
			level.Error(logger).Log("err", err)
			return errors.Wrap(err, env.Command.Name)
		}
		return nil
	}
}

// newTracer returns the tracer for service configured by -zipkin.url, or nil
// when tracing is disabled. Calling the returned func flushes pending spans.
func newTracer(service string) (*zipkin.Tracer, func(), error) {
	if globalFlags.ZipkinURL == "" {
		return nil, func() {}, nil
	}
	tracer, rep, err := kitzipkin.NewTracer(service, globalFlags.ZipkinURL)
	if err != nil {
		return nil, nil, errors.Wrap(err, "zipkin")
	}
	level.Debug(logger).Log("tracer", "zipkin", "url", globalFlags.ZipkinURL)
	return tracer, func() { rep.Close() }, nil
}
