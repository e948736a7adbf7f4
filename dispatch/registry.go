package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"

	"github.com/creachadair/mds/mapset"
	"github.com/go-kit/log"
	"github.com/gorilla/mux"

	"github.com/go-kit/cmdrpc/endpoint"
	"github.com/go-kit/cmdrpc/metrics"
	"github.com/go-kit/cmdrpc/metrics/discard"
	"github.com/go-kit/cmdrpc/transport"
	httptransport "github.com/go-kit/cmdrpc/transport/http"
)

// ErrDuplicateCommand is returned when a command name is registered twice.
// The first registration stays in effect.
var ErrDuplicateCommand = errors.New("command already registered")

// Handler is the typed form of a command: it receives the shared server state
// and the decoded request, and returns the response or a failure.
type Handler[S, Request, Response any] func(ctx context.Context, state S, request Request) (Response, error)

// Registry maps command names to handlers. It implements http.Handler and is
// safe for concurrent use, including registration while serving.
type Registry[S any] struct {
	state  S
	config config

	mu     sync.RWMutex
	router *mux.Router
	names  mapset.Set[string]
}

type config struct {
	logger   log.Logger
	requests metrics.Counter
	duration metrics.Histogram
	options  []httptransport.ServerOption
}

// Option sets an optional parameter for a Registry.
type Option func(*config)

// WithLogger sets the logger for request and error logging. By default
// nothing is logged.
func WithLogger(logger log.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithMetrics sets the instruments updated for every dispatched request.
// Both receive the labels "command" and "success".
func WithMetrics(requests metrics.Counter, duration metrics.Histogram) Option {
	return func(c *config) {
		c.requests = requests
		c.duration = duration
	}
}

// WithServerOptions adds transport options applied to every command.
func WithServerOptions(options ...httptransport.ServerOption) Option {
	return func(c *config) { c.options = append(c.options, options...) }
}

// New constructs an empty Registry over state. The state is passed to every
// handler for the lifetime of the registry and is never replaced.
func New[S any](state S, options ...Option) *Registry[S] {
	r := &Registry[S]{
		state: state,
		config: config{
			logger:   log.NewNopLogger(),
			requests: discard.NewCounter(),
			duration: discard.NewHistogram(),
		},
		router: mux.NewRouter(),
		names:  mapset.New[string](),
	}
	for _, option := range options {
		option(&r.config)
	}
	r.router.NotFoundHandler = http.HandlerFunc(notFound)
	r.router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	return r
}

// State returns the shared state passed to handlers.
func (r *Registry[S]) State() S { return r.state }

// Commands returns the registered command names in sorted order.
func (r *Registry[S]) Commands() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.names))
	for name := range r.names {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ServeHTTP implements http.Handler.
func (r *Registry[S]) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	var match mux.RouteMatch
	r.mu.RLock()
	r.router.Match(req, &match)
	r.mu.RUnlock()
	match.Handler.ServeHTTP(w, req)
}

// Register binds h to POST /<command>. The type parameters are fixed here:
// request bodies are decoded as Request and results encoded from Response.
func Register[S, Request, Response any](r *Registry[S], command string, h Handler[S, Request, Response], options ...httptransport.ServerOption) error {
	return RegisterEndpoint(r, command, MakeEndpoint(r.state, h), options...)
}

// MakeEndpoint binds state to h, giving an endpoint that middlewares such as
// rate limiters can wrap before it is passed to RegisterEndpoint.
func MakeEndpoint[S, Request, Response any](state S, h Handler[S, Request, Response]) endpoint.Endpoint[Request, Response] {
	return func(ctx context.Context, request Request) (Response, error) {
		return h(ctx, state, request)
	}
}

// RegisterEndpoint binds an endpoint to POST /<command>. Command names must
// be a single plain path segment. Registering a name twice fails with
// ErrDuplicateCommand.
func RegisterEndpoint[S, Request, Response any](r *Registry[S], command string, e endpoint.Endpoint[Request, Response], options ...httptransport.ServerOption) error {
	if err := httptransport.ValidCommand(command); err != nil {
		return fmt.Errorf("register: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.names.Has(command) {
		return fmt.Errorf("register %q: %w", command, ErrDuplicateCommand)
	}

	e = endpoint.Chain(
		endpoint.EndpointNameMiddleware[Request, Response](command),
		LoggingMiddleware[Request, Response](r.config.logger),
		InstrumentingMiddleware[Request, Response](r.config.requests, r.config.duration),
		recoverMiddleware[Request, Response],
	)(e)

	opts := []httptransport.ServerOption{
		httptransport.ServerBefore(
			httptransport.PopulateRequestContext,
			func(ctx context.Context, _ *http.Request) context.Context {
				return context.WithValue(ctx, endpoint.ContextKeyEndpointName, command)
			},
		),
		httptransport.ServerErrorHandler(transport.NewLogErrorHandler(r.config.logger)),
	}
	opts = append(opts, r.config.options...)
	opts = append(opts, options...)

	r.router.Methods(http.MethodPost).Path("/" + command).Handler(httptransport.NewJSONServer(e, opts...))
	r.names.Add(command)
	return nil
}

func notFound(w http.ResponseWriter, r *http.Request) {
	httptransport.WriteError(w, httptransport.KindNotFound, http.StatusNotFound,
		fmt.Sprintf("no command bound to %s", r.URL.Path))
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", http.MethodPost)
	httptransport.WriteError(w, httptransport.KindHandler, http.StatusMethodNotAllowed,
		fmt.Sprintf("method %s not allowed, commands accept POST", r.Method))
}
