package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-kit/cmdrpc/endpoint"
	"github.com/go-kit/cmdrpc/transport"
)

// Server wraps an endpoint and implements http.Handler.
type Server[Request, Response any] struct {
	e   endpoint.Endpoint[Request, Response]
	dec DecodeRequestFunc[Request]
	enc EncodeResponseFunc[Response]
	serverOptions
}

type serverOptions struct {
	before       []RequestFunc
	after        []ServerResponseFunc
	errorEncoder ErrorEncoder
	finalizer    []ServerFinalizerFunc
	errorHandler transport.ErrorHandler
}

// NewServer constructs a new server, which implements http.Handler and wraps
// the provided endpoint.
func NewServer[Request, Response any](
	e endpoint.Endpoint[Request, Response],
	dec DecodeRequestFunc[Request],
	enc EncodeResponseFunc[Response],
	options ...ServerOption,
) *Server[Request, Response] {
	s := &Server[Request, Response]{
		e:   e,
		dec: dec,
		enc: enc,
		serverOptions: serverOptions{
			errorEncoder: DefaultErrorEncoder,
			errorHandler: transport.NopErrorHandler,
		},
	}
	for _, option := range options {
		option(&s.serverOptions)
	}
	return s
}

// NewJSONServer is NewServer with the JSON request decoder and response
// encoder.
func NewJSONServer[Request, Response any](e endpoint.Endpoint[Request, Response], options ...ServerOption) *Server[Request, Response] {
	return NewServer(e, DecodeJSONRequest[Request], EncodeJSONResponse[Response], options...)
}

// ServerOption sets an optional parameter for servers. Options are not tied
// to the request and response types, so one set can be shared by many
// servers.
type ServerOption func(*serverOptions)

// ServerBefore functions are executed on the HTTP request object before the
// request is decoded.
func ServerBefore(before ...RequestFunc) ServerOption {
	return func(s *serverOptions) { s.before = append(s.before, before...) }
}

// ServerAfter functions are executed on the HTTP response writer after the
// endpoint is invoked, but before anything is written to the client.
func ServerAfter(after ...ServerResponseFunc) ServerOption {
	return func(s *serverOptions) { s.after = append(s.after, after...) }
}

// ServerErrorEncoder is used to encode errors to the http.ResponseWriter
// whenever they're encountered in the processing of a request. Clients can
// use this to provide custom error formatting and response codes. By default,
// errors will be written with the DefaultErrorEncoder.
func ServerErrorEncoder(ee ErrorEncoder) ServerOption {
	return func(s *serverOptions) { s.errorEncoder = ee }
}

// ServerErrorHandler is used to handle non-terminal errors. By default,
// non-terminal errors are ignored. This is intended as a diagnostic measure.
// Finer-grained control of error handling, including logging in more detail,
// should be performed in a custom ServerErrorEncoder or ServerFinalizer, both
// of which have access to the context.
func ServerErrorHandler(errorHandler transport.ErrorHandler) ServerOption {
	return func(s *serverOptions) { s.errorHandler = errorHandler }
}

// ServerFinalizer adds one or more ServerFinalizerFuncs to be executed at the
// end of every HTTP request. Finalizers are executed in the order in which they
// were added. By default, no finalizer is registered.
func ServerFinalizer(f ...ServerFinalizerFunc) ServerOption {
	return func(s *serverOptions) { s.finalizer = append(s.finalizer, f...) }
}

// ErrorEncoder is responsible for encoding an error to the ResponseWriter.
// Users are encouraged to use custom ErrorEncoders to encode HTTP errors to
// their clients, and will likely want to pass and check for their own error
// types.
type ErrorEncoder func(ctx context.Context, err error, w http.ResponseWriter)

// ServeHTTP implements http.Handler.
func (s Server[Request, Response]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if len(s.finalizer) > 0 {
		iw := &interceptingWriter{ResponseWriter: w, code: http.StatusOK}
		defer func() {
			ctx = context.WithValue(ctx, ContextKeyResponseHeaders, iw.Header())
			ctx = context.WithValue(ctx, ContextKeyResponseSize, iw.written)
			for _, f := range s.finalizer {
				f(ctx, iw.code, r)
			}
		}()
		w = iw
	}

	for _, f := range s.before {
		ctx = f(ctx, r)
	}

	request, err := s.dec(ctx, r)
	if err != nil {
		s.fail(ctx, w, &Error{Kind: KindDeserialization, Err: err})
		return
	}

	response, err := s.invoke(ctx, request)
	if err != nil {
		s.fail(ctx, w, handlerError(err))
		return
	}

	for _, f := range s.after {
		ctx = f(ctx, w)
	}

	if err := s.enc(ctx, w, response); err != nil {
		s.fail(ctx, w, &Error{Kind: KindSerialization, Err: err})
		return
	}
}

// invoke calls the endpoint, turning a panic into an error so one bad
// request cannot take the process down.
func (s Server[Request, Response]) invoke(ctx context.Context, request Request) (response Response, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("panic: %v", v)
		}
	}()
	return s.e(ctx, request)
}

func (s Server[Request, Response]) fail(ctx context.Context, w http.ResponseWriter, err *Error) {
	s.errorHandler.Handle(ctx, err)
	s.errorEncoder(ctx, err, w)
}

func handlerError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Err: err}
	}
	return &Error{Kind: KindHandler, Err: err}
}
