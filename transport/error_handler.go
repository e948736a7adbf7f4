package transport

import (
	"context"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/go-kit/cmdrpc/endpoint"
)

// ErrorHandler receives a transport error to be processed for diagnostic purposes.
// Usually this means logging the error.
type ErrorHandler interface {
	Handle(ctx context.Context, err error)
}

// LogErrorHandler is a transport error handler implementation which logs an error.
type LogErrorHandler struct {
	logger log.Logger
}

// NewLogErrorHandler returns an ErrorHandler that logs every error at error
// level, tagged with the command name when the context carries one.
func NewLogErrorHandler(logger log.Logger) *LogErrorHandler {
	return &LogErrorHandler{
		logger: logger,
	}
}

// Handle implements ErrorHandler.
func (h *LogErrorHandler) Handle(ctx context.Context, err error) {
	logger := h.logger
	if name := endpoint.NameFromContext(ctx); name != "" {
		logger = log.With(logger, "command", name)
	}
	level.Error(logger).Log("err", err)
}

// The ErrorHandlerFunc type is an adapter to allow the use of
// ordinary function as ErrorHandler. If f is a function
// with the appropriate signature, ErrorHandlerFunc(f) is a
// ErrorHandler that calls f.
type ErrorHandlerFunc func(ctx context.Context, err error)

// Handle calls f(ctx, err).
func (f ErrorHandlerFunc) Handle(ctx context.Context, err error) {
	f(ctx, err)
}

// NopErrorHandler discards every error.
var NopErrorHandler ErrorHandler = ErrorHandlerFunc(func(context.Context, error) {})
