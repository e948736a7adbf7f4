package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// Kind classifies the phase in which a command exchange failed.
type Kind int

// The failure kinds reported by clients and servers.
const (
	// KindInvalidURL means the server address or the command name could not
	// be turned into a valid destination URL.
	KindInvalidURL Kind = iota + 1

	// KindTransport means the connection could not be established or the
	// exchange was interrupted.
	KindTransport

	// KindSerialization means a value could not be encoded to the wire.
	KindSerialization

	// KindDeserialization means a body did not match the expected shape.
	KindDeserialization

	// KindHandler means the bound handler reported a failure.
	KindHandler

	// KindTimeout means the exchange exceeded the caller's bound.
	KindTimeout

	// KindNotFound means no handler is bound to the command.
	KindNotFound

	// KindUnavailable means the exchange was refused before it was sent,
	// for instance by an open circuit breaker.
	KindUnavailable
)

var kindNames = map[Kind]string{
	KindInvalidURL:      "invalid_url",
	KindTransport:       "transport",
	KindSerialization:   "serialization",
	KindDeserialization: "deserialization",
	KindHandler:         "handler",
	KindTimeout:         "timeout",
	KindNotFound:        "not_found",
	KindUnavailable:     "unavailable",
}

// String returns the wire name of the kind.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Error lets a Kind be used as the target of errors.Is.
func (k Kind) Error() string { return k.String() }

// ParseKind returns the Kind with the given wire name, or 0 if there is none.
func ParseKind(s string) Kind {
	for k, name := range kindNames {
		if name == s {
			return k
		}
	}
	return 0
}

// Error is returned by clients for every failed exchange, and built by
// servers for every failed dispatch.
type Error struct {
	// Kind is the phase in which the exchange failed.
	Kind Kind

	// Command is the command name, if known.
	Command string

	// Status is the HTTP status of the remote response, or 0 if the failure
	// happened before a response was received.
	Status int

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Command != "" {
		b.WriteString(e.Command)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the Kind of e.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// StatusCode implements StatusCoder. A status carried by the underlying error
// wins over the default for the kind.
func (e *Error) StatusCode() int {
	if e.Status != 0 {
		return e.Status
	}
	var sc StatusCoder
	if errors.As(e.Err, &sc) {
		return sc.StatusCode()
	}
	switch e.Kind {
	case KindInvalidURL, KindDeserialization:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindTimeout:
		return http.StatusGatewayTimeout
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// StatusCoder is checked by DefaultErrorEncoder. If an error value implements
// StatusCoder, the StatusCode will be used when encoding the error. By default,
// StatusInternalServerError (500) is used.
type StatusCoder interface {
	StatusCode() int
}

// Headerer is checked by DefaultErrorEncoder. If an error value implements
// Headerer, the provided headers will be applied to the response writer, after
// the Content-Type is set.
type Headerer interface {
	Headers() http.Header
}

// errorBody is the JSON envelope written for every failed dispatch.
type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// DefaultErrorEncoder writes the error to the ResponseWriter as a JSON
// envelope {"error": ..., "kind": ...}. If the error implements Headerer, the
// provided headers will be applied to the response. If the error implements
// StatusCoder, the provided StatusCode will be used instead of 500.
func DefaultErrorEncoder(_ context.Context, err error, w http.ResponseWriter) {
	body := errorBody{Error: err.Error(), Kind: KindHandler.String()}
	var e *Error
	if errors.As(err, &e) {
		body.Kind = e.Kind.String()
		if e.Err != nil {
			body.Error = e.Err.Error()
		}
	}
	w.Header().Set("Content-Type", ContentType)
	if headerer, ok := err.(Headerer); ok {
		for k, values := range headerer.Headers() {
			for _, v := range values {
				w.Header().Add(k, v)
			}
		}
	}
	code := http.StatusInternalServerError
	if sc, ok := err.(StatusCoder); ok {
		code = sc.StatusCode()
	}
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

// WriteError writes an error envelope of the given kind, for handlers that
// sit outside a Server, such as a router's not-found handler.
func WriteError(w http.ResponseWriter, kind Kind, status int, msg string) {
	DefaultErrorEncoder(context.Background(), &Error{Kind: kind, Status: status, Err: errors.New(msg)}, w)
}

// remoteError rebuilds an *Error from a non-2xx response.
func remoteError(command string, resp *http.Response, body []byte) *Error {
	e := &Error{Command: command, Status: resp.StatusCode}

	var env errorBody
	if err := json.Unmarshal(body, &env); err == nil && env.Error != "" {
		e.Kind = ParseKind(env.Kind)
		e.Err = errors.New(env.Error)
	} else {
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		e.Err = errors.New(msg)
	}

	if e.Kind == 0 {
		switch resp.StatusCode {
		case http.StatusBadRequest:
			e.Kind = KindDeserialization
		case http.StatusNotFound:
			e.Kind = KindNotFound
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			e.Kind = KindTimeout
		default:
			e.Kind = KindHandler
		}
	}
	return e
}
