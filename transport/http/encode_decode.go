package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
)

// ContentType is the media type of every request and response body.
const ContentType = "application/json; charset=utf-8"

var (
	errTrailingData = errors.New("unexpected data after request value")
	errNullRequest  = errors.New("null is not a valid request value")
)

// maxBodyBytes bounds the request and error bodies read off the wire.
const maxBodyBytes = 4 << 20

// DecodeRequestFunc extracts a user-domain request object from an HTTP
// request object. It's designed to be used in HTTP servers, for server-side
// endpoints. One straightforward DecodeRequestFunc could be something that
// JSON decodes from the request body to the concrete request type.
type DecodeRequestFunc[Request any] func(context.Context, *http.Request) (request Request, err error)

// EncodeRequestFunc encodes the passed request object into the HTTP request
// object. It's designed to be used in HTTP clients, for client-side
// endpoints. One straightforward EncodeRequestFunc could be something that JSON
// encodes the object directly to the request body.
type EncodeRequestFunc[Request any] func(context.Context, *http.Request, Request) error

// EncodeResponseFunc encodes the passed response object to the HTTP response
// writer. It's designed to be used in HTTP servers, for server-side
// endpoints. One straightforward EncodeResponseFunc could be something that
// JSON encodes the object directly to the response body.
type EncodeResponseFunc[Response any] func(context.Context, http.ResponseWriter, Response) error

// DecodeResponseFunc extracts a user-domain response object from an HTTP
// response object. It's designed to be used in HTTP clients, for client-side
// endpoints. One straightforward DecodeResponseFunc could be something that
// JSON decodes from the response body to the concrete response type.
type DecodeResponseFunc[Response any] func(context.Context, *http.Response) (response Response, err error)

// EncodeJSONRequest is an EncodeRequestFunc that serializes the request as a
// JSON object to the Request body.
func EncodeJSONRequest[Request any](_ context.Context, r *http.Request, request Request) error {
	b, err := json.Marshal(request)
	if err != nil {
		return err
	}
	r.Header.Set("Content-Type", ContentType)
	r.ContentLength = int64(len(b))
	r.GetBody = func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(b)), nil }
	r.Body, _ = r.GetBody()
	return nil
}

// DecodeJSONRequest is a DecodeRequestFunc that reads the whole request body
// and JSON decodes it into a Request. The body must hold exactly one JSON
// value, and null is only accepted when Request can represent it.
func DecodeJSONRequest[Request any](_ context.Context, r *http.Request) (Request, error) {
	var request Request
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return request, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return request, errTrailingData
	}
	if bytes.Equal(raw, []byte("null")) && !nullable(reflect.TypeFor[Request]()) {
		return request, errNullRequest
	}
	err := json.Unmarshal(raw, &request)
	return request, err
}

// nullable reports whether JSON null is a meaningful value of t.
func nullable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map:
		return true
	}
	return false
}

// EncodeJSONResponse is an EncodeResponseFunc that serializes the response as
// a JSON object to the ResponseWriter. The value is marshaled before anything
// is written, so a failure leaves the writer untouched.
func EncodeJSONResponse[Response any](_ context.Context, w http.ResponseWriter, response Response) error {
	b, err := json.Marshal(response)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(b)
	return err
}

// DecodeJSONResponse is a DecodeResponseFunc that JSON decodes the response
// body into a Response.
func DecodeJSONResponse[Response any](_ context.Context, r *http.Response) (Response, error) {
	var response Response
	err := json.NewDecoder(r.Body).Decode(&response)
	return response, err
}
