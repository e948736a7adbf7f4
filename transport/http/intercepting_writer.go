package http

import (
	"net/http"
)

// interceptingWriter records the status code and body size written through
// it, for server finalizers.
type interceptingWriter struct {
	http.ResponseWriter
	code    int
	written int64
}

// WriteHeader may not be explicitly called, so care must be taken to
// initialize w.code to its default value of http.StatusOK.
func (w *interceptingWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *interceptingWriter) Write(p []byte) (int, error) {
	n, err := w.ResponseWriter.Write(p)
	w.written += int64(n)
	return n, err
}

// Unwrap lets http.ResponseController reach the optional interfaces of the
// wrapped writer.
func (w *interceptingWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
