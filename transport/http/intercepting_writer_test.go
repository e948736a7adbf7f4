package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestInterceptingWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	iw := &interceptingWriter{ResponseWriter: rec, code: http.StatusOK}

	iw.WriteHeader(http.StatusTeapot)
	iw.Write([]byte("short and stout"))

	if want, have := http.StatusTeapot, iw.code; want != have {
		t.Errorf("want %d, have %d", want, have)
	}
	if want, have := int64(len("short and stout")), iw.written; want != have {
		t.Errorf("want %d, have %d", want, have)
	}
	if want, have := http.StatusTeapot, rec.Code; want != have {
		t.Errorf("recorder: want %d, have %d", want, have)
	}
}

func TestInterceptingWriterFlush(t *testing.T) {
	rec := httptest.NewRecorder()
	iw := &interceptingWriter{ResponseWriter: rec, code: http.StatusOK}

	if err := http.NewResponseController(iw).Flush(); err != nil {
		t.Fatalf("Flush through Unwrap: %v", err)
	}
	if !rec.Flushed {
		t.Error("underlying recorder was not flushed")
	}
}
