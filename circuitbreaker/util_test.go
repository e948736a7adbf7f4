package circuitbreaker_test

import (
	"context"
	"errors"
	"testing"

	"github.com/go-kit/cmdrpc/endpoint"
	httptransport "github.com/go-kit/cmdrpc/transport/http"
)

func testFailingEndpoint(
	t *testing.T,
	breaker endpoint.Middleware[string, string],
	primeWith int,
	shouldPass func(int) bool,
	openCircuitError error,
) {
	t.Helper()

	// Create a mock endpoint and wrap it with the breaker.
	m := mock{}
	e := breaker(m.endpoint)

	// Prime the endpoint with successful requests.
	for i := 0; i < primeWith; i++ {
		if _, err := e(context.Background(), "x"); err != nil {
			t.Fatalf("during priming, got error: %v", err)
		}
	}

	// Switch the endpoint to start throwing errors.
	m.err = errors.New("tragedy+disaster")
	m.thru = 0

	// The first several should be allowed through and yield our error.
	for i := 0; shouldPass(i); i++ {
		if _, err := e(context.Background(), "x"); err != m.err {
			t.Fatalf("want %v, have %v", m.err, err)
		}
	}
	thru := m.thru

	// But the rest should be blocked by an open circuit.
	for i := 0; i < 10; i++ {
		_, err := e(context.Background(), "x")
		if !errors.Is(err, openCircuitError) {
			t.Fatalf("want %v, have %v", openCircuitError, err)
		}
		if !errors.Is(err, httptransport.KindUnavailable) {
			t.Fatalf("want %v, have %v", httptransport.KindUnavailable, err)
		}
	}

	// Make sure none of those got through.
	if want, have := thru, m.thru; want != have {
		t.Errorf("want %d, have %d", want, have)
	}
}

type mock struct {
	thru int
	err  error
}

func (m *mock) endpoint(_ context.Context, request string) (string, error) {
	m.thru++
	return request, m.err
}
