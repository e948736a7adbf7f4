package endpoint_test

import (
	"context"
	"errors"
	"testing"

	"github.com/go-kit/cmdrpc/endpoint"
)

func TestEndpointNameMiddleware(t *testing.T) {
	ctx := context.Background()

	var name string

	ep := func(ctx context.Context, request string) (string, error) {
		name = endpoint.NameFromContext(ctx)
		return request, nil
	}

	mw := endpoint.EndpointNameMiddleware[string, string]("echo")

	if _, err := mw(ep)(ctx, "hi"); err != nil {
		t.Fatal(err)
	}

	if want, have := "echo", name; want != have {
		t.Fatalf("unexpected endpoint name, wanted %q, got %q", want, have)
	}
}

func TestNameFromContextEmpty(t *testing.T) {
	if want, have := "", endpoint.NameFromContext(context.Background()); want != have {
		t.Errorf("want %q, have %q", want, have)
	}
}

func TestNop(t *testing.T) {
	resp, err := endpoint.Nop[string, int](context.Background(), "x")
	if err != nil {
		t.Fatal(err)
	}
	if want, have := 0, resp; want != have {
		t.Errorf("want %d, have %d", want, have)
	}
}

func TestChainShortCircuit(t *testing.T) {
	errStop := errors.New("stop")
	var reached bool
	stop := func(endpoint.Endpoint[int, int]) endpoint.Endpoint[int, int] {
		return func(context.Context, int) (int, error) { return 0, errStop }
	}
	inner := func(next endpoint.Endpoint[int, int]) endpoint.Endpoint[int, int] {
		return func(ctx context.Context, n int) (int, error) {
			reached = true
			return next(ctx, n)
		}
	}
	e := endpoint.Chain(stop, inner)(func(_ context.Context, n int) (int, error) { return n, nil })
	if _, err := e(context.Background(), 1); !errors.Is(err, errStop) {
		t.Fatalf("want %v, have %v", errStop, err)
	}
	if reached {
		t.Error("inner middleware ran after outer short-circuited")
	}
}
