package endpoint_test

import (
	"context"
	"fmt"

	"github.com/go-kit/cmdrpc/endpoint"
)

func ExampleChain() {
	e := endpoint.Chain(
		annotate[string, string]("first"),
		annotate[string, string]("second"),
		annotate[string, string]("third"),
	)(myEndpoint)

	if _, err := e(ctx, req); err != nil {
		panic(err)
	}

	// Output:
	// first pre
	// second pre
	// third pre
	// my endpoint!
	// third post
	// second post
	// first post
}

var (
	ctx = context.Background()
	req = "hello"
)

func annotate[Req any, Resp any](s string) endpoint.Middleware[Req, Resp] {
	return func(next endpoint.Endpoint[Req, Resp]) endpoint.Endpoint[Req, Resp] {
		return func(ctx context.Context, request Req) (Resp, error) {
			fmt.Println(s, "pre")
			defer fmt.Println(s, "post")
			return next(ctx, request)
		}
	}
}

func myEndpoint(_ context.Context, request string) (string, error) {
	fmt.Println("my endpoint!")
	return request, nil
}
