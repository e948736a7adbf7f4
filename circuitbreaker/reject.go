package circuitbreaker

import (
	"context"

	"github.com/go-kit/cmdrpc/endpoint"
	httptransport "github.com/go-kit/cmdrpc/transport/http"
)

// rejected reports a call the breaker refused to make. It is an
// *httptransport.Error of kind KindUnavailable, or KindTimeout for breakers
// that time calls out, and unwraps to the breaker's own error.
func rejected(ctx context.Context, kind httptransport.Kind, err error) error {
	return &httptransport.Error{Kind: kind, Command: endpoint.NameFromContext(ctx), Err: err}
}
