package http

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/go-kit/cmdrpc/endpoint"
)

// HTTPClient is an interface that models *http.Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client holds the base address of one server and issues typed command
// exchanges against it. It keeps no state between calls and is safe for
// concurrent use.
type Client struct {
	client    HTTPClient
	base      *url.URL
	before    []RequestFunc
	after     []ClientResponseFunc
	finalizer []ClientFinalizerFunc
	timeout   time.Duration
}

// NewClient constructs a Client for the server at serverURL, which must be an
// absolute http or https URL.
func NewClient(serverURL string, options ...ClientOption) (*Client, error) {
	base, err := ParseServerURL(serverURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		client: http.DefaultClient,
		base:   base,
	}
	for _, option := range options {
		option(c)
	}
	return c, nil
}

// ClientOption sets an optional parameter for clients.
type ClientOption func(*Client)

// SetClient sets the underlying HTTP client used for requests.
// By default, http.DefaultClient is used.
func SetClient(client HTTPClient) ClientOption {
	return func(c *Client) { c.client = client }
}

// ClientBefore adds one or more RequestFuncs to be applied to the outgoing HTTP
// request before it's invoked.
func ClientBefore(before ...RequestFunc) ClientOption {
	return func(c *Client) { c.before = append(c.before, before...) }
}

// ClientAfter adds one or more ClientResponseFuncs, which are applied to the
// incoming HTTP response prior to it being decoded. This is useful for
// obtaining anything off of the response and adding it into the context prior
// to decoding.
func ClientAfter(after ...ClientResponseFunc) ClientOption {
	return func(c *Client) { c.after = append(c.after, after...) }
}

// ClientFinalizer adds one or more ClientFinalizerFuncs to be executed at the
// end of every HTTP request. Finalizers are executed in the order in which they
// were added. By default, no finalizer is registered.
func ClientFinalizer(f ...ClientFinalizerFunc) ClientOption {
	return func(c *Client) { c.finalizer = append(c.finalizer, f...) }
}

// ClientTimeout bounds every exchange, on top of any deadline already in the
// caller's context. Zero means no bound.
func ClientTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) { c.timeout = timeout }
}

// URL returns a copy of the server's base address.
func (c *Client) URL() *url.URL {
	u := *c.base
	return &u
}

// Target returns the destination address of the command.
func (c *Client) Target(command string) (*url.URL, error) {
	return JoinCommand(c.base, command)
}

// Do performs one exchange: it encodes request as JSON, sends it with the
// given method to the command's address, and decodes the response body into
// a Response. Every failure is returned as an *Error; Do never retries.
func Do[Response, Request any](ctx context.Context, c *Client, method, command string, request Request) (response Response, err error) {
	tgt, err := c.Target(command)
	if err != nil {
		return response, err
	}

	var cancel context.CancelFunc
	if c.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	var resp *http.Response
	if len(c.finalizer) > 0 {
		defer func() {
			if resp != nil {
				ctx = context.WithValue(ctx, ContextKeyResponseHeaders, resp.Header)
				ctx = context.WithValue(ctx, ContextKeyResponseSize, resp.ContentLength)
			}
			for _, f := range c.finalizer {
				f(ctx, err)
			}
		}()
	}

	req, err := http.NewRequestWithContext(ctx, method, tgt.String(), nil)
	if err != nil {
		return response, &Error{Kind: KindTransport, Command: command, Err: err}
	}

	if err = EncodeJSONRequest(ctx, req, request); err != nil {
		return response, &Error{Kind: KindSerialization, Command: command, Err: err}
	}
	req.Header.Set("Accept", ContentType)

	for _, f := range c.before {
		ctx = f(ctx, req)
	}

	resp, err = c.client.Do(req.WithContext(ctx))
	if err != nil {
		return response, exchangeError(command, err)
	}
	defer resp.Body.Close()

	for _, f := range c.after {
		ctx = f(ctx, resp)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, rerr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if rerr != nil {
			return response, exchangeError(command, rerr)
		}
		return response, remoteError(command, resp, body)
	}

	response, err = DecodeJSONResponse[Response](ctx, resp)
	if err != nil {
		if isTimeout(err) {
			return response, &Error{Kind: KindTimeout, Command: command, Err: err}
		}
		return response, &Error{Kind: KindDeserialization, Command: command, Status: resp.StatusCode, Err: err}
	}
	return response, nil
}

// Post is Do with the POST method.
func Post[Response, Request any](ctx context.Context, c *Client, command string, request Request) (Response, error) {
	return Do[Response](ctx, c, http.MethodPost, command, request)
}

// NewEndpoint returns an endpoint that performs the command exchange with c,
// so that client-side middlewares can be composed around it.
func NewEndpoint[Request, Response any](c *Client, method, command string) endpoint.Endpoint[Request, Response] {
	return func(ctx context.Context, request Request) (Response, error) {
		return Do[Response](ctx, c, method, command, request)
	}
}

func exchangeError(command string, err error) *Error {
	if isTimeout(err) {
		return &Error{Kind: KindTimeout, Command: command, Err: err}
	}
	return &Error{Kind: KindTransport, Command: command, Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
