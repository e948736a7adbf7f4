// Package zipkin traces command exchanges with Zipkin.
//
// A client wraps its command endpoint in TraceClient and adds ContextToHTTP
// to its ClientBefore functions, so the client span travels to the server in
// B3 headers. A server adds the options from ServerOptions, which join that
// trace in a server span named after the command and finish it once the
// response is written.
package zipkin
