// Package dispatch binds named commands to typed handlers over one shared
// server state, and serves them over HTTP.
//
// A Registry is created with the state value. Register binds a Handler to a
// command name; requests to POST /<command> have their JSON body decoded into
// the handler's request type, the handler is invoked with the state and the
// decoded value, and its result is written back as JSON. Failures become JSON
// error envelopes with a matching status, and the registry keeps serving.
//
// The registry never locks the state on behalf of handlers. State that
// handlers mutate should be kept in a Shared cell or be otherwise safe for
// concurrent use.
package dispatch
