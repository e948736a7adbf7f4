// Package circuitbreaker implements the circuit breaker pattern for client
// command endpoints.
//
// Circuit breakers prevent thundering herds, and improve resiliency against
// intermittent errors. A breaker never retries: a rejected call fails fast
// with the breaker's own error, and the caller decides what to do next.
package circuitbreaker
