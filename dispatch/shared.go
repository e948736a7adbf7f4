package dispatch

import "sync"

// Shared is a mutex-guarded cell for server state that handlers mutate. The
// zero value holds the zero T and is ready to use.
type Shared[T any] struct {
	mu sync.Mutex
	v  T
}

// NewShared returns a cell holding v.
func NewShared[T any](v T) *Shared[T] { return &Shared[T]{v: v} }

// Load returns the current value.
func (s *Shared[T]) Load() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v
}

// Update replaces the value with f applied to it, and returns the new value.
// Concurrent updates are applied one at a time.
func (s *Shared[T]) Update(f func(T) T) T {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v = f(s.v)
	return s.v
}
