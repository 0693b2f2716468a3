// Package store provides the in-memory record stores backing each
// service. Records live for the lifetime of the process; there is no
// persistence and no sharing across services.
package store

import "sync"

// Store maps an id to a record of type T. All methods are safe for
// concurrent use; each store is guarded by a single lock.
type Store[T any] struct {
	mu    sync.RWMutex
	items map[string]T
}

func New[T any]() *Store[T] {
	return &Store[T]{items: make(map[string]T)}
}

func (s *Store[T]) Put(id string, v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id] = v
}

func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[id]
	return v, ok
}

// Update applies fn to the stored record under the lock, so a
// read-modify-write (such as an order status transition) cannot
// interleave with a concurrent writer. It reports whether id existed.
func (s *Store[T]) Update(id string, fn func(T) T) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[id]
	if !ok {
		var zero T
		return zero, false
	}
	v = fn(v)
	s.items[id] = v
	return v, true
}

func (s *Store[T]) List() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, 0, len(s.items))
	for _, v := range s.items {
		out = append(out, v)
	}
	return out
}

func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
