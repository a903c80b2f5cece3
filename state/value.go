// Package state holds observable values and the optimistic update helper
// used for every mutation that must be rolled back when the backend rejects it.
package state

import (
	"context"
	"sync"
)

// Value is a concurrency safe container that notifies subscribers on every Set
type Value[T any] struct {
	mu          sync.RWMutex
	v           T
	clone       func(T) T
	subscribers map[int]func(T)
	nextID      int
}

// NewValue creates a Value. clone is used to hand out copies, pass nil for plain value types.
func NewValue[T any](v T, clone func(T) T) *Value[T] {
	if clone == nil {
		clone = func(t T) T { return t }
	}
	return &Value[T]{
		v:           v,
		clone:       clone,
		subscribers: map[int]func(T){},
	}
}

func (s *Value[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clone(s.v)
}

func (s *Value[T]) Set(v T) {
	s.mu.Lock()
	s.v = v
	subscribers := make([]func(T), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subscribers = append(subscribers, fn)
	}
	current := s.clone(s.v)
	s.mu.Unlock()

	for _, fn := range subscribers {
		fn(current)
	}
}

// Update applies fn to a copy of the current value and stores the result
func (s *Value[T]) Update(fn func(T) T) {
	s.Set(fn(s.Get()))
}

func (s *Value[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// Optimistic applies a local change before commit runs and restores the
// exact previous value if commit fails.
func Optimistic[T any](ctx context.Context, v *Value[T], apply func(T) T, commit func(context.Context) error) error {
	snapshot := v.Get()
	v.Set(apply(v.Get()))

	if err := commit(ctx); err != nil {
		v.Set(snapshot)
		return err
	}
	return nil
}
