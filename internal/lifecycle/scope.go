// Package lifecycle scopes cleanups to the lifetime of an owner.
//
// A listener registered against a Disposable is removed when the Disposable
// is disposed, so UI components do not have to track their subscriptions.
package lifecycle

import (
	"sync"
)

// Disposable is an owner whose end of life triggers registered cleanups.
type Disposable interface {
	// Register schedules cleanup to run on Dispose. The returned function
	// cancels the registration without running cleanup.
	Register(cleanup func()) (deregister func())
	Dispose()
	Disposed() bool
}

type cleanupEntry struct {
	id uint64
	fn func()
}

// Scope is the default Disposable implementation.
type Scope struct {
	mu       sync.Mutex
	cleanups []cleanupEntry
	nextID   uint64
	disposed bool
}

// NewScope creates a root scope.
func NewScope() *Scope {
	return &Scope{}
}

// NewChild creates a scope disposed together with parent.
func NewChild(parent Disposable) *Scope {
	child := NewScope()
	deregister := parent.Register(child.Dispose)
	child.Register(deregister)
	return child
}

// Register implements Disposable. On an already disposed scope cleanup runs
// immediately.
func (s *Scope) Register(cleanup func()) func() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		cleanup()
		return func() {}
	}
	s.nextID++
	id := s.nextID
	s.cleanups = append(s.cleanups, cleanupEntry{id: id, fn: cleanup})
	s.mu.Unlock()

	return func() { s.deregister(id) }
}

func (s *Scope) deregister(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.cleanups {
		if c.id == id {
			s.cleanups = append(s.cleanups[:i:i], s.cleanups[i+1:]...)
			return
		}
	}
}

// Dispose runs all cleanups in reverse registration order. Later calls are no-ops.
func (s *Scope) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	cleanups := s.cleanups
	s.cleanups = nil
	s.mu.Unlock()

	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i].fn()
	}
}

// Disposed reports whether Dispose has been called.
func (s *Scope) Disposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}
