// Package observable provides a single-value holder that notifies listeners
// when its value actually changes.
package observable

import (
	"sync"
)

// Change describes one value transition.
type Change[T any] struct {
	Old T
	New T

	// ChangeID tags the mutation so that the originator can recognize the echo
	// of its own write. Empty for untagged writes.
	ChangeID string
}

// Listener receives value changes.
type Listener[T any] func(Change[T])

// Subscription is a registered listener.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// NewSubscription wraps cancel. cancel runs at most once.
func NewSubscription(cancel func()) *Subscription {
	return &Subscription{cancel: cancel}
}

// Unsubscribe removes the listener. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.cancel == nil {
		return
	}
	s.once.Do(s.cancel)
}

type listenerEntry[T any] struct {
	id uint64
	fn Listener[T]
}

// Value holds a value of type T.
type Value[T any] struct {
	mu        sync.RWMutex
	value     T
	equal     func(a, b T) bool
	listeners []listenerEntry[T]
	nextID    uint64
}

// NewValue creates a value holder. equal decides whether a write is a change.
func NewValue[T any](initial T, equal func(a, b T) bool) *Value[T] {
	return &Value[T]{
		value: initial,
		equal: equal,
	}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.value
}

// Set stores a new value.
func (v *Value[T]) Set(value T) {
	v.SetWithChangeID(value, "")
}

// SetWithChangeID stores a new value and tags the resulting change. Listeners
// are not called when the value is equal to the current one.
func (v *Value[T]) SetWithChangeID(value T, changeID string) {
	v.mu.Lock()
	old := v.value
	if v.equal(old, value) {
		v.mu.Unlock()
		return
	}
	v.value = value
	listeners := v.listeners
	v.mu.Unlock()

	change := Change[T]{Old: old, New: value, ChangeID: changeID}
	for _, l := range listeners {
		l.fn(change)
	}
}

// AddListener registers fn. Listeners run synchronously on the writing
// goroutine, in registration order.
func (v *Value[T]) AddListener(fn Listener[T]) *Subscription {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.nextID++
	id := v.nextID
	// Copy on write: Set iterates over the slice it captured.
	next := make([]listenerEntry[T], len(v.listeners), len(v.listeners)+1)
	copy(next, v.listeners)
	v.listeners = append(next, listenerEntry[T]{id: id, fn: fn})

	return &Subscription{cancel: func() { v.removeListener(id) }}
}

// AddEchoFilteredListener registers fn but skips changes tagged with ownID.
func (v *Value[T]) AddEchoFilteredListener(ownID string, fn Listener[T]) *Subscription {
	return v.AddListener(func(c Change[T]) {
		if ownID != "" && c.ChangeID == ownID {
			return
		}
		fn(c)
	})
}

func (v *Value[T]) removeListener(id uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	next := make([]listenerEntry[T], 0, len(v.listeners))
	for _, l := range v.listeners {
		if l.id != id {
			next = append(next, l)
		}
	}
	v.listeners = next
}

// ListenerCount returns the number of registered listeners.
func (v *Value[T]) ListenerCount() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.listeners)
}
