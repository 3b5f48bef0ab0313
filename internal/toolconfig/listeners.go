package toolconfig

import (
	"sync"

	"github.com/hugo-lorenzo-mato/devtools/internal/lifecycle"
	"github.com/hugo-lorenzo-mato/devtools/internal/observable"
)

// ChangeListener is called with the property whose value changed.
type ChangeListener func(p AnyProperty)

// ResetListener is called once after a bulk reset.
type ResetListener func()

type listenerList[F any] struct {
	mu      sync.Mutex
	nextID  uint64
	entries []listenerEntry[F]
}

type listenerEntry[F any] struct {
	id uint64
	fn F
}

// subscribe adds fn and ties its lifetime to parent when parent is non-nil.
func (l *listenerList[F]) subscribe(parent lifecycle.Disposable, fn F) *observable.Subscription {
	l.mu.Lock()
	l.nextID++
	id := l.nextID
	next := make([]listenerEntry[F], len(l.entries), len(l.entries)+1)
	copy(next, l.entries)
	l.entries = append(next, listenerEntry[F]{id: id, fn: fn})
	l.mu.Unlock()

	var deregister func()
	sub := observable.NewSubscription(func() {
		l.remove(id)
		if deregister != nil {
			deregister()
		}
	})
	if parent != nil {
		deregister = parent.Register(sub.Unsubscribe)
	}
	return sub
}

func (l *listenerList[F]) remove(id uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := make([]listenerEntry[F], 0, len(l.entries))
	for _, e := range l.entries {
		if e.id != id {
			next = append(next, e)
		}
	}
	l.entries = next
}

func (l *listenerList[F]) snapshot() []listenerEntry[F] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entries
}

func (l *listenerList[F]) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
