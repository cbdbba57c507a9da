package services

import (
	"context"
	"sync"
	"time"
)

// listeners is a subscriber list. Callbacks run synchronously on the
// goroutine that emits, in subscription order, with no lock held.
type listeners[E any] struct {
	mu     sync.Mutex
	nextID int
	subs   []subscriber[E]
}

type subscriber[E any] struct {
	id int
	fn func(E)
}

func (l *listeners[E]) add(fn func(E)) (unsubscribe func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	id := l.nextID
	l.subs = append(l.subs, subscriber[E]{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			for i, s := range l.subs {
				if s.id == id {
					l.subs = append(l.subs[:i:i], l.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (l *listeners[E]) emit(event E) {
	l.mu.Lock()
	subs := make([]subscriber[E], len(l.subs))
	copy(subs, l.subs)
	l.mu.Unlock()

	for _, s := range subs {
		s.fn(event)
	}
}

// simulateLatency waits d or until ctx is done
func simulateLatency(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
