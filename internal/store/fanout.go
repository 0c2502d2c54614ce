// Package store implements the single-writer stores backing hydrolog's
// canonical state. Each store owns one JSON blob (or one preference key),
// serializes all access behind a mutex held for the full call, and fans
// every new snapshot out to its live observers.
package store

import (
	"sync"

	"github.com/google/uuid"
)

// fanout delivers snapshots to a set of independent subscribers.
//
// Delivery policy: each subscriber has a buffered channel of capacity one.
// Publish never blocks; if a subscriber has not consumed the previous
// snapshot it is replaced with the newest one. Subscribers therefore
// always observe the latest state next, but may miss intermediate
// snapshots. There is no replay.
type fanout[T any] struct {
	mu   sync.Mutex
	subs map[string]chan T
}

// subscribe registers a new subscriber seeded with the current snapshot.
// The returned cancel removes the subscriber and closes its channel;
// calling it more than once is safe. Cancelling one subscriber never
// affects the others.
func (f *fanout[T]) subscribe(seed T) (<-chan T, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.subs == nil {
		f.subs = make(map[string]chan T)
	}

	id := uuid.NewString()
	ch := make(chan T, 1)
	ch <- seed
	f.subs[id] = ch

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if c, ok := f.subs[id]; ok {
			delete(f.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// publish delivers snapshot to every live subscriber, fire-and-forget.
func (f *fanout[T]) publish(snapshot T) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, ch := range f.subs {
		select {
		case ch <- snapshot:
		default:
			// Subscriber is behind: drop its stale snapshot and
			// replace it with the newest one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
}

// count returns the number of live subscribers.
func (f *fanout[T]) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}
