package store

import (
	"context"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// Entity is the constraint for records kept in an EntityStore.
type Entity interface {
	EntityID() string
}

// EntityStore is a single-writer cache of a keyed collection backed by one
// JSON file. The collection is loaded lazily exactly once, mutated in
// memory, persisted in full on every mutation, and fanned out to every
// live observer.
//
// Every exported method holds the store mutex for its full duration, so
// concurrent callers are queued and served strictly in submission order.
// There are no cross-store transactions: two stores are two independent
// commit points.
type EntityStore[T Entity] struct {
	path string
	less func(a, b T) bool
	log  *logrus.Entry

	mu     sync.Mutex
	loaded bool
	items  []T
	fan    fanout[[]T]
}

// NewEntityStore creates a store over the JSON file at path. less defines
// the canonical collection order, reasserted after every mutation so
// consumers never sort.
func NewEntityStore[T Entity](path string, less func(a, b T) bool, log *logrus.Logger) *EntityStore[T] {
	return &EntityStore[T]{
		path: path,
		less: less,
		log:  log.WithField("store", pathField(path)),
	}
}

// loadLocked ensures the backing file has been read into memory. It runs
// at most once per store; a corrupt file degrades to an empty collection.
func (s *EntityStore[T]) loadLocked(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var items []T
	ok, err := readBlob(s.log, s.path, &items)
	if err != nil {
		return err
	}
	if ok {
		sort.SliceStable(items, func(i, j int) bool { return s.less(items[i], items[j]) })
		s.items = items
	}
	s.loaded = true
	return nil
}

// snapshotLocked returns a copy of the collection; observers and callers
// never share the store's own slice.
func (s *EntityStore[T]) snapshotLocked() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// FetchAll returns the current in-memory collection, loading the backing
// file first if this is the first access.
func (s *EntityStore[T]) FetchAll(ctx context.Context) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(ctx); err != nil {
		return nil, err
	}
	return s.snapshotLocked(), nil
}

// Observe registers a new subscription. The channel immediately carries
// the current snapshot, then every subsequent snapshot after a mutation,
// until the returned cancel is called. Each subscription is independent;
// a slow observer never delays the store or other observers.
func (s *EntityStore[T]) Observe(ctx context.Context) (<-chan []T, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(ctx); err != nil {
		return nil, nil, err
	}
	ch, cancel := s.fan.subscribe(s.snapshotLocked())
	return ch, cancel, nil
}

// Upsert replaces the item with the same identity, or appends it.
// The collection order is reasserted, the whole collection persisted, and
// the new snapshot published. On persist failure the caller receives the
// error but the in-memory mutation is kept and still published; disk
// catches up on the next successful write.
func (s *EntityStore[T]) Upsert(ctx context.Context, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(ctx); err != nil {
		return err
	}

	replaced := false
	for i := range s.items {
		if s.items[i].EntityID() == item.EntityID() {
			s.items[i] = item
			replaced = true
			break
		}
	}
	if !replaced {
		s.items = append(s.items, item)
	}
	sort.SliceStable(s.items, func(i, j int) bool { return s.less(s.items[i], s.items[j]) })

	err := writeBlob(s.path, s.items)
	if err != nil {
		s.log.WithField("id", item.EntityID()).WithError(err).Error("persist failed after upsert")
	}
	s.fan.publish(s.snapshotLocked())
	return err
}

// Delete removes the item with the given identity. Deleting an absent id
// is a no-op: nothing is persisted and no snapshot is published.
func (s *EntityStore[T]) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(ctx); err != nil {
		return err
	}

	idx := -1
	for i := range s.items {
		if s.items[i].EntityID() == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)

	err := writeBlob(s.path, s.items)
	if err != nil {
		s.log.WithField("id", id).WithError(err).Error("persist failed after delete")
	}
	s.fan.publish(s.snapshotLocked())
	return err
}

// Observers returns the number of live subscriptions.
func (s *EntityStore[T]) Observers() int {
	return s.fan.count()
}
