package store

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Maybe is an explicit present/absent value. The singleton store trades
// in Maybe rather than a nil pointer so absence is visible in the type.
type Maybe[T any] struct {
	Value   T
	Present bool
}

// Some wraps a present value.
func Some[T any](v T) Maybe[T] {
	return Maybe[T]{Value: v, Present: true}
}

// None is the absent value.
func None[T any]() Maybe[T] {
	return Maybe[T]{}
}

// SingletonStore is the single-value variant of EntityStore: one optional
// record backed by one JSON file, where an absent file means an absent
// value. Same single-writer and fan-out discipline.
type SingletonStore[T any] struct {
	path string
	log  *logrus.Entry

	mu     sync.Mutex
	loaded bool
	value  Maybe[T]
	fan    fanout[Maybe[T]]
}

// NewSingletonStore creates a singleton store over the JSON file at path.
func NewSingletonStore[T any](path string, log *logrus.Logger) *SingletonStore[T] {
	return &SingletonStore[T]{
		path: path,
		log:  log.WithField("store", pathField(path)),
	}
}

func (s *SingletonStore[T]) loadLocked(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var v T
	ok, err := readBlob(s.log, s.path, &v)
	if err != nil {
		return err
	}
	if ok {
		s.value = Some(v)
	}
	s.loaded = true
	return nil
}

// Fetch returns the current value, loading the backing file on first
// access. Absence is not an error.
func (s *SingletonStore[T]) Fetch(ctx context.Context) (Maybe[T], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(ctx); err != nil {
		return None[T](), err
	}
	return s.value, nil
}

// Observe registers a new subscription, seeded with the current value.
func (s *SingletonStore[T]) Observe(ctx context.Context) (<-chan Maybe[T], func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(ctx); err != nil {
		return nil, nil, err
	}
	ch, cancel := s.fan.subscribe(s.value)
	return ch, cancel, nil
}

// Set replaces the value, persists it, and publishes. Setting always
// counts as a mutation, even when the new value equals the old one.
func (s *SingletonStore[T]) Set(ctx context.Context, v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(ctx); err != nil {
		return err
	}

	s.value = Some(v)
	err := writeBlob(s.path, v)
	if err != nil {
		s.log.WithError(err).Error("persist failed after set")
	}
	s.fan.publish(s.value)
	return err
}

// Clear removes the value and deletes the backing file. Clearing an
// already-absent value is a no-op and publishes nothing.
func (s *SingletonStore[T]) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(ctx); err != nil {
		return err
	}
	if !s.value.Present {
		return nil
	}

	s.value = None[T]()
	err := removeBlob(s.path)
	if err != nil {
		s.log.WithError(err).Error("persist failed after clear")
	}
	s.fan.publish(s.value)
	return err
}
