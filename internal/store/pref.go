package store

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/hydrolog/hydrolog/internal/kv"
)

// PreferenceStore is the scalar-setting variant: one value under one key
// in an injected key-value store, with a compile-time-known default.
//
// Fetch never fails: an absent key, a backend read error or an undecodable
// stored value all resolve to the default. Set and Reset keep the entity
// store's single-writer and fan-out discipline.
type PreferenceStore[T any] struct {
	backend kv.Store
	key     string
	def     T
	log     *logrus.Entry

	mu     sync.Mutex
	loaded bool
	value  T
	fan    fanout[T]
}

// NewPreferenceStore creates a preference store for key with the given
// default.
func NewPreferenceStore[T any](backend kv.Store, key string, def T, log *logrus.Logger) *PreferenceStore[T] {
	return &PreferenceStore[T]{
		backend: backend,
		key:     key,
		def:     def,
		log:     log.WithField("preference", key),
	}
}

func (s *PreferenceStore[T]) loadLocked() {
	if s.loaded {
		return
	}
	s.loaded = true
	s.value = s.def

	data, ok, err := s.backend.Get(s.key)
	if err != nil {
		s.log.WithError(err).Warn("preference read failed, using default")
		return
	}
	if !ok {
		return
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		s.log.WithError(err).Warn("stored preference is corrupt, using default")
		return
	}
	s.value = v
}

// Fetch returns the current value, or the default when nothing usable is
// stored.
func (s *PreferenceStore[T]) Fetch() T {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loadLocked()
	return s.value
}

// Observe registers a new subscription, seeded with the current value.
func (s *PreferenceStore[T]) Observe() (<-chan T, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loadLocked()
	ch, cancel := s.fan.subscribe(s.value)
	return ch, cancel
}

// Set overwrites the value wholesale, persists it, and publishes. Like
// the entity store's Upsert, setting always counts as a mutation.
func (s *PreferenceStore[T]) Set(v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loadLocked()
	s.value = v

	data, err := json.Marshal(v)
	if err == nil {
		err = s.backend.Set(s.key, data)
	}
	if err != nil {
		s.log.WithError(err).Error("persist failed after set")
	}
	s.fan.publish(s.value)
	return err
}

// Reset clears the stored value and publishes the default.
func (s *PreferenceStore[T]) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loadLocked()
	s.value = s.def

	err := s.backend.Delete(s.key)
	if err != nil {
		s.log.WithError(err).Error("persist failed after reset")
	}
	s.fan.publish(s.value)
	return err
}
