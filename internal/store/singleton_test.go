package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hydrolog/hydrolog/internal/model"
)

func newTestGoalStore(t *testing.T) (*SingletonStore[model.Goal], string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "goal.json")
	return NewSingletonStore[model.Goal](path, testLogger()), path
}

func TestSingletonStore_AbsentByDefault(t *testing.T) {
	s, _ := newTestGoalStore(t)

	got, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got.Present {
		t.Fatalf("expected absent value, got %+v", got.Value)
	}
}

func TestSingletonStore_SetFetchClear(t *testing.T) {
	s, path := newTestGoalStore(t)
	ctx := context.Background()
	goal := model.Goal{ID: "g", DailyTargetMilliliters: 2000, UpdatedAt: time.Now().UTC()}

	if err := s.Set(ctx, goal); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := s.Fetch(ctx)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !got.Present || got.Value.DailyTargetMilliliters != 2000 {
		t.Fatalf("unexpected fetched value: %+v", got)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected backing file removed after clear, stat err = %v", err)
	}
	got, _ = s.Fetch(ctx)
	if got.Present {
		t.Fatalf("expected absent after clear, got %+v", got.Value)
	}
}

func TestSingletonStore_ClearWhenAbsentDoesNotPublish(t *testing.T) {
	s, _ := newTestGoalStore(t)
	ctx := context.Background()

	values, cancel, err := s.Observe(ctx)
	if err != nil {
		t.Fatalf("observe: %v", err)
	}
	defer cancel()

	seed := <-values
	if seed.Present {
		t.Fatalf("expected absent seed, got %+v", seed.Value)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear on absent: %v", err)
	}
	select {
	case v := <-values:
		t.Fatalf("no-op clear published a value: %+v", v)
	default:
	}
}

func TestSingletonStore_ObservePublishesOnSet(t *testing.T) {
	s, _ := newTestGoalStore(t)
	ctx := context.Background()

	values, cancel, err := s.Observe(ctx)
	if err != nil {
		t.Fatalf("observe: %v", err)
	}
	defer cancel()
	<-values // absent seed

	goal := model.Goal{ID: "g", DailyTargetMilliliters: 1800, UpdatedAt: time.Now().UTC()}
	if err := s.Set(ctx, goal); err != nil {
		t.Fatalf("set: %v", err)
	}
	got := <-values
	if !got.Present || got.Value.DailyTargetMilliliters != 1800 {
		t.Fatalf("unexpected published value: %+v", got)
	}
}

func TestSingletonStore_PersistFailureKeepsValueAndPublishes(t *testing.T) {
	s, path := newTestGoalStore(t)
	ctx := context.Background()

	values, cancel, err := s.Observe(ctx)
	if err != nil {
		t.Fatalf("observe: %v", err)
	}
	defer cancel()
	<-values // absent seed

	// A directory squatting on the temp path makes the write fail.
	if err := os.Mkdir(path+".tmp", 0755); err != nil {
		t.Fatalf("block temp path: %v", err)
	}

	goal := model.Goal{ID: "g", DailyTargetMilliliters: 2000, UpdatedAt: time.Now().UTC()}
	if err := s.Set(ctx, goal); err == nil {
		t.Fatal("expected persist error")
	}

	// The value is kept in memory and still published.
	got, err := s.Fetch(ctx)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !got.Present || got.Value != goal {
		t.Fatalf("expected value kept in memory, got %+v", got)
	}
	if published := <-values; !published.Present || published.Value != goal {
		t.Fatalf("expected published value, got %+v", published)
	}
}

func TestSingletonStore_PersistsAcrossInstances(t *testing.T) {
	s, path := newTestGoalStore(t)
	ctx := context.Background()
	goal := model.Goal{ID: "g", DailyTargetMilliliters: 2500, UpdatedAt: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)}
	if err := s.Set(ctx, goal); err != nil {
		t.Fatalf("set: %v", err)
	}

	reopened := NewSingletonStore[model.Goal](path, testLogger())
	got, err := reopened.Fetch(ctx)
	if err != nil {
		t.Fatalf("fetch on reopened store: %v", err)
	}
	if !got.Present || got.Value != goal {
		t.Fatalf("unexpected reloaded value: %+v", got)
	}
}
