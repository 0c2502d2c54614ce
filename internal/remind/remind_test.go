package remind

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hydrolog/hydrolog/internal/model"
	"github.com/hydrolog/hydrolog/internal/store"
)

func newTestScheduler(t *testing.T, notify Notifier) (*Scheduler, *store.EntityStore[model.Entry], *store.SingletonStore[model.Goal]) {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	dir := t.TempDir()
	entries := store.NewEntityStore(filepath.Join(dir, "entries.json"),
		func(a, b model.Entry) bool { return a.ID < b.ID }, log)
	goal := store.NewSingletonStore[model.Goal](filepath.Join(dir, "goal.json"), log)

	fixed := func() time.Time { return time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC) }
	return NewScheduler(entries, goal, notify, time.UTC, fixed, log), entries, goal
}

func TestTick_NotifiesWhileGoalUnmet(t *testing.T) {
	var got []model.Progress
	notify := NotifierFunc(func(p model.Progress) error {
		got = append(got, p)
		return nil
	})
	s, entries, goal := newTestScheduler(t, notify)
	ctx := context.Background()

	if err := goal.Set(ctx, model.Goal{ID: "g", DailyTargetMilliliters: 2000}); err != nil {
		t.Fatalf("set goal: %v", err)
	}
	err := entries.Upsert(ctx, model.Entry{
		ID:                "a",
		AmountMilliliters: 500,
		ConsumedAt:        time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC),
		Source:            model.SourceQuickAdd,
	})
	if err != nil {
		t.Fatalf("upsert entry: %v", err)
	}

	s.Tick()
	if len(got) != 1 {
		t.Fatalf("expected one reminder, got %d", len(got))
	}
	if got[0].RemainingMilliliters != 1500 {
		t.Errorf("expected 1500 ml remaining, got %d", got[0].RemainingMilliliters)
	}
}

func TestTick_SilentWhenGoalMet(t *testing.T) {
	fired := false
	notify := NotifierFunc(func(model.Progress) error {
		fired = true
		return nil
	})
	s, entries, goal := newTestScheduler(t, notify)
	ctx := context.Background()

	if err := goal.Set(ctx, model.Goal{ID: "g", DailyTargetMilliliters: 500}); err != nil {
		t.Fatalf("set goal: %v", err)
	}
	err := entries.Upsert(ctx, model.Entry{
		ID:                "a",
		AmountMilliliters: 600,
		ConsumedAt:        time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC),
		Source:            model.SourceQuickAdd,
	})
	if err != nil {
		t.Fatalf("upsert entry: %v", err)
	}

	s.Tick()
	if fired {
		t.Fatal("expected no reminder once the goal is met")
	}
}

func TestTick_SilentWithoutGoal(t *testing.T) {
	fired := false
	s, _, _ := newTestScheduler(t, NotifierFunc(func(model.Progress) error {
		fired = true
		return nil
	}))

	s.Tick()
	if fired {
		t.Fatal("expected no reminder without a goal")
	}
}

func TestTick_IgnoresOtherDays(t *testing.T) {
	var got []model.Progress
	s, entries, goal := newTestScheduler(t, NotifierFunc(func(p model.Progress) error {
		got = append(got, p)
		return nil
	}))
	ctx := context.Background()

	if err := goal.Set(ctx, model.Goal{ID: "g", DailyTargetMilliliters: 1000}); err != nil {
		t.Fatalf("set goal: %v", err)
	}
	// Yesterday's intake does not count toward today's reminder.
	err := entries.Upsert(ctx, model.Entry{
		ID:                "y",
		AmountMilliliters: 5000,
		ConsumedAt:        time.Date(2025, 6, 9, 9, 0, 0, 0, time.UTC),
		Source:            model.SourceQuickAdd,
	})
	if err != nil {
		t.Fatalf("upsert entry: %v", err)
	}

	s.Tick()
	if len(got) != 1 {
		t.Fatalf("expected one reminder, got %d", len(got))
	}
	if got[0].ConsumedMilliliters != 0 {
		t.Errorf("expected 0 ml consumed today, got %d", got[0].ConsumedMilliliters)
	}
}

func TestStart_RejectsBadSchedule(t *testing.T) {
	s, _, _ := newTestScheduler(t, NotifierFunc(func(model.Progress) error { return nil }))

	if err := s.Start("not a schedule"); err == nil {
		t.Fatal("expected error for invalid schedule")
	}

	if err := s.Start("@hourly"); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()
	if err := s.Start("@hourly"); err == nil {
		t.Fatal("expected error on double start")
	}
}
