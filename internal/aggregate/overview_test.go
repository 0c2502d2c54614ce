package aggregate

import (
	"testing"
	"time"

	"github.com/hydrolog/hydrolog/internal/model"
)

func TestComputeOverview(t *testing.T) {
	loc := time.UTC
	now := time.Date(2025, 6, 10, 14, 0, 0, 0, loc)
	goal := &model.Goal{ID: "g", DailyTargetMilliliters: 500}

	entries := []model.Entry{
		entry("t1", 300, now.Add(-4*time.Hour)),
		entry("t2", 300, now.Add(-1*time.Hour)),
		entry("y1", 400, now.AddDate(0, 0, -1)), // yesterday, goal missed
		entry("o1", 600, now.AddDate(0, 0, -20)),
	}

	o := ComputeOverview(entries, goal, 2, now, loc)

	if !o.GoalSet {
		t.Error("expected goal set")
	}
	if o.PendingSync != 2 {
		t.Errorf("expected 2 pending sync, got %d", o.PendingSync)
	}
	if o.TrackedDays != 3 {
		t.Errorf("expected 3 tracked days, got %d", o.TrackedDays)
	}
	if o.GoalMetDays != 2 {
		t.Errorf("expected 2 goal-met days, got %d", o.GoalMetDays)
	}
	if o.AllTimeTotal != 1600 {
		t.Errorf("expected all-time total 1600, got %d", o.AllTimeTotal)
	}

	if o.Today.TotalMilliliters != 600 || o.Today.EntryCount != 2 {
		t.Errorf("unexpected today summary: %+v", o.Today)
	}
	if o.Progress.RemainingMilliliters != 0 || o.Progress.Fraction != 1 {
		t.Errorf("unexpected progress: %+v", o.Progress)
	}

	// Yesterday missed the goal, so the current streak is today alone.
	if o.Streaks.Current != 1 {
		t.Errorf("expected current streak 1, got %d", o.Streaks.Current)
	}

	// Last 7 days hold 600 (today) + 400 (yesterday); untracked days count
	// as zero: 1000 / 7.
	if o.WeekDailyAvg != 142 {
		t.Errorf("expected week daily average 142, got %d", o.WeekDailyAvg)
	}
	// Last 30 days hold all 1600 ml: 1600 / 30.
	if o.MonthDailyAvg != 53 {
		t.Errorf("expected month daily average 53, got %d", o.MonthDailyAvg)
	}
}

func TestComputeOverview_NoGoalNoEntries(t *testing.T) {
	now := time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC)

	o := ComputeOverview(nil, nil, 0, now, time.UTC)
	if o.GoalSet || o.TrackedDays != 0 || o.AllTimeTotal != 0 {
		t.Fatalf("unexpected overview for empty state: %+v", o)
	}
	if o.Progress.Fraction != 0 {
		t.Errorf("expected zero progress without a goal, got %v", o.Progress.Fraction)
	}
	if o.Today.EntryCount != 0 {
		t.Errorf("expected empty today summary, got %+v", o.Today)
	}
}
