package aggregate

import (
	"testing"
	"time"

	"github.com/hydrolog/hydrolog/internal/model"
)

func metDay(day time.Time, met bool) model.DaySummary {
	return model.DaySummary{Day: day, GoalMet: met}
}

func TestGoalStreaks_ConsecutiveRun(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	summaries := []model.DaySummary{
		metDay(base, true),
		metDay(base.AddDate(0, 0, 1), true),
		metDay(base.AddDate(0, 0, 2), true),
	}

	s := GoalStreaks(summaries)
	if s.Current != 3 || s.Best != 3 {
		t.Fatalf("expected current=3 best=3, got %+v", s)
	}
}

func TestGoalStreaks_MissedDayBreaksRun(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	summaries := []model.DaySummary{
		metDay(base, true),
		metDay(base.AddDate(0, 0, 1), true),
		metDay(base.AddDate(0, 0, 2), false), // goal missed
		metDay(base.AddDate(0, 0, 3), true),
	}

	s := GoalStreaks(summaries)
	if s.Current != 1 {
		t.Errorf("expected current streak 1 after a break, got %d", s.Current)
	}
	if s.Best != 2 {
		t.Errorf("expected best streak 2, got %d", s.Best)
	}
}

func TestGoalStreaks_AbsentDayBreaksRun(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	// No summary at all for base+1: an untracked day breaks the run the
	// same way a missed goal does.
	summaries := []model.DaySummary{
		metDay(base, true),
		metDay(base.AddDate(0, 0, 2), true),
		metDay(base.AddDate(0, 0, 3), true),
	}

	s := GoalStreaks(summaries)
	if s.Current != 2 || s.Best != 2 {
		t.Fatalf("expected current=2 best=2, got %+v", s)
	}
}

func TestGoalStreaks_OrderIndependent(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	summaries := []model.DaySummary{
		metDay(base.AddDate(0, 0, 2), true),
		metDay(base, true),
		metDay(base.AddDate(0, 0, 1), true),
	}

	s := GoalStreaks(summaries)
	if s.Current != 3 || s.Best != 3 {
		t.Fatalf("expected order-independent current=3 best=3, got %+v", s)
	}
}

func TestGoalStreaks_NoMetDays(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	summaries := []model.DaySummary{
		metDay(base, false),
		metDay(base.AddDate(0, 0, 1), false),
	}

	if s := GoalStreaks(summaries); s.Current != 0 || s.Best != 0 {
		t.Fatalf("expected zero streaks, got %+v", s)
	}
	if s := GoalStreaks(nil); s.Current != 0 || s.Best != 0 {
		t.Fatalf("expected zero streaks on empty input, got %+v", s)
	}
}
