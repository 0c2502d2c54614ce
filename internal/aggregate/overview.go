package aggregate

import (
	"time"

	"github.com/hydrolog/hydrolog/internal/model"
)

// Overview is the read-only dashboard projection: the complete current
// state of the tracker in one value. Computing it has no side effects.
type Overview struct {
	GeneratedAt time.Time `json:"generatedAt"`

	// Today
	Today    model.DaySummary `json:"today"`
	Progress model.Progress   `json:"progress"`
	GoalSet  bool             `json:"goalSet"`

	// History
	TrackedDays   int           `json:"trackedDays"`
	GoalMetDays   int           `json:"goalMetDays"`
	Streaks       model.Streaks `json:"streaks"`
	WeekDailyAvg  int           `json:"weekDailyAverage"`  // ml/day over last 7 days
	MonthDailyAvg int           `json:"monthDailyAverage"` // ml/day over last 30 days
	AllTimeTotal  int           `json:"allTimeTotalMilliliters"`
	PendingSync   int           `json:"pendingSync"`
}

// ComputeOverview projects the full entry history, the goal and the sync
// backlog into an Overview. All inputs are taken as already fetched;
// callers that need today's data consistent with history should hand in
// one snapshot of each.
func ComputeOverview(entries []model.Entry, goal *model.Goal, pendingSync int, now time.Time, loc *time.Location) Overview {
	o := Overview{
		GeneratedAt: now,
		GoalSet:     goal != nil,
		PendingSync: pendingSync,
	}

	summaries := DaySummaries(entries, goal, HistoryLadder, loc)
	o.TrackedDays = len(summaries)
	for _, s := range summaries {
		o.AllTimeTotal += s.TotalMilliliters
		if s.GoalMet {
			o.GoalMetDays++
		}
	}
	o.Streaks = GoalStreaks(summaries)

	today := dayStart(now, loc)
	var todayEntries []model.Entry
	for _, e := range entries {
		if dayStart(e.ConsumedAt, loc).Equal(today) {
			todayEntries = append(todayEntries, e)
		}
	}
	o.Today = SummarizeDay(today, todayEntries, goal, TodayLadder)

	target := 0
	if goal != nil {
		target = goal.DailyTargetMilliliters
	}
	o.Progress = GoalProgress(o.Today.TotalMilliliters, target)

	o.WeekDailyAvg = dailyAverage(summaries, today, 7)
	o.MonthDailyAvg = dailyAverage(summaries, today, 30)
	return o
}

// dailyAverage averages total intake per calendar day over the last n
// days ending today, counting untracked days as zero.
func dailyAverage(summaries []model.DaySummary, today time.Time, n int) int {
	if n <= 0 {
		return 0
	}
	cutoff := today.AddDate(0, 0, -(n - 1))
	total := 0
	for _, s := range summaries {
		if !s.Day.Before(cutoff) && !s.Day.After(today) {
			total += s.TotalMilliliters
		}
	}
	return total / n
}
