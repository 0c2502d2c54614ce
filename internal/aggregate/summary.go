package aggregate

import (
	"sort"
	"time"

	"github.com/hydrolog/hydrolog/internal/model"
)

// DaySummaries groups entries by calendar day in loc and projects each
// day into a DaySummary, newest day first. goal may be nil (no goal set);
// when present it fills the goal target and goal-met flag of every day.
// Buckets are computed per day with the given ladder.
//
// Days with no entries are absent from the result, not present with a
// zero total. An empty collection yields an empty result.
func DaySummaries(entries []model.Entry, goal *model.Goal, ladder BucketLadder, loc *time.Location) []model.DaySummary {
	if len(entries) == 0 {
		return nil
	}

	byDay := make(map[time.Time][]model.Entry)
	for _, e := range entries {
		byDay[dayStart(e.ConsumedAt, loc)] = append(byDay[dayStart(e.ConsumedAt, loc)], e)
	}

	days := make([]time.Time, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	summaries := make([]model.DaySummary, 0, len(days))
	for _, day := range days {
		summaries = append(summaries, summarizeDay(day, byDay[day], goal, ladder))
	}
	return summaries
}

// SummarizeDay projects one day's entries. Exported for the Today view,
// which already holds a single day's worth of entries.
func SummarizeDay(day time.Time, entries []model.Entry, goal *model.Goal, ladder BucketLadder) model.DaySummary {
	return summarizeDay(day, entries, goal, ladder)
}

func summarizeDay(day time.Time, entries []model.Entry, goal *model.Goal, ladder BucketLadder) model.DaySummary {
	s := model.DaySummary{Day: day}
	if len(entries) == 0 {
		return s
	}

	s.EntryCount = len(entries)
	s.FirstAt, s.LastAt = entries[0].ConsumedAt, entries[0].ConsumedAt
	for _, e := range entries {
		s.TotalMilliliters += e.AmountMilliliters
		if e.ConsumedAt.Before(s.FirstAt) {
			s.FirstAt = e.ConsumedAt
		}
		if e.ConsumedAt.After(s.LastAt) {
			s.LastAt = e.ConsumedAt
		}
	}

	s.AveragePerEntry = s.TotalMilliliters / s.EntryCount
	s.AveragePerHour = s.TotalMilliliters / spanHours(s.FirstAt, s.LastAt)

	if goal != nil {
		s.GoalMilliliters = goal.DailyTargetMilliliters
		s.GoalMet = s.TotalMilliliters >= goal.DailyTargetMilliliters
	}

	s.Buckets = Buckets(entries, ladder)
	s.PeakBucket = PeakBucket(s.Buckets)
	return s
}

// spanHours is the day's active span in whole hours, rounded up and
// never below one, so a single-entry day averages over one hour.
func spanHours(first, last time.Time) int {
	seconds := int(last.Sub(first) / time.Second)
	hours := (seconds + 3599) / 3600
	if hours < 1 {
		return 1
	}
	return hours
}
