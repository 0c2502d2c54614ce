package aggregate

import (
	"sort"
	"time"

	"github.com/hydrolog/hydrolog/internal/model"
)

// GoalStreaks computes the current and best runs of consecutive
// goal-met calendar days from a set of day summaries. Input order does
// not matter and recomputation over the same history always yields the
// same result.
//
// The current streak is the run ending at the most recent goal-met day;
// a calendar day missing from the summaries (no qualifying entries)
// breaks a run the same way a missed goal does. The best streak is the
// longest such run anywhere in the history.
func GoalStreaks(summaries []model.DaySummary) model.Streaks {
	met := make([]time.Time, 0, len(summaries))
	for _, s := range summaries {
		if s.GoalMet {
			met = append(met, s.Day)
		}
	}
	if len(met) == 0 {
		return model.Streaks{}
	}
	sort.Slice(met, func(i, j int) bool { return met[i].Before(met[j]) })

	streaks := model.Streaks{}
	run := 1
	for i := 1; i < len(met); i++ {
		if met[i].Equal(met[i-1].AddDate(0, 0, 1)) {
			run++
			continue
		}
		if run > streaks.Best {
			streaks.Best = run
		}
		run = 1
	}
	if run > streaks.Best {
		streaks.Best = run
	}

	// The final run ends at the most recent goal-met day.
	streaks.Current = run
	return streaks
}
