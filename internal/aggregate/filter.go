package aggregate

import (
	"time"

	"github.com/hydrolog/hydrolog/internal/model"
)

// Filter applies the history filter preferences to a raw entry
// collection: source-type inclusion first, then date-range inclusion.
// Both are pure predicates evaluated before any grouping, so a day whose
// entries are all filtered out simply does not exist downstream.
//
// The date range is measured against the start of "today" in loc:
// an N-day range keeps entries with ConsumedAt >= todayStart-(N-1) days.
func Filter(entries []model.Entry, prefs model.FilterPreferences, now time.Time, loc *time.Location) []model.Entry {
	var cutoff time.Time
	days, bounded := prefs.Range.Days()
	if bounded {
		cutoff = dayStart(now, loc).AddDate(0, 0, -(days - 1))
	}

	out := make([]model.Entry, 0, len(entries))
	for _, e := range entries {
		if !includeSource(prefs, e.Source) {
			continue
		}
		if bounded && e.ConsumedAt.Before(cutoff) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func includeSource(prefs model.FilterPreferences, src model.EntrySource) bool {
	switch src {
	case model.SourceQuickAdd:
		return prefs.IncludeQuickAdd
	case model.SourceCustomAmount:
		return prefs.IncludeCustomAmount
	case model.SourceEdited:
		return prefs.IncludeEdited
	}
	return false
}

// dayStart returns midnight of t's calendar day in loc.
func dayStart(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
