// Package model defines the core domain models for hydrolog.
package model

import (
	"time"
)

// EntrySource records how an entry was created.
type EntrySource string

const (
	SourceQuickAdd     EntrySource = "quick_add"
	SourceCustomAmount EntrySource = "custom_amount"
	SourceEdited       EntrySource = "edited"
)

// Sources lists every entry source in display order.
var Sources = []EntrySource{SourceQuickAdd, SourceCustomAmount, SourceEdited}

// Valid reports whether s is a known entry source.
func (s EntrySource) Valid() bool {
	switch s {
	case SourceQuickAdd, SourceCustomAmount, SourceEdited:
		return true
	}
	return false
}

// Entry represents a single logged drink.
// Amount is in milliliters and must be positive; callers validate before
// the entry reaches a store.
type Entry struct {
	ID                string      `json:"id"`
	AmountMilliliters int         `json:"amountMilliliters"`
	ConsumedAt        time.Time   `json:"consumedAt"`
	Source            EntrySource `json:"source"`
}

// EntityID returns the entry's identity for store keying.
func (e Entry) EntityID() string { return e.ID }

// Goal represents the active daily intake target.
// At most one goal is active at a time; the goal store holds it as a
// present/absent value, not a nil pointer.
type Goal struct {
	ID                     string    `json:"id"`
	DailyTargetMilliliters int       `json:"dailyTargetMilliliters"`
	UpdatedAt              time.Time `json:"updatedAt"`
}

// SyncRecord links a local entry to a record in an external health store.
type SyncRecord struct {
	ID                 string    `json:"id"`
	EntryID            string    `json:"entryID"`
	ProviderIdentifier string    `json:"providerIdentifier"`
	ExternalIdentifier string    `json:"externalIdentifier"`
	SyncedAt           time.Time `json:"syncedAt"`
}

// EntityID returns the record's identity for store keying.
func (r SyncRecord) EntityID() string { return r.ID }

// Unit is the display unit preference.
type Unit string

const (
	UnitMilliliters Unit = "ml"
	UnitFluidOunces Unit = "fl_oz"
)

// DateRange selects how far back history queries reach.
type DateRange string

const (
	RangeWeek    DateRange = "7d"
	RangeMonth   DateRange = "30d"
	RangeQuarter DateRange = "90d"
	RangeAll     DateRange = "all"
)

// Days returns the number of calendar days the range covers, and whether
// the range is bounded at all.
func (r DateRange) Days() (int, bool) {
	switch r {
	case RangeWeek:
		return 7, true
	case RangeMonth:
		return 30, true
	case RangeQuarter:
		return 90, true
	}
	return 0, false
}

// FilterPreferences controls which entries history views include.
// Source toggles apply first, then the date range.
type FilterPreferences struct {
	IncludeQuickAdd     bool      `json:"includeQuickAdd"`
	IncludeCustomAmount bool      `json:"includeCustomAmount"`
	IncludeEdited       bool      `json:"includeEdited"`
	Range               DateRange `json:"range"`
}

// Preference defaults used when nothing is stored.
const (
	DefaultUnit               = UnitMilliliters
	DefaultSipMilliliters     = 250
	DefaultDailyTargetMinimum = 1
)

// DefaultFilterPreferences returns the filter state used when the user has
// never changed it: all sources included, all-time range.
func DefaultFilterPreferences() FilterPreferences {
	return FilterPreferences{
		IncludeQuickAdd:     true,
		IncludeCustomAmount: true,
		IncludeEdited:       true,
		Range:               RangeAll,
	}
}

// IntakeBucket is one fixed-width time slice of a day's intake histogram.
// Index counts bucket widths from the first entry of the period.
type IntakeBucket struct {
	Index             int       `json:"index"`
	StartsAt          time.Time `json:"startsAt"`
	AmountMilliliters int       `json:"amountMilliliters"`
}

// DaySummary is the derived per-day projection. It is recomputed from
// scratch on every upstream change and never persisted.
type DaySummary struct {
	Day              time.Time      `json:"day"` // midnight in the caller's location
	TotalMilliliters int            `json:"totalMilliliters"`
	EntryCount       int            `json:"entryCount"`
	FirstAt          time.Time      `json:"firstAt"`
	LastAt           time.Time      `json:"lastAt"`
	AveragePerEntry  int            `json:"averagePerEntry"`
	AveragePerHour   int            `json:"averagePerHour"`
	GoalMilliliters  int            `json:"goalMilliliters,omitempty"` // 0 when no goal
	GoalMet          bool           `json:"goalMet"`
	Buckets          []IntakeBucket `json:"buckets,omitempty"`
	PeakBucket       *IntakeBucket  `json:"peakBucket,omitempty"`
}

// Progress is the goal-progress state for a single day.
type Progress struct {
	ConsumedMilliliters  int     `json:"consumedMilliliters"`
	TargetMilliliters    int     `json:"targetMilliliters"`
	RemainingMilliliters int     `json:"remainingMilliliters"`
	Fraction             float64 `json:"fraction"` // clamped to [0, 1]
}

// Streaks holds the consecutive goal-met day counts.
type Streaks struct {
	Current int `json:"current"`
	Best    int `json:"best"`
}
