// Package aggregate contains the pure projections from raw entries to
// derived view data: day summaries, intake histograms, goal progress and
// streaks. Nothing here holds state or touches storage; every function is
// re-run in full whenever an upstream snapshot changes, and an empty
// input always yields an empty result, never an error.
package aggregate

import (
	"time"

	"github.com/hydrolog/hydrolog/internal/model"
)

// BucketRung maps period spans below MaxSpan to a bucket width.
// A rung with MaxSpan zero is the fallback for any longer span.
type BucketRung struct {
	MaxSpan time.Duration
	Width   time.Duration
}

// BucketLadder picks a bucket width from the total time span of a period.
// The ladder is configuration, not policy: views choose their own.
type BucketLadder []BucketRung

// Today's intake chart uses fine buckets.
var TodayLadder = BucketLadder{
	{MaxSpan: 2 * time.Hour, Width: 5 * time.Minute},
	{MaxSpan: 6 * time.Hour, Width: 15 * time.Minute},
	{MaxSpan: 12 * time.Hour, Width: 30 * time.Minute},
	{Width: time.Hour},
}

// History day charts use coarser buckets over the same thresholds.
var HistoryLadder = BucketLadder{
	{MaxSpan: 2 * time.Hour, Width: 15 * time.Minute},
	{MaxSpan: 6 * time.Hour, Width: 30 * time.Minute},
	{MaxSpan: 12 * time.Hour, Width: time.Hour},
	{Width: 2 * time.Hour},
}

// Width returns the bucket width for a period spanning span.
func (l BucketLadder) Width(span time.Duration) time.Duration {
	for _, rung := range l {
		if rung.MaxSpan == 0 || span < rung.MaxSpan {
			return rung.Width
		}
	}
	// Empty ladder; callers always pass one of the package ladders, but
	// degrade to hourly rather than divide by zero.
	return time.Hour
}

// Buckets histograms a period of entries into fixed-width time slices.
// Bucket widths are chosen per call from the period's span, so the same
// entries can bucket differently as the day grows. Entries need not be
// sorted. An empty period yields no buckets.
//
// Bucket index = floor(secondsSinceFirstEntry / width); only non-empty
// buckets appear, in ascending index order. The summed bucket amounts
// always equal the period total.
func Buckets(entries []model.Entry, ladder BucketLadder) []model.IntakeBucket {
	if len(entries) == 0 {
		return nil
	}

	first, last := entries[0].ConsumedAt, entries[0].ConsumedAt
	for _, e := range entries[1:] {
		if e.ConsumedAt.Before(first) {
			first = e.ConsumedAt
		}
		if e.ConsumedAt.After(last) {
			last = e.ConsumedAt
		}
	}

	width := ladder.Width(last.Sub(first))
	amounts := make(map[int]int)
	maxIndex := 0
	for _, e := range entries {
		idx := int(e.ConsumedAt.Sub(first) / width)
		amounts[idx] += e.AmountMilliliters
		if idx > maxIndex {
			maxIndex = idx
		}
	}

	buckets := make([]model.IntakeBucket, 0, len(amounts))
	for idx := 0; idx <= maxIndex; idx++ {
		amount, ok := amounts[idx]
		if !ok {
			continue
		}
		buckets = append(buckets, model.IntakeBucket{
			Index:             idx,
			StartsAt:          first.Add(time.Duration(idx) * width),
			AmountMilliliters: amount,
		})
	}
	return buckets
}

// PeakBucket returns the bucket with the largest amount. On equal
// amounts the earliest bucket wins. Returns nil for an empty histogram.
func PeakBucket(buckets []model.IntakeBucket) *model.IntakeBucket {
	var peak *model.IntakeBucket
	for i := range buckets {
		if peak == nil || buckets[i].AmountMilliliters > peak.AmountMilliliters {
			peak = &buckets[i]
		}
	}
	if peak == nil {
		return nil
	}
	out := *peak
	return &out
}
