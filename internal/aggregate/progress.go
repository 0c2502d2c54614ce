package aggregate

import (
	"github.com/hydrolog/hydrolog/internal/model"
)

// GoalProgress computes the goal-progress state for a consumed total.
// With no positive target the fraction is zero, never a division by
// zero; overshooting clamps to 1.0 and zero remaining.
func GoalProgress(consumed, target int) model.Progress {
	p := model.Progress{
		ConsumedMilliliters: consumed,
		TargetMilliliters:   target,
	}
	if target <= 0 {
		return p
	}

	remaining := target - consumed
	if remaining < 0 {
		remaining = 0
	}
	p.RemainingMilliliters = remaining

	fraction := float64(consumed) / float64(target)
	if fraction > 1 {
		fraction = 1
	}
	if fraction < 0 {
		fraction = 0
	}
	p.Fraction = fraction
	return p
}
