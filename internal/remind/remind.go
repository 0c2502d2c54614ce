// Package remind runs the cron-driven hydration reminder. On every tick
// it checks today's progress and notifies only while the goal is unmet.
package remind

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/hydrolog/hydrolog/internal/aggregate"
	"github.com/hydrolog/hydrolog/internal/model"
	"github.com/hydrolog/hydrolog/internal/store"
)

// Notifier delivers one reminder to the user.
type Notifier interface {
	Notify(progress model.Progress) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(progress model.Progress) error

// Notify calls f.
func (f NotifierFunc) Notify(progress model.Progress) error { return f(progress) }

// Scheduler owns the cron loop. Start and Stop are explicit; the
// scheduler never outlives the process on its own.
type Scheduler struct {
	entries *store.EntityStore[model.Entry]
	goal    *store.SingletonStore[model.Goal]
	notify  Notifier
	loc     *time.Location
	now     func() time.Time
	log     *logrus.Entry

	cron *cron.Cron
}

// NewScheduler constructs a reminder scheduler. now may be nil to use
// the wall clock.
func NewScheduler(entries *store.EntityStore[model.Entry], goal *store.SingletonStore[model.Goal], notify Notifier, loc *time.Location, now func() time.Time, log *logrus.Logger) *Scheduler {
	if now == nil {
		now = time.Now
	}
	return &Scheduler{
		entries: entries,
		goal:    goal,
		notify:  notify,
		loc:     loc,
		now:     now,
		log:     log.WithField("component", "remind"),
	}
}

// Start begins firing ticks on the given cron schedule (e.g. "@hourly",
// "*/30 * * * *").
func (s *Scheduler) Start(schedule string) error {
	if s.cron != nil {
		return fmt.Errorf("scheduler already started")
	}

	c := cron.New(cron.WithLocation(s.loc))
	if _, err := c.AddFunc(schedule, s.tick); err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", schedule, err)
	}
	c.Start()
	s.cron = c
	s.log.WithField("schedule", schedule).Info("reminder scheduler started")
	return nil
}

// Stop halts the cron loop and waits for a running tick to finish.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.cron = nil
}

// Tick runs one reminder check immediately, regardless of the schedule.
func (s *Scheduler) Tick() {
	s.tick()
}

func (s *Scheduler) tick() {
	ctx := context.Background()

	goal, err := s.goal.Fetch(ctx)
	if err != nil {
		s.log.WithError(err).Warn("reminder skipped, goal unavailable")
		return
	}
	if !goal.Present {
		return
	}

	entries, err := s.entries.FetchAll(ctx)
	if err != nil {
		s.log.WithError(err).Warn("reminder skipped, entries unavailable")
		return
	}

	now := s.now()
	consumed := 0
	y, m, d := now.In(s.loc).Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, s.loc)
	for _, e := range entries {
		if !e.ConsumedAt.Before(dayStart) && e.ConsumedAt.Before(dayStart.AddDate(0, 0, 1)) {
			consumed += e.AmountMilliliters
		}
	}

	progress := aggregate.GoalProgress(consumed, goal.Value.DailyTargetMilliliters)
	if progress.RemainingMilliliters == 0 {
		return
	}
	if err := s.notify.Notify(progress); err != nil {
		s.log.WithError(err).Warn("reminder delivery failed")
	}
}
