// Package schedule runs a crawl callback at registered daily times.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Clock abstracts wall time for deterministic tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// SystemClock returns the real wall clock.
func SystemClock() Clock {
	return systemClock{}
}

// Trigger is a daily wall-clock time at which a run fires.
type Trigger struct {
	Hour   int
	Minute int
}

func (t Trigger) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// ParseTrigger parses an HH:MM trigger time.
func ParseTrigger(value string) (Trigger, error) {
	parsed, err := time.Parse("15:04", strings.TrimSpace(value))
	if err != nil {
		return Trigger{}, fmt.Errorf("trigger must be HH:MM: %w", err)
	}
	return Trigger{Hour: parsed.Hour(), Minute: parsed.Minute()}, nil
}

// next returns the first occurrence of the trigger at or after now.
func (t Trigger) next(now time.Time) time.Time {
	candidate := time.Date(now.Year(), now.Month(), now.Day(), t.Hour, t.Minute, 0, 0, now.Location())
	if candidate.Before(now) {
		candidate = candidate.Add(24 * time.Hour)
	}
	return candidate
}

type entry struct {
	trigger Trigger
	next    time.Time
}

// Scheduler fires a run callback at each registered daily trigger. The
// callback executes synchronously on the scheduler goroutine, so runs
// never overlap. Triggers are passed at construction; there is no
// ambient registry, and independent Scheduler instances do not
// interact.
type Scheduler struct {
	entries  []entry
	clock    Clock
	interval time.Duration
	run      func(context.Context)
}

// New builds a Scheduler waking every interval to check the triggers.
func New(triggers []Trigger, interval time.Duration, clock Clock, run func(context.Context)) *Scheduler {
	if clock == nil {
		clock = SystemClock()
	}
	if interval <= 0 {
		interval = time.Minute
	}

	now := clock.Now()
	entries := make([]entry, 0, len(triggers))
	for _, t := range triggers {
		entries = append(entries, entry{trigger: t, next: t.next(now)})
	}

	return &Scheduler{
		entries:  entries,
		clock:    clock,
		interval: interval,
		run:      run,
	}
}

// AddTriggerAfter registers an extra daily trigger at now+delay. It
// exists so operators can verify end-to-end behavior shortly after
// startup instead of waiting for the daily slot.
func (s *Scheduler) AddTriggerAfter(delay time.Duration) Trigger {
	target := s.clock.Now().Add(delay)
	trigger := Trigger{Hour: target.Hour(), Minute: target.Minute()}
	next := time.Date(target.Year(), target.Month(), target.Day(), trigger.Hour, trigger.Minute, 0, 0, target.Location())
	s.entries = append(s.entries, entry{trigger: trigger, next: next})
	return trigger
}

// Run blocks, waking every interval and firing due triggers, until ctx
// is canceled (clean shutdown) or a fault escapes a scheduled run.
func (s *Scheduler) Run(ctx context.Context) error {
	for _, e := range s.entries {
		slog.Info("trigger registered",
			slog.String("at", e.trigger.String()),
			slog.Time("next", e.next),
		)
	}

	for {
		now := s.clock.Now()
		for i := range s.entries {
			e := &s.entries[i]
			if now.Before(e.next) {
				continue
			}
			slog.Info("trigger due, starting run", slog.String("at", e.trigger.String()))
			if err := s.runOnce(ctx); err != nil {
				slog.Error("scheduler loop fault, exiting", slog.Any("error", err))
				return err
			}
			for !e.next.After(s.clock.Now()) {
				e.next = e.next.Add(24 * time.Hour)
			}
		}

		select {
		case <-ctx.Done():
			slog.Info("interrupt received, stopping scheduler")
			return nil
		case <-time.After(s.interval):
		}
	}
}

// runOnce invokes the callback, converting a panic into an error so a
// broken run takes down the loop, not the process.
func (s *Scheduler) runOnce(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scheduled run panicked: %v", r)
		}
	}()
	s.run(ctx)
	return nil
}
