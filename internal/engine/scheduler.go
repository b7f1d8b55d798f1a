package engine

import (
	"context"
	"time"
)

// Scheduler arms one-shot timers. The indirection exists so tests can fire
// cycles deterministically instead of waiting on real timers.
type Scheduler interface {
	// ScheduleAfter runs fn once after d and returns a cancel func.
	// Cancel is best-effort: a timer that already fired is not recalled.
	ScheduleAfter(d time.Duration, fn func()) (cancel func())
}

// TimerScheduler is the production Scheduler backed by time.AfterFunc.
type TimerScheduler struct{}

func (TimerScheduler) ScheduleAfter(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// SleepFunc blocks for d or until ctx is done. Injectable for the same
// reason as Scheduler.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the production SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
