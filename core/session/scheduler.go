package session

import "time"

type (
	// Task is a handle on a scheduled callback.
	Task interface {
		// Cancel stops the task; it reports whether the call prevented the
		// callback from running.
		Cancel() bool
	}

	// Scheduler defers a single callback. The schedule-with-handle /
	// cancel-by-handle split is what lets the Manager enforce its
	// one-pending-timer invariant.
	Scheduler interface {
		Schedule(d time.Duration, fn func()) Task
	}
)

// TimerScheduler schedules on the runtime timer heap.
type TimerScheduler struct{}

var _ Scheduler = TimerScheduler{}

func (TimerScheduler) Schedule(d time.Duration, fn func()) Task {
	return timerTask{time.AfterFunc(d, fn)}
}

type timerTask struct {
	t *time.Timer
}

func (tt timerTask) Cancel() bool { return tt.t.Stop() }
