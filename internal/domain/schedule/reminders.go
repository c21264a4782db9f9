package schedule

import (
	"math"
	"time"

	"github.com/planwise/core/internal/domain/entities"
)

// MaxTimerDelay is the longest delay a reminder timer is armed with,
// matching the 32-bit millisecond ceiling of the reference client's timers
// (~24.855 days). Longer delays are truncated, never rejected, so a
// reminder on a far-future due date fires late rather than not at all.
const MaxTimerDelay = time.Duration(math.MaxInt32) * time.Millisecond

// FireTime is the absolute instant a reminder should fire: the task's due
// instant minus the offset.
func FireTime(due time.Time, off entities.ReminderOffset) time.Time {
	return due.Add(-off.Duration())
}

// ReminderDelay derives the timer delay for one reminder. ok is false when
// the fire time is not in the future, in which case the reminder is
// skipped. Delays beyond MaxTimerDelay are clamped.
func ReminderDelay(due time.Time, off entities.ReminderOffset, now time.Time) (time.Duration, bool) {
	fireAt := FireTime(due, off)
	if !fireAt.After(now) {
		return 0, false
	}
	delay := fireAt.Sub(now)
	if delay > MaxTimerDelay {
		delay = MaxTimerDelay
	}
	return delay, true
}
