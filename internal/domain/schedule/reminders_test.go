package schedule

import (
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/planwise/core/internal/domain/entities"
)

func TestFireTime(t *testing.T) {
	is := is.New(t)

	due := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	is.True(FireTime(due, entities.ReminderOffset{Unit: entities.OffsetUnitMinutes, Amount: 30}).Equal(due.Add(-30 * time.Minute)))
	is.True(FireTime(due, entities.ReminderOffset{Unit: entities.OffsetUnitHours, Amount: 2}).Equal(due.Add(-2 * time.Hour)))
	is.True(FireTime(due, entities.ReminderOffset{Unit: entities.OffsetUnitDays, Amount: 1}).Equal(due.Add(-24 * time.Hour)))
}

func TestReminderDelay(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)

	t.Run("future fire time yields exact delay", func(t *testing.T) {
		is := is.New(t)
		due := now.Add(2 * time.Hour)
		delay, ok := ReminderDelay(due, entities.ReminderOffset{Unit: entities.OffsetUnitMinutes, Amount: 30}, now)
		is.True(ok)
		is.Equal(delay, 90*time.Minute)
	})

	t.Run("past fire time is skipped", func(t *testing.T) {
		is := is.New(t)
		due := now.Add(10 * time.Minute)
		_, ok := ReminderDelay(due, entities.ReminderOffset{Unit: entities.OffsetUnitHours, Amount: 1}, now)
		is.True(!ok)
	})

	t.Run("fire time exactly now is skipped", func(t *testing.T) {
		is := is.New(t)
		due := now.Add(time.Hour)
		_, ok := ReminderDelay(due, entities.ReminderOffset{Unit: entities.OffsetUnitHours, Amount: 1}, now)
		is.True(!ok)
	})

	t.Run("far-future delay is clamped", func(t *testing.T) {
		is := is.New(t)
		due := now.AddDate(0, 0, 40)
		delay, ok := ReminderDelay(due, entities.ReminderOffset{Unit: entities.OffsetUnitMinutes, Amount: 5}, now)
		is.True(ok)
		is.Equal(delay, MaxTimerDelay)
	})

	t.Run("delay just under the ceiling is untouched", func(t *testing.T) {
		is := is.New(t)
		due := now.Add(MaxTimerDelay)
		delay, ok := ReminderDelay(due, entities.ReminderOffset{Unit: entities.OffsetUnitMinutes, Amount: 0}, now)
		is.True(ok)
		is.Equal(delay, MaxTimerDelay)
	})
}
