package entities

import (
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestTask_NormalizeRange(t *testing.T) {
	is := is.New(t)

	start := time.Date(2026, 3, 15, 9, 0, 0, 0, time.Local)
	due := time.Date(2026, 3, 11, 18, 0, 0, 0, time.Local)
	task := Task{StartAt: &start, DueAt: &due}

	task.NormalizeRange()
	is.True(!task.StartAt.After(*task.DueAt))
	is.True(task.StartAt.Equal(due))
	is.True(task.DueAt.Equal(start))

	// already ordered pair is untouched
	task.NormalizeRange()
	is.True(task.StartAt.Equal(due))

	// one-sided ranges are left alone
	oneSided := Task{DueAt: &due}
	oneSided.NormalizeRange()
	is.True(oneSided.StartAt == nil)
}

func TestTask_DedupeReminders(t *testing.T) {
	is := is.New(t)

	task := Task{Reminders: []ReminderOffset{
		{Unit: OffsetUnitHours, Amount: 1},
		{Unit: OffsetUnitMinutes, Amount: 30},
		{Unit: OffsetUnitHours, Amount: 1},
		{Unit: OffsetUnitMinutes, Amount: 30},
		{Unit: OffsetUnitDays, Amount: 1},
	}}

	task.DedupeReminders()
	is.Equal(task.Reminders, []ReminderOffset{
		{Unit: OffsetUnitHours, Amount: 1},
		{Unit: OffsetUnitMinutes, Amount: 30},
		{Unit: OffsetUnitDays, Amount: 1},
	})
}

func TestTask_EffectiveDuration(t *testing.T) {
	is := is.New(t)

	is.Equal(Task{}.EffectiveDuration(), time.Hour)
	is.Equal(Task{DurationMin: 90}.EffectiveDuration(), 90*time.Minute)
	is.Equal(Task{DurationMin: -5}.EffectiveDuration(), time.Hour)
}

func TestTask_CloneIsIndependent(t *testing.T) {
	is := is.New(t)

	due := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	orig := Task{
		ID:        "t1",
		DueAt:     &due,
		Reminders: []ReminderOffset{{Unit: OffsetUnitMinutes, Amount: 10}},
	}

	clone := orig.Clone()
	*clone.DueAt = due.Add(time.Hour)
	clone.Reminders[0].Amount = 99

	is.True(orig.DueAt.Equal(due))
	is.Equal(orig.Reminders[0].Amount, 10)
}

func TestState_CloneIsIndependent(t *testing.T) {
	is := is.New(t)

	last := time.Date(2026, 3, 9, 0, 0, 0, 0, time.Local)
	st := State{
		Subjects:      []Subject{{ID: "s1", Name: "Math"}},
		Tasks:         []Task{{ID: "t1", Title: "Essay"}},
		LastLoginDate: &last,
		LoginStreak:   3,
	}

	clone := st.Clone()
	clone.Subjects[0].Name = "Changed"
	clone.Tasks[0].Title = "Changed"
	*clone.LastLoginDate = last.AddDate(0, 0, 5)

	is.Equal(st.Subjects[0].Name, "Math")
	is.Equal(st.Tasks[0].Title, "Essay")
	is.True(st.LastLoginDate.Equal(last))
}

func TestSameDayAndDayStart(t *testing.T) {
	is := is.New(t)

	a := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
	b := time.Date(2026, 3, 10, 23, 59, 59, 0, time.Local)
	c := time.Date(2026, 3, 11, 0, 0, 0, 0, time.Local)

	is.True(SameDay(a, b))
	is.True(!SameDay(b, c))
	is.True(DayStart(b).Equal(a))
	is.True(DayStart(a).Equal(a))
}

func TestReminderOffset_Duration(t *testing.T) {
	is := is.New(t)

	is.Equal(ReminderOffset{Unit: OffsetUnitMinutes, Amount: 45}.Duration(), 45*time.Minute)
	is.Equal(ReminderOffset{Unit: OffsetUnitHours, Amount: 2}.Duration(), 2*time.Hour)
	is.Equal(ReminderOffset{Unit: OffsetUnitDays, Amount: 3}.Duration(), 72*time.Hour)
	is.Equal(ReminderOffset{Unit: "weeks", Amount: 1}.Duration(), time.Duration(0))
}

func TestIsArchived(t *testing.T) {
	is := is.New(t)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	is.True(Task{Status: TaskStatusDone, UpdatedAt: now.Add(-UndoWindow)}.IsArchived(now))
	is.True(!Task{Status: TaskStatusDone, UpdatedAt: now.Add(-UndoWindow + time.Second)}.IsArchived(now))
	is.True(!Task{Status: TaskStatusDoing, UpdatedAt: now.Add(-72 * time.Hour)}.IsArchived(now))
}
