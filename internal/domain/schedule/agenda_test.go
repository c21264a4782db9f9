package schedule

import (
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/planwise/core/internal/domain/entities"
)

func at(hour, min int) *time.Time {
	v := time.Date(2026, 3, 10, hour, min, 0, 0, time.Local)
	return &v
}

func onDay(day time.Time, hour, min int) *time.Time {
	v := time.Date(day.Year(), day.Month(), day.Day(), hour, min, 0, 0, day.Location())
	return &v
}

func TestBuildAgenda_FreeGapThreshold(t *testing.T) {
	is := is.New(t)

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
	tasks := []entities.Task{
		{ID: "t1", Title: "Standup", Type: entities.TaskTypeEvent, DueAt: at(9, 0), DurationMin: 60},
	}

	items := BuildAgenda(tasks, day)
	is.Equal(len(items), 3) // leading free, the task, trailing free

	is.Equal(items[0].Kind, AgendaFree)
	is.Equal(items[0].End.Sub(items[0].Start), 9*time.Hour) // 00:00-09:00, 540 minutes

	is.Equal(items[1].Kind, AgendaTimed)
	is.Equal(items[1].Tasks[0].ID, "t1")
	is.True(items[1].Start.Equal(*at(9, 0)))
	is.True(items[1].End.Equal(*at(10, 0)))

	is.Equal(items[2].Kind, AgendaFree)
	is.True(items[2].Start.Equal(*at(10, 0)))
	// trailing gap runs to 23:59:59.999
	gap := items[2].End.Sub(items[2].Start)
	is.True(gap > 839*time.Minute && gap < 840*time.Minute)
}

func TestBuildAgenda_SmallGapsSuppressed(t *testing.T) {
	is := is.New(t)

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
	tasks := []entities.Task{
		{ID: "t1", Title: "Call", Type: entities.TaskTypeEvent, DueAt: at(9, 0), DurationMin: 60},
		// starts 10 minutes after the previous ends; the gap is noise
		{ID: "t2", Title: "Review", Type: entities.TaskTypeEvent, DueAt: at(10, 10), DurationMin: 60},
	}

	items := BuildAgenda(tasks, day)
	var kinds []AgendaKind
	for _, item := range items {
		kinds = append(kinds, item.Kind)
	}
	is.Equal(kinds, []AgendaKind{AgendaFree, AgendaTimed, AgendaTimed, AgendaFree})
}

func TestBuildAgenda_TimedItemsSortedAscending(t *testing.T) {
	is := is.New(t)

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
	tasks := []entities.Task{
		{ID: "late", Title: "Dinner", Type: entities.TaskTypeEvent, DueAt: at(19, 0)},
		{ID: "early", Title: "Gym", Type: entities.TaskTypeEvent, DueAt: at(7, 0)},
	}

	items := BuildAgenda(tasks, day)
	var order []string
	for _, item := range items {
		if item.Kind == AgendaTimed {
			order = append(order, item.Tasks[0].ID)
		}
	}
	is.Equal(order, []string{"early", "late"})
}

func TestBuildAgenda_WorkableBlock(t *testing.T) {
	is := is.New(t)

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
	start := day.AddDate(0, 0, -2)
	due := day.AddDate(0, 0, 3)
	tasks := []entities.Task{
		{ID: "span", Title: "Term paper", Type: entities.TaskTypeDeadline,
			StartAt: onDay(start, 10, 0), DueAt: onDay(due, 18, 0)},
	}

	items := BuildAgenda(tasks, day)
	is.Equal(items[0].Kind, AgendaWorkable)
	is.Equal(items[0].Tasks[0].ID, "span")

	// boundary days are excluded from the workable block
	is.Equal(countKind(BuildAgenda(tasks, start), AgendaWorkable), 0)
	is.Equal(countKind(BuildAgenda(tasks, due), AgendaWorkable), 0)

	// events never qualify, whatever their span
	tasks[0].Type = entities.TaskTypeEvent
	is.Equal(countKind(BuildAgenda(tasks, day), AgendaWorkable), 0)
}

func TestBuildAgenda_AllDayBlock(t *testing.T) {
	is := is.New(t)

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
	midnight := day
	tasks := []entities.Task{
		{ID: "allday", Title: "Deadline day", Type: entities.TaskTypeDeadline, DueAt: &midnight},
		{ID: "timed", Title: "Seminar", Type: entities.TaskTypeEvent, DueAt: at(14, 0)},
	}

	items := BuildAgenda(tasks, day)
	is.Equal(items[0].Kind, AgendaAllDay)
	is.Equal(items[0].Tasks[0].ID, "allday")
	is.Equal(countKind(items, AgendaTimed), 1)
}

func TestBuildAgenda_TasksWithoutDueNeverAppear(t *testing.T) {
	is := is.New(t)

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
	tasks := []entities.Task{
		{ID: "floating", Title: "Someday", Type: entities.TaskTypeDeadline},
	}

	items := BuildAgenda(tasks, day)
	// only the full-day free gap remains
	is.Equal(len(items), 1)
	is.Equal(items[0].Kind, AgendaFree)
}

func countKind(items []AgendaItem, kind AgendaKind) int {
	n := 0
	for _, item := range items {
		if item.Kind == kind {
			n++
		}
	}
	return n
}
