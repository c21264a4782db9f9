package schedule

import (
	"sort"
	"time"

	"github.com/planwise/core/internal/domain/entities"
)

// FreeGapThreshold is the smallest free span worth showing. Shorter gaps
// between timed items are noise and are suppressed.
const FreeGapThreshold = 15 * time.Minute

// AgendaKind discriminates the entries of a day agenda.
type AgendaKind string

const (
	AgendaWorkable AgendaKind = "workable"
	AgendaAllDay   AgendaKind = "allday"
	AgendaTimed    AgendaKind = "timed"
	AgendaFree     AgendaKind = "free"
)

// AgendaItem is one entry in a day's derived schedule. Workable and all-day
// items carry a task group; timed items carry exactly one task plus its
// occupied span; free items carry only a span.
type AgendaItem struct {
	Kind  AgendaKind      `json:"kind"`
	Tasks []entities.Task `json:"tasks,omitempty"`
	Start time.Time       `json:"start,omitempty"`
	End   time.Time       `json:"end,omitempty"`
}

// BuildAgenda derives the ordered agenda for one calendar day: an optional
// workable block, an optional all-day block, then timed items interleaved
// with free-time gaps.
//
// Tasks without a due instant never appear in a day agenda unless they
// qualify for the workable block; they remain reachable through the list
// query only.
func BuildAgenda(tasks []entities.Task, day time.Time) []AgendaItem {
	dayStart := entities.DayStart(day)
	dayEnd := dayStart.Add(24*time.Hour - time.Millisecond)

	var workable, allDay []entities.Task
	var timed []entities.Task
	for _, t := range tasks {
		if isWorkableOn(t, dayStart) {
			workable = append(workable, t.Clone())
			continue
		}
		if t.DueAt == nil || !entities.SameDay(dayStart, *t.DueAt) {
			continue
		}
		if t.DueAt.Equal(entities.DayStart(*t.DueAt)) {
			allDay = append(allDay, t.Clone())
		} else {
			timed = append(timed, t.Clone())
		}
	}

	sort.SliceStable(timed, func(i, j int) bool {
		return timed[i].DueAt.Before(*timed[j].DueAt)
	})

	items := make([]AgendaItem, 0, len(timed)*2+2)
	if len(workable) > 0 {
		items = append(items, AgendaItem{Kind: AgendaWorkable, Tasks: workable})
	}
	if len(allDay) > 0 {
		items = append(items, AgendaItem{Kind: AgendaAllDay, Tasks: allDay})
	}

	// Scan timed items tracking the last occupied end, emitting a free
	// item for every gap over the threshold.
	cursor := dayStart
	for _, t := range timed {
		start := *t.DueAt
		end := start.Add(t.EffectiveDuration())
		if start.Sub(cursor) > FreeGapThreshold {
			items = append(items, AgendaItem{Kind: AgendaFree, Start: cursor, End: start})
		}
		items = append(items, AgendaItem{
			Kind:  AgendaTimed,
			Tasks: []entities.Task{t},
			Start: start,
			End:   end,
		})
		if end.After(cursor) {
			cursor = end
		}
	}
	if dayEnd.Sub(cursor) > FreeGapThreshold {
		items = append(items, AgendaItem{Kind: AgendaFree, Start: cursor, End: dayEnd})
	}
	return items
}

// isWorkableOn reports whether the day falls strictly inside a multi-day
// deadline task's span, both boundary days excluded.
func isWorkableOn(t entities.Task, dayStart time.Time) bool {
	if t.Type != entities.TaskTypeDeadline || t.StartAt == nil || t.DueAt == nil {
		return false
	}
	startDay := entities.DayStart(*t.StartAt)
	dueDay := entities.DayStart(*t.DueAt)
	return dayStart.After(startDay) && dayStart.Before(dueDay)
}
