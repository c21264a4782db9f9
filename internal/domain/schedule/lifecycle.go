// Package schedule holds the pure read-side projections of the engine:
// status lifecycle, day agendas, month-calendar indicators, list queries,
// and reminder fire-time derivation. Every function takes a snapshot plus
// the current instant and returns freshly built values.
package schedule

import (
	"sort"
	"time"

	"github.com/planwise/core/internal/domain/entities"
)

// Advance cycles a task's status one step: todo→doing, doing→done,
// done→todo. The last transition is guarded: once a completed task's undo
// window has elapsed the status is immutable and ErrUndoWindowExpired is
// returned with the task unchanged.
func Advance(t entities.Task, now time.Time) (entities.Task, error) {
	switch t.Status {
	case entities.TaskStatusTodo:
		t.Status = entities.TaskStatusDoing
	case entities.TaskStatusDoing:
		t.Status = entities.TaskStatusDone
	case entities.TaskStatusDone:
		if now.Sub(t.UpdatedAt) >= entities.UndoWindow {
			return t, entities.ErrUndoWindowExpired
		}
		t.Status = entities.TaskStatusTodo
	default:
		t.Status = entities.TaskStatusDoing
	}
	t.UpdatedAt = now
	return t, nil
}

// Archived returns the completed tasks past their undo window, newest
// update first. This is the history view; archived tasks never show up in
// the active query results.
func Archived(tasks []entities.Task, now time.Time) []entities.Task {
	out := make([]entities.Task, 0)
	for _, t := range tasks {
		if t.IsArchived(now) {
			out = append(out, t.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}
