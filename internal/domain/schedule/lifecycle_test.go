package schedule

import (
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/planwise/core/internal/domain/entities"
)

func TestAdvance_Cycle(t *testing.T) {
	is := is.New(t)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	task := entities.Task{ID: "t1", Title: "Essay", Status: entities.TaskStatusTodo, UpdatedAt: now.Add(-time.Minute)}

	task, err := Advance(task, now)
	is.NoErr(err)
	is.Equal(task.Status, entities.TaskStatusDoing)
	is.True(task.UpdatedAt.Equal(now))

	task, err = Advance(task, now.Add(time.Minute))
	is.NoErr(err)
	is.Equal(task.Status, entities.TaskStatusDone)

	// done is re-enterable within the undo window
	task, err = Advance(task, now.Add(2*time.Minute))
	is.NoErr(err)
	is.Equal(task.Status, entities.TaskStatusTodo)
}

func TestAdvance_UndoWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)

	t.Run("59 minutes after completion still advances", func(t *testing.T) {
		is := is.New(t)
		task := entities.Task{ID: "t1", Status: entities.TaskStatusDone, UpdatedAt: now.Add(-59 * time.Minute)}
		out, err := Advance(task, now)
		is.NoErr(err)
		is.Equal(out.Status, entities.TaskStatusTodo)
	})

	t.Run("61 minutes after completion is rejected", func(t *testing.T) {
		is := is.New(t)
		task := entities.Task{ID: "t1", Status: entities.TaskStatusDone, UpdatedAt: now.Add(-61 * time.Minute)}
		out, err := Advance(task, now)
		is.Equal(err, entities.ErrUndoWindowExpired)
		is.Equal(out.Status, entities.TaskStatusDone) // record not modified
		is.True(out.UpdatedAt.Equal(task.UpdatedAt))
	})

	t.Run("exactly one hour is already expired", func(t *testing.T) {
		is := is.New(t)
		task := entities.Task{ID: "t1", Status: entities.TaskStatusDone, UpdatedAt: now.Add(-entities.UndoWindow)}
		_, err := Advance(task, now)
		is.Equal(err, entities.ErrUndoWindowExpired)
	})
}

func TestArchived_Boundary(t *testing.T) {
	is := is.New(t)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	past := entities.Task{ID: "old", Status: entities.TaskStatusDone, UpdatedAt: now.Add(-time.Hour - time.Second)}
	fresh := entities.Task{ID: "new", Status: entities.TaskStatusDone, UpdatedAt: now.Add(-59 * time.Minute)}
	open := entities.Task{ID: "open", Status: entities.TaskStatusDoing, UpdatedAt: now.Add(-48 * time.Hour)}

	is.True(past.IsArchived(now))
	is.True(!fresh.IsArchived(now))
	is.True(!open.IsArchived(now))

	archived := Archived([]entities.Task{fresh, past, open}, now)
	is.Equal(len(archived), 1)
	is.Equal(archived[0].ID, "old")
}

func TestArchived_SortedByUpdatedAtDescending(t *testing.T) {
	is := is.New(t)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	a := entities.Task{ID: "a", Status: entities.TaskStatusDone, UpdatedAt: now.Add(-3 * time.Hour)}
	b := entities.Task{ID: "b", Status: entities.TaskStatusDone, UpdatedAt: now.Add(-2 * time.Hour)}
	c := entities.Task{ID: "c", Status: entities.TaskStatusDone, UpdatedAt: now.Add(-5 * time.Hour)}

	archived := Archived([]entities.Task{a, b, c}, now)
	is.Equal(len(archived), 3)
	is.Equal(archived[0].ID, "b")
	is.Equal(archived[1].ID, "a")
	is.Equal(archived[2].ID, "c")
}
