// Package store implements the command-driven transition function over the
// schedule State. Apply is pure and total: it never mutates its input, never
// panics on malformed commands, and returns the input unchanged for commands
// it cannot act on.
package store

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/planwise/core/internal/domain/entities"
)

// Command is a request to transition the State. Commands carry data only;
// all interpretation happens in Apply.
type Command interface {
	isCommand()
}

// Load replaces the whole State from an external document. Malformed
// payloads yield the empty State; list entries that are not JSON objects
// are dropped.
type Load struct {
	Doc json.RawMessage
}

// AddSubject appends a subject. A duplicate id is a no-op.
type AddSubject struct {
	Subject entities.Subject
}

// UpdateSubject merges the non-nil patch fields into the matching subject.
type UpdateSubject struct {
	Patch SubjectPatch
}

// DeleteSubject removes the subject and cascades deletion to every task
// referencing it.
type DeleteSubject struct {
	ID string
}

// AddTask appends a task. Empty titles and duplicate ids are no-ops.
type AddTask struct {
	Task entities.Task
}

// UpdateTask merges the non-nil patch fields into the matching task and
// stamps updatedAt.
type UpdateTask struct {
	Patch TaskPatch
}

// DeleteTask removes the task with the given id.
type DeleteTask struct {
	ID string
}

// SetLoginStreak records the last login date and the current streak.
type SetLoginStreak struct {
	Date   time.Time
	Streak int
}

// Reset clears the State, e.g. on sign-out.
type Reset struct{}

func (Load) isCommand()           {}
func (AddSubject) isCommand()     {}
func (UpdateSubject) isCommand()  {}
func (DeleteSubject) isCommand()  {}
func (AddTask) isCommand()        {}
func (UpdateTask) isCommand()     {}
func (DeleteTask) isCommand()     {}
func (SetLoginStreak) isCommand() {}
func (Reset) isCommand()          {}

// SubjectPatch is a partial subject update. Nil fields are left untouched.
type SubjectPatch struct {
	ID    string
	Name  *string
	Color *string
}

// TaskPatch is a partial task update. Nil fields are left untouched.
// ClearStart/ClearDue drop the corresponding instant; they win over a
// simultaneous set.
type TaskPatch struct {
	ID          string
	SubjectID   *string
	Title       *string
	Detail      *string
	Type        *entities.TaskType
	StartAt     *time.Time
	DueAt       *time.Time
	ClearStart  bool
	ClearDue    bool
	DurationMin *int
	Link        *string
	Status      *entities.TaskStatus
	Category    *entities.TaskCategory
	Reminders   []entities.ReminderOffset
}

// Apply transitions the State by one command at the given instant. The
// input State is never modified; the result shares no mutable memory with
// it. Unknown command types return the input unchanged.
func Apply(st entities.State, cmd Command, now time.Time) entities.State {
	switch c := cmd.(type) {
	case Load:
		return applyLoad(c.Doc)
	case AddSubject:
		return applyAddSubject(st, c.Subject)
	case UpdateSubject:
		return applyUpdateSubject(st, c.Patch)
	case DeleteSubject:
		return applyDeleteSubject(st, c.ID)
	case AddTask:
		return applyAddTask(st, c.Task, now)
	case UpdateTask:
		return applyUpdateTask(st, c.Patch, now)
	case DeleteTask:
		return applyDeleteTask(st, c.ID)
	case SetLoginStreak:
		out := st.Clone()
		d := entities.DayStart(c.Date)
		out.LastLoginDate = &d
		if c.Streak < 0 {
			c.Streak = 0
		}
		out.LoginStreak = c.Streak
		return out
	case Reset:
		return entities.Empty()
	default:
		return st
	}
}

// document mirrors the serialized State shape. Record lists are kept raw so
// individual malformed entries can be dropped without failing the load.
type document struct {
	Subjects      []json.RawMessage `json:"subjects"`
	Tasks         []json.RawMessage `json:"tasks"`
	LastLoginDate *time.Time        `json:"lastLoginDate"`
	LoginStreak   int               `json:"loginStreak"`
}

func applyLoad(raw json.RawMessage) entities.State {
	var doc document
	if len(raw) == 0 || json.Unmarshal(raw, &doc) != nil {
		return entities.Empty()
	}

	out := entities.Empty()
	for _, entry := range doc.Subjects {
		if !isJSONObject(entry) {
			continue
		}
		var sub entities.Subject
		if json.Unmarshal(entry, &sub) != nil {
			continue
		}
		if _, dup := out.SubjectByID(sub.ID); dup {
			continue
		}
		out.Subjects = append(out.Subjects, sub)
	}
	for _, entry := range doc.Tasks {
		if !isJSONObject(entry) {
			continue
		}
		var t entities.Task
		if json.Unmarshal(entry, &t) != nil {
			continue
		}
		if _, dup := out.TaskByID(t.ID); dup {
			continue
		}
		t.NormalizeRange()
		t.DedupeReminders()
		out.Tasks = append(out.Tasks, t)
	}
	if doc.LastLoginDate != nil {
		d := entities.DayStart(*doc.LastLoginDate)
		out.LastLoginDate = &d
	}
	if doc.LoginStreak > 0 {
		out.LoginStreak = doc.LoginStreak
	}
	return out
}

func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func applyAddSubject(st entities.State, sub entities.Subject) entities.State {
	if sub.ID == "" {
		return st
	}
	if _, dup := st.SubjectByID(sub.ID); dup {
		return st
	}
	out := st.Clone()
	out.Subjects = append(out.Subjects, sub)
	return out
}

func applyUpdateSubject(st entities.State, p SubjectPatch) entities.State {
	idx := -1
	for i, sub := range st.Subjects {
		if sub.ID == p.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return st
	}
	out := st.Clone()
	sub := &out.Subjects[idx]
	if p.Name != nil {
		sub.Name = *p.Name
	}
	if p.Color != nil {
		sub.Color = *p.Color
	}
	return out
}

func applyDeleteSubject(st entities.State, id string) entities.State {
	if _, ok := st.SubjectByID(id); !ok {
		return st
	}
	out := st.Clone()
	subjects := out.Subjects[:0]
	for _, sub := range out.Subjects {
		if sub.ID != id {
			subjects = append(subjects, sub)
		}
	}
	out.Subjects = subjects

	// Cascade: no task may be left referencing a deleted subject.
	tasks := out.Tasks[:0]
	for _, t := range out.Tasks {
		if t.SubjectID != id {
			tasks = append(tasks, t)
		}
	}
	out.Tasks = tasks
	return out
}

func applyAddTask(st entities.State, t entities.Task, now time.Time) entities.State {
	if t.ID == "" || t.Title == "" {
		return st
	}
	if _, dup := st.TaskByID(t.ID); dup {
		return st
	}
	t = t.Clone()
	t.NormalizeRange()
	t.DedupeReminders()
	if t.Status == "" {
		t.Status = entities.TaskStatusTodo
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.Before(t.CreatedAt) {
		t.UpdatedAt = t.CreatedAt
	}
	out := st.Clone()
	out.Tasks = append(out.Tasks, t)
	return out
}

func applyUpdateTask(st entities.State, p TaskPatch, now time.Time) entities.State {
	idx := -1
	for i, t := range st.Tasks {
		if t.ID == p.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return st
	}
	out := st.Clone()
	t := &out.Tasks[idx]
	if p.SubjectID != nil {
		t.SubjectID = *p.SubjectID
	}
	if p.Title != nil && *p.Title != "" {
		t.Title = *p.Title
	}
	if p.Detail != nil {
		t.Detail = *p.Detail
	}
	if p.Type != nil && p.Type.IsValid() {
		t.Type = *p.Type
	}
	if p.StartAt != nil {
		v := *p.StartAt
		t.StartAt = &v
	}
	if p.DueAt != nil {
		v := *p.DueAt
		t.DueAt = &v
	}
	if p.ClearStart {
		t.StartAt = nil
	}
	if p.ClearDue {
		t.DueAt = nil
	}
	if p.DurationMin != nil {
		t.DurationMin = *p.DurationMin
	}
	if p.Link != nil {
		t.Link = *p.Link
	}
	if p.Status != nil && p.Status.IsValid() && *p.Status != t.Status {
		// A completed task's status is immutable past the undo window,
		// even through a full-record edit. The rest of the patch applies.
		if t.Status != entities.TaskStatusDone || now.Sub(t.UpdatedAt) < entities.UndoWindow {
			t.Status = *p.Status
		}
	}
	if p.Category != nil && p.Category.IsValid() {
		t.Category = *p.Category
	}
	if p.Reminders != nil {
		t.Reminders = make([]entities.ReminderOffset, len(p.Reminders))
		copy(t.Reminders, p.Reminders)
	}
	t.NormalizeRange()
	t.DedupeReminders()
	t.UpdatedAt = now
	return out
}

func applyDeleteTask(st entities.State, id string) entities.State {
	if _, ok := st.TaskByID(id); !ok {
		return st
	}
	out := st.Clone()
	tasks := out.Tasks[:0]
	for _, t := range out.Tasks {
		if t.ID != id {
			tasks = append(tasks, t)
		}
	}
	out.Tasks = tasks
	return out
}
