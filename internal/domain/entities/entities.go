package entities

import (
	"errors"
	"time"
)

// Common errors
var (
	ErrEmptyTitle        = errors.New("task title must not be empty")
	ErrSubjectNotFound   = errors.New("subject not found")
	ErrTaskNotFound      = errors.New("task not found")
	ErrUndoWindowExpired = errors.New("undo window expired")
	ErrInvalidOffsetUnit = errors.New("invalid reminder offset unit")
	ErrInvalidTaskType   = errors.New("invalid task type")
)

// UndoWindow is how long a completed task stays editable. Past it the task
// counts as archived and its status can no longer be advanced.
const UndoWindow = time.Hour

// DefaultDurationMinutes is assumed when a task carries no explicit duration.
const DefaultDurationMinutes = 60

// Enums and types
type TaskType string

const (
	TaskTypeDeadline TaskType = "deadline"
	TaskTypeEvent    TaskType = "event"
)

type TaskStatus string

const (
	TaskStatusTodo  TaskStatus = "todo"
	TaskStatusDoing TaskStatus = "doing"
	TaskStatusDone  TaskStatus = "done"
)

type TaskCategory string

const (
	TaskCategoryStudy    TaskCategory = "study"
	TaskCategoryWork     TaskCategory = "work"
	TaskCategoryPersonal TaskCategory = "personal"
)

type OffsetUnit string

const (
	OffsetUnitMinutes OffsetUnit = "minutes"
	OffsetUnitHours   OffsetUnit = "hours"
	OffsetUnitDays    OffsetUnit = "days"
)

// Subject is a user-defined category tasks can belong to.
type Subject struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ReminderOffset is a relative offset before a task's due instant.
type ReminderOffset struct {
	Unit   OffsetUnit `json:"offsetUnit"`
	Amount int        `json:"amount"`
}

// Duration converts the offset into a concrete duration.
func (r ReminderOffset) Duration() time.Duration {
	switch r.Unit {
	case OffsetUnitMinutes:
		return time.Duration(r.Amount) * time.Minute
	case OffsetUnitHours:
		return time.Duration(r.Amount) * time.Hour
	case OffsetUnitDays:
		return time.Duration(r.Amount) * 24 * time.Hour
	default:
		return 0
	}
}

// Task is a unit of work or a calendar event with optional start/due
// instants, status, and reminders. All times are local wall-clock instants.
type Task struct {
	ID          string           `json:"id"`
	SubjectID   string           `json:"subjectId,omitempty"`
	Title       string           `json:"title"`
	Detail      string           `json:"detail"`
	Type        TaskType         `json:"taskType"`
	StartAt     *time.Time       `json:"startAt,omitempty"`
	DueAt       *time.Time       `json:"dueAt,omitempty"`
	DurationMin int              `json:"duration,omitempty"`
	Link        string           `json:"link,omitempty"`
	Status      TaskStatus       `json:"status"`
	Category    TaskCategory     `json:"category"`
	Reminders   []ReminderOffset `json:"reminders,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// State is the aggregate the whole engine operates on. It is owned by the
// store; every other component works on value copies.
type State struct {
	Subjects      []Subject  `json:"subjects"`
	Tasks         []Task     `json:"tasks"`
	LastLoginDate *time.Time `json:"lastLoginDate,omitempty"`
	LoginStreak   int        `json:"loginStreak"`
}

// Empty returns the zero State with allocated (non-nil) record slices.
func Empty() State {
	return State{Subjects: []Subject{}, Tasks: []Task{}}
}

// Clone returns a deep copy safe to hand out as a snapshot.
func (s State) Clone() State {
	out := State{
		Subjects:    make([]Subject, len(s.Subjects)),
		Tasks:       make([]Task, len(s.Tasks)),
		LoginStreak: s.LoginStreak,
	}
	copy(out.Subjects, s.Subjects)
	for i, t := range s.Tasks {
		out.Tasks[i] = t.Clone()
	}
	if s.LastLoginDate != nil {
		d := *s.LastLoginDate
		out.LastLoginDate = &d
	}
	return out
}

// SubjectByID returns the subject with the given id, if present.
func (s State) SubjectByID(id string) (Subject, bool) {
	for _, sub := range s.Subjects {
		if sub.ID == id {
			return sub, true
		}
	}
	return Subject{}, false
}

// TaskByID returns a copy of the task with the given id, if present.
func (s State) TaskByID(id string) (Task, bool) {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t.Clone(), true
		}
	}
	return Task{}, false
}

// Clone returns a copy of the task with no aliased pointers or slices.
func (t Task) Clone() Task {
	out := t
	if t.StartAt != nil {
		v := *t.StartAt
		out.StartAt = &v
	}
	if t.DueAt != nil {
		v := *t.DueAt
		out.DueAt = &v
	}
	if t.Reminders != nil {
		out.Reminders = make([]ReminderOffset, len(t.Reminders))
		copy(out.Reminders, t.Reminders)
	}
	return out
}

// EffectiveDuration is the occupied span of a timed task.
func (t Task) EffectiveDuration() time.Duration {
	if t.DurationMin <= 0 {
		return DefaultDurationMinutes * time.Minute
	}
	return time.Duration(t.DurationMin) * time.Minute
}

// IsArchived reports whether the task is a completed task past its undo
// window. Archival is derived, never stored.
func (t Task) IsArchived(now time.Time) bool {
	return t.Status == TaskStatusDone && now.Sub(t.UpdatedAt) >= UndoWindow
}

// NormalizeRange swaps start/due when both are set and inverted. The pair
// is never left with start after due.
func (t *Task) NormalizeRange() {
	if t.StartAt != nil && t.DueAt != nil && t.StartAt.After(*t.DueAt) {
		t.StartAt, t.DueAt = t.DueAt, t.StartAt
	}
}

// DedupeReminders removes duplicate (unit, amount) pairs, keeping first
// occurrences in order.
func (t *Task) DedupeReminders() {
	if len(t.Reminders) < 2 {
		return
	}
	seen := make(map[ReminderOffset]struct{}, len(t.Reminders))
	out := t.Reminders[:0]
	for _, r := range t.Reminders {
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	t.Reminders = out
}

// Utility methods
func (tt TaskType) IsValid() bool {
	switch tt {
	case TaskTypeDeadline, TaskTypeEvent:
		return true
	default:
		return false
	}
}

func (ts TaskStatus) IsValid() bool {
	switch ts {
	case TaskStatusTodo, TaskStatusDoing, TaskStatusDone:
		return true
	default:
		return false
	}
}

func (tc TaskCategory) IsValid() bool {
	switch tc {
	case TaskCategoryStudy, TaskCategoryWork, TaskCategoryPersonal:
		return true
	default:
		return false
	}
}

func (ou OffsetUnit) IsValid() bool {
	switch ou {
	case OffsetUnitMinutes, OffsetUnitHours, OffsetUnitDays:
		return true
	default:
		return false
	}
}

// SameDay reports whether two instants fall on the same calendar day in
// the first instant's location.
func SameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.In(a.Location()).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// DayStart truncates an instant to local midnight.
func DayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
