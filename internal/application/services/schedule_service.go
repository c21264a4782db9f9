package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/planwise/core/internal/application/store"
	"github.com/planwise/core/internal/domain/entities"
	"github.com/planwise/core/internal/domain/schedule"
	"github.com/planwise/core/internal/infrastructure/logger"
	"github.com/planwise/core/internal/ports"
)

// ScheduleService owns the in-memory schedule State per user and routes
// every mutation through the pure store. Commands are serialized behind one
// mutex so they apply in issue order; persistence is a best-effort side
// effect applied after the in-memory transition, and derived views are
// computed from value snapshots.
type ScheduleService struct {
	mu     sync.Mutex
	states map[string]entities.State
	seq    map[string]uint64 // per-user command counter, guarded by mu

	// sideMu serializes the post-command side effects (persist + reminder
	// sync); sideSeq records the newest snapshot already applied per user,
	// so a superseded snapshot is dropped instead of persisted stale.
	sideMu  sync.Mutex
	sideSeq map[string]uint64

	stateRepo ports.StateRepository
	reminders *ReminderService
	clock     ports.Clock
	logger    *logger.Logger
}

// NewScheduleService creates a new schedule service
func NewScheduleService(stateRepo ports.StateRepository, reminders *ReminderService, clock ports.Clock, appLogger *logger.Logger) *ScheduleService {
	return &ScheduleService{
		states:    make(map[string]entities.State),
		seq:       make(map[string]uint64),
		sideSeq:   make(map[string]uint64),
		stateRepo: stateRepo,
		reminders: reminders,
		clock:     clock,
		logger:    appLogger.WithComponent("schedule"),
	}
}

// stateLocked returns the in-memory State for a user, loading it from the
// persistence collaborator on first touch. Load failures and missing
// documents both mean "start from empty". Callers must hold s.mu.
func (s *ScheduleService) stateLocked(ctx context.Context, userID uuid.UUID) entities.State {
	key := userID.String()
	if st, ok := s.states[key]; ok {
		return st
	}

	st := entities.Empty()
	doc, err := s.stateRepo.Load(ctx, userID)
	switch {
	case err == nil:
		// Load validates defensively; a malformed document degrades to
		// the empty State rather than failing.
		st = store.Apply(st, store.Load{Doc: doc}, s.clock.Now())
	case err == ports.ErrStateNotFound:
		// first session for this user
	default:
		s.logger.Warnw("Failed to load state document, starting empty", "error", err, "user_id", key)
	}

	s.states[key] = st
	return st
}

// dispatch applies one command, persists the result best-effort, and
// re-syncs reminder timers. It returns the resulting State snapshot and
// whether persistence succeeded. Snapshots carry the per-user command
// sequence assigned under the state mutex; side effects apply in that
// order, and a snapshot already superseded by a later one is skipped
// (the newer persisted document subsumes it).
func (s *ScheduleService) dispatch(ctx context.Context, userID uuid.UUID, cmd store.Command) (entities.State, bool) {
	key := userID.String()

	s.mu.Lock()
	st := s.stateLocked(ctx, userID)
	next := store.Apply(st, cmd, s.clock.Now())
	s.states[key] = next
	s.seq[key]++
	n := s.seq[key]
	snapshot := next.Clone()
	s.mu.Unlock()

	s.sideMu.Lock()
	defer s.sideMu.Unlock()
	if n <= s.sideSeq[key] {
		return snapshot, true
	}
	s.sideSeq[key] = n

	persisted := true
	doc, err := json.Marshal(snapshot)
	if err == nil {
		err = s.stateRepo.Save(ctx, userID, doc)
	}
	if err != nil {
		// In-memory State stays authoritative; the failure is advisory.
		persisted = false
		s.logger.Warnw("Failed to persist state document", "error", err, "user_id", key)
	}

	s.reminders.Sync(key, snapshot)
	return snapshot, persisted
}

// Snapshot returns a read-only copy of the user's current State.
func (s *ScheduleService) Snapshot(ctx context.Context, userID uuid.UUID) entities.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked(ctx, userID).Clone()
}

// CreateSubject adds a subject and returns it.
func (s *ScheduleService) CreateSubject(ctx context.Context, userID uuid.UUID, req ports.CreateSubjectRequest) (entities.Subject, error) {
	sub := entities.Subject{
		ID:    newID(),
		Name:  req.Name,
		Color: req.Color,
	}
	st, _ := s.dispatch(ctx, userID, store.AddSubject{Subject: sub})
	created, ok := st.SubjectByID(sub.ID)
	if !ok {
		return entities.Subject{}, fmt.Errorf("failed to add subject")
	}

	s.logger.Infow("Subject created", "subject_id", sub.ID, "user_id", userID.String())
	return created, nil
}

// UpdateSubject merges the request into an existing subject.
func (s *ScheduleService) UpdateSubject(ctx context.Context, userID uuid.UUID, subjectID string, req ports.UpdateSubjectRequest) (entities.Subject, error) {
	if _, ok := s.Snapshot(ctx, userID).SubjectByID(subjectID); !ok {
		return entities.Subject{}, entities.ErrSubjectNotFound
	}

	patch := store.SubjectPatch{ID: subjectID, Name: req.Name, Color: req.Color}
	st, _ := s.dispatch(ctx, userID, store.UpdateSubject{Patch: patch})
	updated, _ := st.SubjectByID(subjectID)
	return updated, nil
}

// DeleteSubject removes a subject and every task referencing it.
func (s *ScheduleService) DeleteSubject(ctx context.Context, userID uuid.UUID, subjectID string) error {
	if _, ok := s.Snapshot(ctx, userID).SubjectByID(subjectID); !ok {
		return entities.ErrSubjectNotFound
	}

	s.dispatch(ctx, userID, store.DeleteSubject{ID: subjectID})
	s.logger.Infow("Subject deleted", "subject_id", subjectID, "user_id", userID.String())
	return nil
}

// Subjects lists the user's subjects.
func (s *ScheduleService) Subjects(ctx context.Context, userID uuid.UUID) []entities.Subject {
	return s.Snapshot(ctx, userID).Subjects
}

// CreateTask validates and adds a task. An empty title is rejected before
// any command reaches the store.
func (s *ScheduleService) CreateTask(ctx context.Context, userID uuid.UUID, req ports.CreateTaskRequest) (entities.Task, error) {
	if req.Title == "" {
		return entities.Task{}, entities.ErrEmptyTitle
	}
	for _, off := range req.Reminders {
		if !off.Unit.IsValid() || off.Amount <= 0 {
			return entities.Task{}, entities.ErrInvalidOffsetUnit
		}
	}
	taskType := req.Type
	if taskType == "" {
		taskType = entities.TaskTypeDeadline
	}
	if !taskType.IsValid() {
		return entities.Task{}, entities.ErrInvalidTaskType
	}

	now := s.clock.Now()
	task := entities.Task{
		ID:          newID(),
		SubjectID:   req.SubjectID,
		Title:       req.Title,
		Detail:      req.Detail,
		Type:        taskType,
		StartAt:     req.StartAt,
		DueAt:       req.DueAt,
		DurationMin: req.DurationMin,
		Link:        req.Link,
		Status:      entities.TaskStatusTodo,
		Category:    req.Category,
		Reminders:   req.Reminders,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	st, _ := s.dispatch(ctx, userID, store.AddTask{Task: task})
	created, ok := st.TaskByID(task.ID)
	if !ok {
		return entities.Task{}, fmt.Errorf("failed to add task")
	}

	s.logger.Infow("Task created", "task_id", task.ID, "title", task.Title, "user_id", userID.String())
	return created, nil
}

// UpdateTask merges a partial edit into an existing task. A full-record
// edit does not bypass the undo-window rule: a status change on a task
// archived past the window is rejected, though its other fields stay
// editable.
func (s *ScheduleService) UpdateTask(ctx context.Context, userID uuid.UUID, taskID string, req ports.UpdateTaskRequest) (entities.Task, error) {
	task, ok := s.Snapshot(ctx, userID).TaskByID(taskID)
	if !ok {
		return entities.Task{}, entities.ErrTaskNotFound
	}
	if req.Status != nil && *req.Status != task.Status && task.IsArchived(s.clock.Now()) {
		return entities.Task{}, entities.ErrUndoWindowExpired
	}
	if req.Title != nil && *req.Title == "" {
		return entities.Task{}, entities.ErrEmptyTitle
	}
	for _, off := range req.Reminders {
		if !off.Unit.IsValid() || off.Amount <= 0 {
			return entities.Task{}, entities.ErrInvalidOffsetUnit
		}
	}

	patch := store.TaskPatch{
		ID:          taskID,
		SubjectID:   req.SubjectID,
		Title:       req.Title,
		Detail:      req.Detail,
		Type:        req.Type,
		StartAt:     req.StartAt,
		DueAt:       req.DueAt,
		ClearStart:  req.ClearStart,
		ClearDue:    req.ClearDue,
		DurationMin: req.DurationMin,
		Link:        req.Link,
		Status:      req.Status,
		Category:    req.Category,
		Reminders:   req.Reminders,
	}
	st, _ := s.dispatch(ctx, userID, store.UpdateTask{Patch: patch})
	updated, _ := st.TaskByID(taskID)
	return updated, nil
}

// DeleteTask removes a task. Deleting an archived task takes the same path.
func (s *ScheduleService) DeleteTask(ctx context.Context, userID uuid.UUID, taskID string) error {
	if _, ok := s.Snapshot(ctx, userID).TaskByID(taskID); !ok {
		return entities.ErrTaskNotFound
	}

	s.dispatch(ctx, userID, store.DeleteTask{ID: taskID})
	s.logger.Infow("Task deleted", "task_id", taskID, "user_id", userID.String())
	return nil
}

// AdvanceTaskStatus cycles a task's status one step, honoring the
// undo-window guard on completed tasks.
func (s *ScheduleService) AdvanceTaskStatus(ctx context.Context, userID uuid.UUID, taskID string) (entities.Task, error) {
	task, ok := s.Snapshot(ctx, userID).TaskByID(taskID)
	if !ok {
		return entities.Task{}, entities.ErrTaskNotFound
	}

	advanced, err := schedule.Advance(task, s.clock.Now())
	if err != nil {
		return task, err
	}

	patch := store.TaskPatch{ID: taskID, Status: &advanced.Status}
	st, _ := s.dispatch(ctx, userID, store.UpdateTask{Patch: patch})
	updated, _ := st.TaskByID(taskID)
	return updated, nil
}

// Tasks runs the active-list query.
func (s *ScheduleService) Tasks(ctx context.Context, userID uuid.UUID, q ports.TaskQuery) []entities.Task {
	st := s.Snapshot(ctx, userID)
	return schedule.Query(st.Tasks, schedule.QueryFilter{SubjectID: q.SubjectID, Text: q.Text}, s.clock.Now())
}

// ArchivedTasks returns the history view.
func (s *ScheduleService) ArchivedTasks(ctx context.Context, userID uuid.UUID) []entities.Task {
	st := s.Snapshot(ctx, userID)
	return schedule.Archived(st.Tasks, s.clock.Now())
}

// Agenda builds the day view for a calendar day. A zero day means today
// per the injected clock.
func (s *ScheduleService) Agenda(ctx context.Context, userID uuid.UUID, day time.Time) []schedule.AgendaItem {
	if day.IsZero() {
		day = s.clock.Now()
	}
	st := s.Snapshot(ctx, userID)
	return schedule.BuildAgenda(st.Tasks, day)
}

// Calendar computes the month-grid indicators for the month containing
// ref. A zero ref means the current month per the injected clock.
func (s *ScheduleService) Calendar(ctx context.Context, userID uuid.UUID, ref time.Time) []schedule.DayIndicators {
	if ref.IsZero() {
		ref = s.clock.Now()
	}
	st := s.Snapshot(ctx, userID)
	return schedule.Indicators(schedule.MonthGrid(ref), st.Tasks)
}

// Summary returns the dashboard counts.
func (s *ScheduleService) Summary(ctx context.Context, userID uuid.UUID) schedule.Summary {
	st := s.Snapshot(ctx, userID)
	return schedule.Summarize(st.Tasks, s.clock.Now())
}

// Export serializes the user's State document for manual backup.
func (s *ScheduleService) Export(ctx context.Context, userID uuid.UUID) (json.RawMessage, error) {
	doc, err := json.Marshal(s.Snapshot(ctx, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to serialize state: %w", err)
	}
	return doc, nil
}

// Import replaces the State from an external document through the Load
// command, so the same defensive validation applies. persisted reports
// whether the imported state reached the document store.
func (s *ScheduleService) Import(ctx context.Context, userID uuid.UUID, doc json.RawMessage) (entities.State, bool) {
	return s.dispatch(ctx, userID, store.Load{Doc: doc})
}

// RecordLogin maintains the login streak: same day is a no-op, a
// consecutive day increments, anything else resets to 1.
func (s *ScheduleService) RecordLogin(ctx context.Context, userID uuid.UUID) int {
	st := s.Snapshot(ctx, userID)
	now := s.clock.Now()
	today := entities.DayStart(now)

	streak := 1
	if st.LastLoginDate != nil {
		last := entities.DayStart(*st.LastLoginDate)
		switch {
		case last.Equal(today):
			return st.LoginStreak
		case last.AddDate(0, 0, 1).Equal(today):
			streak = st.LoginStreak + 1
		}
	}

	next, _ := s.dispatch(ctx, userID, store.SetLoginStreak{Date: today, Streak: streak})
	return next.LoginStreak
}

// Reset clears a user's in-memory State and armed reminders on sign-out.
// The persisted document is left untouched.
func (s *ScheduleService) Reset(ctx context.Context, userID uuid.UUID) {
	s.mu.Lock()
	delete(s.states, userID.String())
	s.mu.Unlock()
	s.reminders.CancelUser(userID.String())
}

// newID generates a short random opaque record token.
func newID() string {
	return uuid.NewString()[:8]
}
