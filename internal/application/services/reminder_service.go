package services

import (
	"sync"
	"time"

	"github.com/planwise/core/internal/domain/entities"
	"github.com/planwise/core/internal/domain/schedule"
	"github.com/planwise/core/internal/infrastructure/logger"
	"github.com/planwise/core/internal/ports"
)

// reminderKey identifies one armed reminder timer. Keying by task id plus
// offset lets a state sync cancel and replace exactly the reminders whose
// underlying task or offset changed, instead of re-arming everything.
type reminderKey struct {
	UserID string
	TaskID string
	Unit   entities.OffsetUnit
	Amount int
}

type armedReminder struct {
	timer  *time.Timer
	fireAt time.Time
	delay  time.Duration
}

// ReminderService arranges one-shot notifications for task reminders. It
// owns a registry of armed timers and reconciles it against the current
// State on every sync.
type ReminderService struct {
	mu       sync.Mutex
	notifier ports.Notifier
	clock    ports.Clock
	logger   *logger.Logger
	armed    map[reminderKey]armedReminder
}

// NewReminderService creates a new reminder service
func NewReminderService(notifier ports.Notifier, clock ports.Clock, appLogger *logger.Logger) *ReminderService {
	return &ReminderService{
		notifier: notifier,
		clock:    clock,
		logger:   appLogger.WithComponent("reminders"),
		armed:    make(map[reminderKey]armedReminder),
	}
}

// Sync reconciles armed timers for one user against a State snapshot.
// Timers whose reminder disappeared or whose fire time moved are cancelled;
// missing reminders with a future fire time are armed. Without permission
// to notify the whole pass is a silent no-op that still clears stale
// timers.
func (s *ReminderService) Sync(userID string, st entities.State) {
	now := s.clock.Now()

	type pending struct {
		key    reminderKey
		fireAt time.Time
		delay  time.Duration
		title  string
		body   string
	}

	desired := make(map[reminderKey]pending)
	if s.notifier.PermissionState() == ports.PermissionGranted {
		for _, t := range st.Tasks {
			if t.DueAt == nil || len(t.Reminders) == 0 {
				continue
			}
			body := t.Title
			if sub, ok := st.SubjectByID(t.SubjectID); ok {
				body = t.Title + " - " + sub.Name
			}
			for _, off := range t.Reminders {
				delay, ok := schedule.ReminderDelay(*t.DueAt, off, now)
				if !ok {
					continue
				}
				key := reminderKey{UserID: userID, TaskID: t.ID, Unit: off.Unit, Amount: off.Amount}
				desired[key] = pending{
					key:    key,
					fireAt: schedule.FireTime(*t.DueAt, off),
					delay:  delay,
					title:  "Upcoming: " + t.Title,
					body:   body,
				}
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, armed := range s.armed {
		if key.UserID != userID {
			continue
		}
		want, ok := desired[key]
		if ok && want.fireAt.Equal(armed.fireAt) {
			delete(desired, key) // already armed correctly
			continue
		}
		armed.timer.Stop()
		delete(s.armed, key)
	}

	for key, want := range desired {
		key, want := key, want
		timer := time.AfterFunc(want.delay, func() {
			s.fire(key, want.title, want.body)
		})
		s.armed[key] = armedReminder{timer: timer, fireAt: want.fireAt, delay: want.delay}
	}
}

// CancelUser drops every armed timer for a user, e.g. on sign-out.
func (s *ReminderService) CancelUser(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, armed := range s.armed {
		if key.UserID == userID {
			armed.timer.Stop()
			delete(s.armed, key)
		}
	}
}

// Close stops all armed timers.
func (s *ReminderService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, armed := range s.armed {
		armed.timer.Stop()
		delete(s.armed, key)
	}
}

func (s *ReminderService) fire(key reminderKey, title, body string) {
	s.mu.Lock()
	delete(s.armed, key)
	s.mu.Unlock()

	if s.notifier.PermissionState() != ports.PermissionGranted {
		return
	}
	if err := s.notifier.Fire(title, body); err != nil {
		s.logger.Warnw("Failed to deliver reminder", "error", err, "task_id", key.TaskID)
	}
}

// armedCount reports the number of timers currently held for a user.
func (s *ReminderService) armedCount(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for key := range s.armed {
		if key.UserID == userID {
			n++
		}
	}
	return n
}

// armedDelay returns the timer delay a key is armed with, if any.
func (s *ReminderService) armedDelay(key reminderKey) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	armed, ok := s.armed[key]
	if !ok {
		return 0, false
	}
	return armed.delay, true
}
