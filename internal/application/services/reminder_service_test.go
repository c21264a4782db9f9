package services

import (
	"sync"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/planwise/core/internal/domain/entities"
	"github.com/planwise/core/internal/domain/schedule"
	"github.com/planwise/core/internal/infrastructure/logger"
	"github.com/planwise/core/internal/ports"
)

type fakeNotifier struct {
	mu    sync.Mutex
	state ports.PermissionState
	fired []string
}

func (f *fakeNotifier) PermissionState() ports.PermissionState { return f.state }
func (f *fakeNotifier) RequestPermission() ports.PermissionState {
	return f.state
}
func (f *fakeNotifier) Fire(title, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fired = append(f.fired, title)
	return nil
}

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)

func newTestReminderService(state ports.PermissionState) (*ReminderService, *fakeNotifier) {
	notifier := &fakeNotifier{state: state}
	clock := ports.ClockFunc(func() time.Time { return testNow })
	svc := NewReminderService(notifier, clock, logger.NewNop())
	return svc, notifier
}

func stateWithReminder(taskID string, due time.Time, offs ...entities.ReminderOffset) entities.State {
	st := entities.Empty()
	st.Tasks = append(st.Tasks, entities.Task{
		ID:        taskID,
		Title:     "Essay draft",
		Type:      entities.TaskTypeDeadline,
		Status:    entities.TaskStatusTodo,
		DueAt:     &due,
		Reminders: offs,
	})
	return st
}

func TestReminderSync_ArmsFutureReminders(t *testing.T) {
	is := is.New(t)

	svc, _ := newTestReminderService(ports.PermissionGranted)
	defer svc.Close()

	st := stateWithReminder("t1", testNow.Add(2*time.Hour),
		entities.ReminderOffset{Unit: entities.OffsetUnitMinutes, Amount: 30},
		entities.ReminderOffset{Unit: entities.OffsetUnitHours, Amount: 1},
	)
	svc.Sync("u1", st)

	is.Equal(svc.armedCount("u1"), 2)
	delay, ok := svc.armedDelay(reminderKey{UserID: "u1", TaskID: "t1", Unit: entities.OffsetUnitMinutes, Amount: 30})
	is.True(ok)
	is.Equal(delay, 90*time.Minute)
}

func TestReminderSync_SkipsPastReminders(t *testing.T) {
	is := is.New(t)

	svc, _ := newTestReminderService(ports.PermissionGranted)
	defer svc.Close()

	st := stateWithReminder("t1", testNow.Add(10*time.Minute),
		entities.ReminderOffset{Unit: entities.OffsetUnitHours, Amount: 1},
	)
	svc.Sync("u1", st)

	is.Equal(svc.armedCount("u1"), 0)
}

func TestReminderSync_ClampsLongDelays(t *testing.T) {
	is := is.New(t)

	svc, _ := newTestReminderService(ports.PermissionGranted)
	defer svc.Close()

	st := stateWithReminder("t1", testNow.AddDate(0, 0, 40),
		entities.ReminderOffset{Unit: entities.OffsetUnitMinutes, Amount: 5},
	)
	svc.Sync("u1", st)

	delay, ok := svc.armedDelay(reminderKey{UserID: "u1", TaskID: "t1", Unit: entities.OffsetUnitMinutes, Amount: 5})
	is.True(ok)
	is.Equal(delay, schedule.MaxTimerDelay)
}

func TestReminderSync_ReplacesOnDueChange(t *testing.T) {
	is := is.New(t)

	svc, _ := newTestReminderService(ports.PermissionGranted)
	defer svc.Close()

	off := entities.ReminderOffset{Unit: entities.OffsetUnitMinutes, Amount: 30}
	key := reminderKey{UserID: "u1", TaskID: "t1", Unit: off.Unit, Amount: off.Amount}

	svc.Sync("u1", stateWithReminder("t1", testNow.Add(2*time.Hour), off))
	first, _ := svc.armedDelay(key)
	is.Equal(first, 90*time.Minute)

	// the due instant moves; the timer is cancelled and re-armed
	svc.Sync("u1", stateWithReminder("t1", testNow.Add(4*time.Hour), off))
	is.Equal(svc.armedCount("u1"), 1)
	second, _ := svc.armedDelay(key)
	is.Equal(second, 210*time.Minute)

	// an identical sync leaves the timer alone
	svc.Sync("u1", stateWithReminder("t1", testNow.Add(4*time.Hour), off))
	is.Equal(svc.armedCount("u1"), 1)
}

func TestReminderSync_RemovedReminderIsCancelled(t *testing.T) {
	is := is.New(t)

	svc, _ := newTestReminderService(ports.PermissionGranted)
	defer svc.Close()

	off := entities.ReminderOffset{Unit: entities.OffsetUnitMinutes, Amount: 30}
	svc.Sync("u1", stateWithReminder("t1", testNow.Add(2*time.Hour), off))
	is.Equal(svc.armedCount("u1"), 1)

	svc.Sync("u1", stateWithReminder("t1", testNow.Add(2*time.Hour)))
	is.Equal(svc.armedCount("u1"), 0)
}

func TestReminderSync_DeniedPermissionClearsTimers(t *testing.T) {
	is := is.New(t)

	svc, notifier := newTestReminderService(ports.PermissionGranted)
	defer svc.Close()

	off := entities.ReminderOffset{Unit: entities.OffsetUnitMinutes, Amount: 30}
	st := stateWithReminder("t1", testNow.Add(2*time.Hour), off)
	svc.Sync("u1", st)
	is.Equal(svc.armedCount("u1"), 1)

	// permission is revoked; the next sync arms nothing and clears what was armed
	notifier.state = ports.PermissionDenied
	svc.Sync("u1", st)
	is.Equal(svc.armedCount("u1"), 0)
}

func TestReminderSync_IsolatesUsers(t *testing.T) {
	is := is.New(t)

	svc, _ := newTestReminderService(ports.PermissionGranted)
	defer svc.Close()

	off := entities.ReminderOffset{Unit: entities.OffsetUnitMinutes, Amount: 30}
	svc.Sync("u1", stateWithReminder("t1", testNow.Add(2*time.Hour), off))
	svc.Sync("u2", stateWithReminder("t1", testNow.Add(3*time.Hour), off))
	is.Equal(svc.armedCount("u1"), 1)
	is.Equal(svc.armedCount("u2"), 1)

	svc.CancelUser("u1")
	is.Equal(svc.armedCount("u1"), 0)
	is.Equal(svc.armedCount("u2"), 1)
}

func TestReminderFire_DeliversAndForgets(t *testing.T) {
	is := is.New(t)

	svc, notifier := newTestReminderService(ports.PermissionGranted)
	defer svc.Close()

	key := reminderKey{UserID: "u1", TaskID: "t1", Unit: entities.OffsetUnitMinutes, Amount: 30}
	svc.armed[key] = armedReminder{timer: time.NewTimer(time.Hour)}
	svc.fire(key, "Upcoming: Essay draft", "Essay draft")

	notifier.mu.Lock()
	fired := len(notifier.fired)
	notifier.mu.Unlock()
	is.Equal(fired, 1)
	is.Equal(svc.armedCount("u1"), 0)
}
