package ports

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Boundary errors
var (
	ErrStateNotFound = errors.New("state document not found")
	ErrUserNotFound  = errors.New("user not found")
)

// StateRepository is the remote persistence collaborator. It stores one
// serialized State document per user. Load returning ErrStateNotFound means
// "start from the empty State"; Save failures are non-fatal to the caller.
type StateRepository interface {
	Load(ctx context.Context, userID uuid.UUID) (json.RawMessage, error)
	Save(ctx context.Context, userID uuid.UUID, doc json.RawMessage) error
}

// UserRepository holds the account records behind the auth boundary.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// User is an account record. Schedule data itself is single-owner; users
// exist only so state documents have somewhere to hang off.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	DisplayName  string    `json:"display_name" db:"display_name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// PermissionState mirrors the notification capability's tri-state.
type PermissionState string

const (
	PermissionGranted      PermissionState = "granted"
	PermissionDenied       PermissionState = "denied"
	PermissionUndetermined PermissionState = "undetermined"
)

// Notifier is the notification capability. Fire is only called when the
// permission state is granted; a missing or denied capability silently
// disables reminders.
type Notifier interface {
	PermissionState() PermissionState
	RequestPermission() PermissionState
	Fire(title, body string) error
}

// Clock supplies the current instant. Derived views sample it per
// recomputation and never cache it across calls.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }
