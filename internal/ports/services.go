package ports

import (
	"time"

	"github.com/planwise/core/internal/domain/entities"
)

// Request/Response Types

// Auth related types
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"display_name" validate:"omitempty,max=100"`
	Password    string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	User        *User  `json:"user"`
}

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Subject related types
type CreateSubjectRequest struct {
	Name  string `json:"name" validate:"required,max=120"`
	Color string `json:"color" validate:"omitempty,max=32"`
}

type UpdateSubjectRequest struct {
	Name  *string `json:"name" validate:"omitempty,max=120"`
	Color *string `json:"color" validate:"omitempty,max=32"`
}

// Task related types
type CreateTaskRequest struct {
	SubjectID   string                    `json:"subjectId"`
	Title       string                    `json:"title" validate:"required,max=300"`
	Detail      string                    `json:"detail"`
	Type        entities.TaskType         `json:"taskType" validate:"omitempty,oneof=deadline event"`
	StartAt     *time.Time                `json:"startAt"`
	DueAt       *time.Time                `json:"dueAt"`
	DurationMin int                       `json:"duration" validate:"omitempty,min=1"`
	Link        string                    `json:"link"`
	Category    entities.TaskCategory     `json:"category" validate:"omitempty,oneof=study work personal"`
	Reminders   []entities.ReminderOffset `json:"reminders" validate:"omitempty,dive"`
}

type UpdateTaskRequest struct {
	SubjectID   *string                   `json:"subjectId"`
	Title       *string                   `json:"title" validate:"omitempty,max=300"`
	Detail      *string                   `json:"detail"`
	Type        *entities.TaskType        `json:"taskType" validate:"omitempty,oneof=deadline event"`
	StartAt     *time.Time                `json:"startAt"`
	DueAt       *time.Time                `json:"dueAt"`
	ClearStart  bool                      `json:"clearStart"`
	ClearDue    bool                      `json:"clearDue"`
	DurationMin *int                      `json:"duration" validate:"omitempty,min=1"`
	Link        *string                   `json:"link"`
	Status      *entities.TaskStatus      `json:"status" validate:"omitempty,oneof=todo doing done"`
	Category    *entities.TaskCategory    `json:"category" validate:"omitempty,oneof=study work personal"`
	Reminders   []entities.ReminderOffset `json:"reminders" validate:"omitempty,dive"`
}

// Query related types
type TaskQuery struct {
	SubjectID string
	Text      string
}
