package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/planwise/core/internal/application/services"
	"github.com/planwise/core/internal/domain/entities"
	"github.com/planwise/core/internal/infrastructure/logger"
	"github.com/planwise/core/internal/ports"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	authService     *services.AuthService
	scheduleService *services.ScheduleService
	logger          *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, scheduleService *services.ScheduleService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService:     authService,
		scheduleService: scheduleService,
		logger:          logger,
	}
}

// Register handles account creation
func (h *AuthHandler) Register(c echo.Context) error {
	var req ports.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	response, err := h.authService.Register(c.Request().Context(), req)
	if err != nil {
		h.logger.Errorw("Registration failed", "error", err, "email", req.Email)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusCreated, response)
}

// Login handles user login and records the login streak.
func (h *AuthHandler) Login(c echo.Context) error {
	var req ports.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	response, err := h.authService.Login(c.Request().Context(), req)
	if err != nil {
		h.logger.Errorw("Login failed", "error", err, "email", req.Email)
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}

	h.scheduleService.RecordLogin(c.Request().Context(), response.User.ID)

	return c.JSON(http.StatusOK, response)
}

// Logout clears the caller's in-memory schedule state.
func (h *AuthHandler) Logout(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	h.scheduleService.Reset(c.Request().Context(), userID)
	return c.JSON(http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}

// ScheduleHandler handles subject, task, and derived-view requests
type ScheduleHandler struct {
	scheduleService *services.ScheduleService
	logger          *logger.Logger
}

// NewScheduleHandler creates a new schedule handler
func NewScheduleHandler(scheduleService *services.ScheduleService, logger *logger.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleService: scheduleService,
		logger:          logger,
	}
}

// ListSubjects handles listing the caller's subjects
func (h *ScheduleHandler) ListSubjects(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, h.scheduleService.Subjects(c.Request().Context(), userID))
}

// CreateSubject handles subject creation
func (h *ScheduleHandler) CreateSubject(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	var req ports.CreateSubjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	subject, err := h.scheduleService.CreateSubject(c.Request().Context(), userID, req)
	if err != nil {
		h.logger.Errorw("Create subject failed", "error", err, "user_id", userID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create subject")
	}

	return c.JSON(http.StatusCreated, subject)
}

// UpdateSubject handles subject edits
func (h *ScheduleHandler) UpdateSubject(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	var req ports.UpdateSubjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	subject, err := h.scheduleService.UpdateSubject(c.Request().Context(), userID, c.Param("id"), req)
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, subject)
}

// DeleteSubject handles subject deletion, cascading to its tasks
func (h *ScheduleHandler) DeleteSubject(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	if err := h.scheduleService.DeleteSubject(c.Request().Context(), userID, c.Param("id")); err != nil {
		return mapDomainError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// ListTasks handles the active-list query with optional subject and text filters
func (h *ScheduleHandler) ListTasks(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	q := ports.TaskQuery{
		SubjectID: c.QueryParam("subject"),
		Text:      c.QueryParam("q"),
	}
	return c.JSON(http.StatusOK, h.scheduleService.Tasks(c.Request().Context(), userID, q))
}

// ListArchivedTasks handles the history view
func (h *ScheduleHandler) ListArchivedTasks(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, h.scheduleService.ArchivedTasks(c.Request().Context(), userID))
}

// CreateTask handles task creation
func (h *ScheduleHandler) CreateTask(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	var req ports.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.scheduleService.CreateTask(c.Request().Context(), userID, req)
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusCreated, task)
}

// UpdateTask handles partial task edits
func (h *ScheduleHandler) UpdateTask(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	var req ports.UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.scheduleService.UpdateTask(c.Request().Context(), userID, c.Param("id"), req)
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, task)
}

// DeleteTask handles task deletion
func (h *ScheduleHandler) DeleteTask(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	if err := h.scheduleService.DeleteTask(c.Request().Context(), userID, c.Param("id")); err != nil {
		return mapDomainError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// AdvanceTaskStatus cycles a task's status one step
func (h *ScheduleHandler) AdvanceTaskStatus(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	task, err := h.scheduleService.AdvanceTaskStatus(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, task)
}

// GetAgenda handles the day-agenda view; date is YYYY-MM-DD, default today
func (h *ScheduleHandler) GetAgenda(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	var day time.Time
	if raw := c.QueryParam("date"); raw != "" {
		day, err = time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		}
	}

	return c.JSON(http.StatusOK, h.scheduleService.Agenda(c.Request().Context(), userID, day))
}

// GetCalendar handles the month-grid indicator view; month is YYYY-MM,
// default the current month
func (h *ScheduleHandler) GetCalendar(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	var ref time.Time
	if raw := c.QueryParam("month"); raw != "" {
		ref, err = time.ParseInLocation("2006-01", raw, time.Local)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid month, expected YYYY-MM")
		}
	}

	return c.JSON(http.StatusOK, h.scheduleService.Calendar(c.Request().Context(), userID, ref))
}

// GetSummary handles the dashboard counts
func (h *ScheduleHandler) GetSummary(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, h.scheduleService.Summary(c.Request().Context(), userID))
}

// ExportState returns the caller's serialized State document
func (h *ScheduleHandler) ExportState(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	doc, err := h.scheduleService.Export(c.Request().Context(), userID)
	if err != nil {
		h.logger.Errorw("Export failed", "error", err, "user_id", userID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to export state")
	}

	return c.JSONBlob(http.StatusOK, doc)
}

// ImportState replaces the caller's State from an uploaded document.
// Malformed documents degrade to the empty State rather than erroring.
func (h *ScheduleHandler) ImportState(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to read request body")
	}

	state, persisted := h.scheduleService.Import(c.Request().Context(), userID, json.RawMessage(body))
	resp := ImportResponse{
		Subjects:  len(state.Subjects),
		Tasks:     len(state.Tasks),
		Persisted: persisted,
	}
	if !persisted {
		resp.Notice = "imported state could not be saved remotely; it is held in memory"
	}
	return c.JSON(http.StatusOK, resp)
}

// GetStreak returns the caller's login streak
func (h *ScheduleHandler) GetStreak(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	st := h.scheduleService.Snapshot(c.Request().Context(), userID)
	return c.JSON(http.StatusOK, StreakResponse{
		LastLoginDate: st.LastLoginDate,
		LoginStreak:   st.LoginStreak,
	})
}

// Utility functions and helper types

func userIDFromContext(c echo.Context) (uuid.UUID, error) {
	raw, ok := c.Get("user").(string)
	if !ok || raw == "" {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "Missing user identity")
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid user identity")
	}

	return userID, nil
}

// mapDomainError translates domain sentinel errors into HTTP errors.
func mapDomainError(err error) error {
	switch {
	case errors.Is(err, entities.ErrSubjectNotFound), errors.Is(err, entities.ErrTaskNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, entities.ErrEmptyTitle),
		errors.Is(err, entities.ErrInvalidOffsetUnit),
		errors.Is(err, entities.ErrInvalidTaskType):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, entities.ErrUndoWindowExpired):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

// Request/Response types
type MessageResponse struct {
	Message string `json:"message"`
}

type ImportResponse struct {
	Subjects  int    `json:"subjects"`
	Tasks     int    `json:"tasks"`
	Persisted bool   `json:"persisted"`
	Notice    string `json:"notice,omitempty"`
}

type StreakResponse struct {
	LastLoginDate *time.Time `json:"lastLoginDate"`
	LoginStreak   int        `json:"loginStreak"`
}
