package handler

import (
	"errors"
	"net/http"
	"time"

	"teampulse-api/internal/middleware"
	"teampulse-api/internal/model"
	"teampulse-api/internal/repository"
	"teampulse-api/pkg/logger"
	"teampulse-api/prometheus"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TaskHandler serves owner-scoped CRUD over tasks
type TaskHandler struct {
	store *repository.Store[model.Task]
}

func NewTaskHandler(db *gorm.DB) *TaskHandler {
	return &TaskHandler{store: repository.NewStore[model.Task](db, "owner_id")}
}

type taskCreateRequest struct {
	Title      string     `json:"title"`
	ProjectID  uuid.UUID  `json:"project_id"`
	AssigneeID *uuid.UUID `json:"assignee_id"`
}

type taskUpdateRequest struct {
	Title      *string    `json:"title"`
	ProjectID  *uuid.UUID `json:"project_id"`
	AssigneeID *uuid.UUID `json:"assignee_id"`
}

func (h *TaskHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("task", "list")

	defer prometheus.TrackDBOperation("query")(time.Now())
	tasks, err := h.store.ListForOwner(c.Request().Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		log.Error("Failed to list tasks", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve tasks"})
	}

	return c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("task", "get")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid task id"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	task, err := h.store.Get(c.Request().Context(), id, middleware.CurrentUser(c).ID)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found"})
	}
	if err != nil {
		log.Error("Failed to get task", zap.String("task_id", id.String()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve task"})
	}

	return c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("task", "create")

	var req taskCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.Title == "" || req.ProjectID == uuid.Nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and project_id are required"})
	}

	task := model.Task{
		Title:      req.Title,
		ProjectID:  req.ProjectID,
		AssigneeID: req.AssigneeID,
		OwnerID:    middleware.CurrentUser(c).ID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.store.Create(c.Request().Context(), &task); err != nil {
		log.Error("Failed to create task", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create task"})
	}

	log.Info("Task created", zap.String("task_id", task.ID.String()), zap.String("title", task.Title))
	return c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("task", "update")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid task id"})
	}

	var req taskUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.ProjectID != nil {
		fields["project_id"] = *req.ProjectID
	}
	if req.AssigneeID != nil {
		fields["assignee_id"] = *req.AssigneeID
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	task, err := h.store.Update(c.Request().Context(), id, middleware.CurrentUser(c).ID, fields)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found"})
	}
	if err != nil {
		log.Error("Failed to update task", zap.String("task_id", id.String()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update task"})
	}

	return c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("task", "delete")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid task id"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.store.Delete(c.Request().Context(), id, middleware.CurrentUser(c).ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found"})
		}
		log.Error("Failed to delete task", zap.String("task_id", id.String()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete task"})
	}

	return c.JSON(http.StatusOK, echo.Map{"detail": "task deleted"})
}
