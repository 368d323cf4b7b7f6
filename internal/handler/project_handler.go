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

// ProjectHandler serves owner-scoped CRUD over projects
type ProjectHandler struct {
	store *repository.Store[model.Project]
}

func NewProjectHandler(db *gorm.DB) *ProjectHandler {
	return &ProjectHandler{store: repository.NewStore[model.Project](db, "owner_id")}
}

type projectCreateRequest struct {
	Name     string    `json:"name"`
	ClientID uuid.UUID `json:"client_id"`
}

type projectUpdateRequest struct {
	Name     *string    `json:"name"`
	ClientID *uuid.UUID `json:"client_id"`
}

func (h *ProjectHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("project", "list")

	defer prometheus.TrackDBOperation("query")(time.Now())
	projects, err := h.store.ListForOwner(c.Request().Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		log.Error("Failed to list projects", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve projects"})
	}

	return c.JSON(http.StatusOK, projects)
}

func (h *ProjectHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("project", "get")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid project id"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	project, err := h.store.Get(c.Request().Context(), id, middleware.CurrentUser(c).ID)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
	}
	if err != nil {
		log.Error("Failed to get project", zap.String("project_id", id.String()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve project"})
	}

	return c.JSON(http.StatusOK, project)
}

func (h *ProjectHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("project", "create")

	var req projectCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.Name == "" || req.ClientID == uuid.Nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and client_id are required"})
	}

	project := model.Project{
		Name:     req.Name,
		ClientID: req.ClientID,
		OwnerID:  middleware.CurrentUser(c).ID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.store.Create(c.Request().Context(), &project); err != nil {
		log.Error("Failed to create project", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create project"})
	}

	log.Info("Project created", zap.String("project_id", project.ID.String()), zap.String("name", project.Name))
	return c.JSON(http.StatusCreated, project)
}

func (h *ProjectHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("project", "update")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid project id"})
	}

	var req projectUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.ClientID != nil {
		fields["client_id"] = *req.ClientID
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	project, err := h.store.Update(c.Request().Context(), id, middleware.CurrentUser(c).ID, fields)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
	}
	if err != nil {
		log.Error("Failed to update project", zap.String("project_id", id.String()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update project"})
	}

	return c.JSON(http.StatusOK, project)
}

func (h *ProjectHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("project", "delete")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid project id"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.store.Delete(c.Request().Context(), id, middleware.CurrentUser(c).ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
		}
		log.Error("Failed to delete project", zap.String("project_id", id.String()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete project"})
	}

	return c.JSON(http.StatusOK, echo.Map{"detail": "project deleted"})
}
