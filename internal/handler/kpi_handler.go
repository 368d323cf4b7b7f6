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

// KPIHandler serves owner-scoped CRUD over KPIs
type KPIHandler struct {
	store *repository.Store[model.KPI]
}

func NewKPIHandler(db *gorm.DB) *KPIHandler {
	return &KPIHandler{store: repository.NewStore[model.KPI](db, "owner_id")}
}

type kpiCreateRequest struct {
	Name         string     `json:"name"`
	TargetValue  *float64   `json:"target_value"`
	CurrentValue *float64   `json:"current_value"`
	Unit         string     `json:"unit"`
	ProjectID    *uuid.UUID `json:"project_id"`
}

type kpiUpdateRequest struct {
	Name         *string    `json:"name"`
	TargetValue  *float64   `json:"target_value"`
	CurrentValue *float64   `json:"current_value"`
	Unit         *string    `json:"unit"`
	ProjectID    *uuid.UUID `json:"project_id"`
}

func (h *KPIHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("kpi", "list")

	defer prometheus.TrackDBOperation("query")(time.Now())
	kpis, err := h.store.ListForOwner(c.Request().Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		log.Error("Failed to list KPIs", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve kpis"})
	}

	return c.JSON(http.StatusOK, kpis)
}

func (h *KPIHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("kpi", "get")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid kpi id"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	kpi, err := h.store.Get(c.Request().Context(), id, middleware.CurrentUser(c).ID)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "kpi not found"})
	}
	if err != nil {
		log.Error("Failed to get KPI", zap.String("kpi_id", id.String()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve kpi"})
	}

	return c.JSON(http.StatusOK, kpi)
}

func (h *KPIHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("kpi", "create")

	var req kpiCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.Name == "" || req.TargetValue == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and target_value are required"})
	}

	kpi := model.KPI{
		Name:         req.Name,
		TargetValue:  *req.TargetValue,
		CurrentValue: req.CurrentValue,
		Unit:         req.Unit,
		ProjectID:    req.ProjectID,
		OwnerID:      middleware.CurrentUser(c).ID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.store.Create(c.Request().Context(), &kpi); err != nil {
		log.Error("Failed to create KPI", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create kpi"})
	}

	log.Info("KPI created", zap.String("kpi_id", kpi.ID.String()), zap.String("name", kpi.Name))
	return c.JSON(http.StatusCreated, kpi)
}

func (h *KPIHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("kpi", "update")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid kpi id"})
	}

	var req kpiUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.TargetValue != nil {
		fields["target_value"] = *req.TargetValue
	}
	if req.CurrentValue != nil {
		fields["current_value"] = *req.CurrentValue
	}
	if req.Unit != nil {
		fields["unit"] = *req.Unit
	}
	if req.ProjectID != nil {
		fields["project_id"] = *req.ProjectID
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	kpi, err := h.store.Update(c.Request().Context(), id, middleware.CurrentUser(c).ID, fields)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "kpi not found"})
	}
	if err != nil {
		log.Error("Failed to update KPI", zap.String("kpi_id", id.String()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update kpi"})
	}

	return c.JSON(http.StatusOK, kpi)
}

func (h *KPIHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("kpi", "delete")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid kpi id"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.store.Delete(c.Request().Context(), id, middleware.CurrentUser(c).ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "kpi not found"})
		}
		log.Error("Failed to delete KPI", zap.String("kpi_id", id.String()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete kpi"})
	}

	return c.JSON(http.StatusOK, echo.Map{"detail": "kpi deleted"})
}
