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

// OKRHandler serves owner-scoped CRUD over OKRs
type OKRHandler struct {
	store *repository.Store[model.OKR]
}

func NewOKRHandler(db *gorm.DB) *OKRHandler {
	return &OKRHandler{store: repository.NewStore[model.OKR](db, "owner_id")}
}

type okrCreateRequest struct {
	Objective  string     `json:"objective"`
	KeyResults string     `json:"key_results"`
	Period     *string    `json:"period"`
	Status     string     `json:"status"`
	ProjectID  *uuid.UUID `json:"project_id"`
}

type okrUpdateRequest struct {
	Objective  *string    `json:"objective"`
	KeyResults *string    `json:"key_results"`
	Period     *string    `json:"period"`
	Status     *string    `json:"status"`
	ProjectID  *uuid.UUID `json:"project_id"`
}

func (h *OKRHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("okr", "list")

	defer prometheus.TrackDBOperation("query")(time.Now())
	okrs, err := h.store.ListForOwner(c.Request().Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		log.Error("Failed to list OKRs", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve okrs"})
	}

	return c.JSON(http.StatusOK, okrs)
}

func (h *OKRHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("okr", "get")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid okr id"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	okr, err := h.store.Get(c.Request().Context(), id, middleware.CurrentUser(c).ID)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "okr not found"})
	}
	if err != nil {
		log.Error("Failed to get OKR", zap.String("okr_id", id.String()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve okr"})
	}

	return c.JSON(http.StatusOK, okr)
}

func (h *OKRHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("okr", "create")

	var req okrCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.Objective == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "objective is required"})
	}

	okr := model.OKR{
		Objective:  req.Objective,
		KeyResults: req.KeyResults,
		Period:     req.Period,
		Status:     req.Status,
		ProjectID:  req.ProjectID,
		OwnerID:    middleware.CurrentUser(c).ID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.store.Create(c.Request().Context(), &okr); err != nil {
		log.Error("Failed to create OKR", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create okr"})
	}

	log.Info("OKR created", zap.String("okr_id", okr.ID.String()), zap.String("objective", okr.Objective))
	return c.JSON(http.StatusCreated, okr)
}

func (h *OKRHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("okr", "update")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid okr id"})
	}

	var req okrUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	fields := map[string]interface{}{}
	if req.Objective != nil {
		fields["objective"] = *req.Objective
	}
	if req.KeyResults != nil {
		fields["key_results"] = *req.KeyResults
	}
	if req.Period != nil {
		fields["period"] = *req.Period
	}
	if req.Status != nil {
		fields["status"] = *req.Status
	}
	if req.ProjectID != nil {
		fields["project_id"] = *req.ProjectID
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	okr, err := h.store.Update(c.Request().Context(), id, middleware.CurrentUser(c).ID, fields)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "okr not found"})
	}
	if err != nil {
		log.Error("Failed to update OKR", zap.String("okr_id", id.String()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update okr"})
	}

	return c.JSON(http.StatusOK, okr)
}

func (h *OKRHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("okr", "delete")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid okr id"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.store.Delete(c.Request().Context(), id, middleware.CurrentUser(c).ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "okr not found"})
		}
		log.Error("Failed to delete OKR", zap.String("okr_id", id.String()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete okr"})
	}

	return c.JSON(http.StatusOK, echo.Map{"detail": "okr deleted"})
}
