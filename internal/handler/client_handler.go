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

// ClientHandler serves owner-scoped CRUD over tenants
type ClientHandler struct {
	store *repository.Store[model.Client]
}

func NewClientHandler(db *gorm.DB) *ClientHandler {
	return &ClientHandler{store: repository.NewStore[model.Client](db, "owner_id")}
}

type clientCreateRequest struct {
	Name             string                 `json:"name"`
	SubscriptionTier model.SubscriptionTier `json:"subscription_tier,omitempty"`
	MaxEmployees     int                    `json:"max_employees,omitempty"`
}

type clientUpdateRequest struct {
	Name             *string                 `json:"name"`
	SubscriptionTier *model.SubscriptionTier `json:"subscription_tier"`
	MaxEmployees     *int                    `json:"max_employees"`
}

// List returns all tenants owned by the requester
func (h *ClientHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("client", "list")

	defer prometheus.TrackDBOperation("query")(time.Now())
	clients, err := h.store.ListForOwner(c.Request().Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		log.Error("Failed to list clients", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve clients"})
	}

	return c.JSON(http.StatusOK, clients)
}

// Get returns one tenant if owned by the requester
func (h *ClientHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("client", "get")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid client id"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	client, err := h.store.Get(c.Request().Context(), id, middleware.CurrentUser(c).ID)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "client not found"})
	}
	if err != nil {
		log.Error("Failed to get client", zap.String("client_id", id.String()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve client"})
	}

	return c.JSON(http.StatusOK, client)
}

// Create adds a new tenant owned by the requester
func (h *ClientHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("client", "create")

	var req clientCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	client := model.Client{
		Name:             req.Name,
		SubscriptionTier: req.SubscriptionTier,
		MaxEmployees:     req.MaxEmployees,
		OwnerID:          middleware.CurrentUser(c).ID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.store.Create(c.Request().Context(), &client); err != nil {
		log.Error("Failed to create client", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create client"})
	}

	log.Info("Client created", zap.String("client_id", client.ID.String()), zap.String("name", client.Name))
	return c.JSON(http.StatusCreated, client)
}

// Update applies a merge-patch to a tenant
func (h *ClientHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("client", "update")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid client id"})
	}

	var req clientUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.SubscriptionTier != nil {
		fields["subscription_tier"] = *req.SubscriptionTier
	}
	if req.MaxEmployees != nil {
		fields["max_employees"] = *req.MaxEmployees
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	client, err := h.store.Update(c.Request().Context(), id, middleware.CurrentUser(c).ID, fields)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "client not found"})
	}
	if err != nil {
		log.Error("Failed to update client", zap.String("client_id", id.String()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update client"})
	}

	return c.JSON(http.StatusOK, client)
}

// Delete removes a tenant if owned by the requester
func (h *ClientHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("client", "delete")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid client id"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.store.Delete(c.Request().Context(), id, middleware.CurrentUser(c).ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "client not found"})
		}
		log.Error("Failed to delete client", zap.String("client_id", id.String()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete client"})
	}

	return c.JSON(http.StatusOK, echo.Map{"detail": "client deleted"})
}
