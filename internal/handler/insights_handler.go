package handler

import (
	"net/http"
	"time"

	"teampulse-api/internal/service"
	"teampulse-api/pkg/logger"
	"teampulse-api/prometheus"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// InsightsHandler serves reshaped AI sales insights.
type InsightsHandler struct {
	insights *service.InsightsService
}

func NewInsightsHandler(insights *service.InsightsService) *InsightsHandler {
	return &InsightsHandler{insights: insights}
}

// Sales returns the latest per-topic sales insights for a client. A missing
// client_id yields an empty list rather than an error.
func (h *InsightsHandler) Sales(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordReportingQuery("insights_sales")

	raw := c.QueryParam("client_id")
	if raw == "" {
		return c.JSON(http.StatusOK, []service.SalesInsight{})
	}
	clientID, err := uuid.Parse(raw)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid client_id"})
	}

	defer prometheus.TrackDBOperation("reporting_query")(time.Now())
	insights, err := h.insights.SalesInsights(c.Request().Context(), clientID)
	if err != nil {
		log.Error("Failed to query sales insights",
			zap.String("client_id", clientID.String()),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve insights"})
	}

	return c.JSON(http.StatusOK, insights)
}
