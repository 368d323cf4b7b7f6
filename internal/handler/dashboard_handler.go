package handler

import (
	"errors"
	"net/http"
	"time"

	"teampulse-api/internal/service"
	"teampulse-api/pkg/logger"
	"teampulse-api/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// DashboardHandler serves the marketing overview endpoints from the
// reporting store.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// rangedQuery parses the from_date/to_date/limit parameters shared by the
// date-ranged dashboard endpoints.
func rangedQuery(c echo.Context) (time.Time, time.Time, int, error) {
	from, err := requireDateParam(c, "from_date")
	if err != nil {
		return time.Time{}, time.Time{}, 0, err
	}
	to, err := requireDateParam(c, "to_date")
	if err != nil {
		return time.Time{}, time.Time{}, 0, err
	}
	limit, err := parseLimitParam(c, 100, 1000)
	if err != nil {
		return time.Time{}, time.Time{}, 0, err
	}
	return from, to, limit, nil
}

func (h *DashboardHandler) Channels(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordReportingQuery("dashboard_channels")

	from, to, limit, err := rangedQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	defer prometheus.TrackDBOperation("reporting_query")(time.Now())
	rows, err := h.dashboard.Channels(c.Request().Context(), from, to, limit)
	if err != nil {
		log.Error("Failed to query channel traffic", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve channel stats"})
	}

	return c.JSON(http.StatusOK, rows)
}

func (h *DashboardHandler) Creatives(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordReportingQuery("dashboard_creatives")

	from, to, limit, err := rangedQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	defer prometheus.TrackDBOperation("reporting_query")(time.Now())
	rows, err := h.dashboard.Creatives(c.Request().Context(), from, to, limit)
	if err != nil {
		log.Error("Failed to query creative performance", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve creative stats"})
	}

	return c.JSON(http.StatusOK, rows)
}

func (h *DashboardHandler) Devices(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordReportingQuery("dashboard_devices")

	from, to, limit, err := rangedQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	defer prometheus.TrackDBOperation("reporting_query")(time.Now())
	rows, err := h.dashboard.Devices(c.Request().Context(), from, to, limit)
	if err != nil {
		log.Error("Failed to query device usage", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve device stats"})
	}

	return c.JSON(http.StatusOK, rows)
}

func (h *DashboardHandler) CRM(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordReportingQuery("dashboard_crm")

	from, to, limit, err := rangedQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	defer prometheus.TrackDBOperation("reporting_query")(time.Now())
	rows, err := h.dashboard.CRM(c.Request().Context(), from, to, limit)
	if err != nil {
		log.Error("Failed to query CRM stats", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve crm stats"})
	}

	return c.JSON(http.StatusOK, rows)
}

func (h *DashboardHandler) Insights(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordReportingQuery("dashboard_insights")

	limit, err := parseLimitParam(c, 5, 50)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	defer prometheus.TrackDBOperation("reporting_query")(time.Now())
	rows, err := h.dashboard.Insights(c.Request().Context(), limit)
	if err != nil {
		log.Error("Failed to query agent insights", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve insights"})
	}

	return c.JSON(http.StatusOK, rows)
}

func (h *DashboardHandler) KPI(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordReportingQuery("dashboard_kpi")

	defer prometheus.TrackDBOperation("reporting_query")(time.Now())
	metrics, err := h.dashboard.KPI(c.Request().Context())
	if errors.Is(err, service.ErrNoKPIData) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "kpi data not found"})
	}
	if err != nil {
		log.Error("Failed to query KPI metrics", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve kpi metrics"})
	}

	return c.JSON(http.StatusOK, metrics)
}

func (h *DashboardHandler) LineChart(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordReportingQuery("dashboard_linechart")

	from, err := parseDateParam(c, "from_date")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	to, err := parseDateParam(c, "to_date")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	defer prometheus.TrackDBOperation("reporting_query")(time.Now())
	points, err := h.dashboard.LineChart(c.Request().Context(), from, to)
	if err != nil {
		log.Error("Failed to query line chart points", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve line chart"})
	}

	return c.JSON(http.StatusOK, points)
}

func (h *DashboardHandler) UTM(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordReportingQuery("dashboard_utm")

	limit, err := parseLimitParam(c, 100, 1000)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	defer prometheus.TrackDBOperation("reporting_query")(time.Now())
	rows, err := h.dashboard.UTMPerformance(c.Request().Context(), limit)
	if err != nil {
		log.Error("Failed to query UTM performance", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve utm performance"})
	}

	return c.JSON(http.StatusOK, rows)
}
