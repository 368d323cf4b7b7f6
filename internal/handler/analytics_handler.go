package handler

import (
	"net/http"
	"time"

	"teampulse-api/internal/service"
	"teampulse-api/pkg/logger"
	"teampulse-api/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AnalyticsHandler serves the composite sales and ads reports from the
// reporting store.
type AnalyticsHandler struct {
	sales *service.SalesService
	ads   *service.AdsService
}

func NewAnalyticsHandler(sales *service.SalesService, ads *service.AdsService) *AnalyticsHandler {
	return &AnalyticsHandler{sales: sales, ads: ads}
}

func (h *AnalyticsHandler) Sales(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordReportingQuery("analytics_sales")

	fromParam, err := parseDateParam(c, "from")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	toParam, err := parseDateParam(c, "to")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	from, to := service.SalesWindow(time.Now(), fromParam, toParam)

	defer prometheus.TrackDBOperation("reporting_query")(time.Now())
	report, err := h.sales.Report(c.Request().Context(), from, to)
	if err != nil {
		log.Error("Failed to build sales report",
			zap.Time("from", from),
			zap.Time("to", to),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve sales analytics"})
	}

	return c.JSON(http.StatusOK, report)
}

func (h *AnalyticsHandler) Ads(c echo.Context) error {
	prometheus.RecordReportingQuery("analytics_ads")

	fromParam, err := parseDateParam(c, "from")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	toParam, err := parseDateParam(c, "to")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	from, toExclusive := service.AdsWindow(time.Now(), fromParam, toParam)

	defer prometheus.TrackDBOperation("reporting_query")(time.Now())
	report := h.ads.Report(c.Request().Context(), from, toExclusive)

	return c.JSON(http.StatusOK, report)
}
