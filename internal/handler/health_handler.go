package handler

import (
	"net/http"
	"time"

	"teampulse-api/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HealthHandler reports service liveness and, on request, datastore
// connectivity for both the primary and reporting databases.
type HealthHandler struct {
	primary   *gorm.DB
	reporting *gorm.DB
}

func NewHealthHandler(primary, reporting *gorm.DB) *HealthHandler {
	return &HealthHandler{primary: primary, reporting: reporting}
}

func (h *HealthHandler) Check(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Health check requested")

	response := map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	}

	// Check database connections if requested
	if c.QueryParam("check") == "db" {
		if err := pingDB(h.primary); err != nil {
			log.Error("Primary database ping error", zap.Error(err))
			response["status"] = "error"
			response["primary_db_status"] = "error"
			return c.JSON(http.StatusInternalServerError, response)
		}
		response["primary_db_status"] = "ok"

		if err := pingDB(h.reporting); err != nil {
			log.Error("Reporting database ping error", zap.Error(err))
			response["status"] = "error"
			response["reporting_db_status"] = "error"
			return c.JSON(http.StatusInternalServerError, response)
		}
		response["reporting_db_status"] = "ok"
	}

	return c.JSON(http.StatusOK, response)
}

func pingDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
