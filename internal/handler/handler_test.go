package handler

import (
	"encoding/json"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"teampulse-api/internal/model"
	"teampulse-api/pkg/config"
	"teampulse-api/pkg/jwtutil"
	"teampulse-api/prometheus"

	"github.com/labstack/echo/v4"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	jwtutil.Initialize(&cfg.JWT)
	prometheus.InitMetrics(cfg)
	os.Exit(m.Run())
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Use a unique in-memory database per test to avoid cross-test collisions.
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.Client{}, &model.Project{}, &model.Task{}, &model.OKR{}, &model.KPI{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// newJSONContext builds an echo context carrying a JSON body.
func newJSONContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var req = httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

// seedUser creates a user row and marks it as the request's principal.
func seedUser(t *testing.T, db *gorm.DB, c echo.Context, email string) *model.User {
	t.Helper()
	user := model.User{Username: "tester", Email: email, HashedPassword: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	c.Set("current_user", &user)
	return &user
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response: %v (body=%s)", err, rec.Body.String())
	}
}
