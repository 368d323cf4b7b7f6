package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"teampulse-api/internal/model"
	"teampulse-api/pkg/config"
	"teampulse-api/pkg/jwtutil"
	"teampulse-api/prometheus"

	"github.com/google/uuid"
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

func setupGate(t *testing.T) (*AuthGate, *gorm.DB) {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewAuthGate(db), db
}

func invoke(t *testing.T, gate *AuthGate, authHeader string) (*httptest.ResponseRecorder, *model.User) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	var seen *model.User
	handler := gate.Middleware(func(c echo.Context) error {
		seen = CurrentUser(c)
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("middleware: %v", err)
	}
	return rec, seen
}

func TestAuthGateAcceptsValidToken(t *testing.T) {
	gate, db := setupGate(t)

	user := model.User{Username: "ann", Email: "ann@example.com", HashedPassword: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	token, err := jwtutil.GenerateToken(user.ID)
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	rec, seen := invoke(t, gate, "Bearer "+token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", rec.Code, rec.Body.String())
	}
	if seen == nil || seen.ID != user.ID {
		t.Fatal("current_user not populated with the token subject")
	}
}

func TestAuthGateRejectsMissingAndMalformedHeaders(t *testing.T) {
	gate, _ := setupGate(t)

	for _, header := range []string{"", "Bearer", "Token abc", "Bearer not-a-jwt"} {
		rec, seen := invoke(t, gate, header)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401 got %d", header, rec.Code)
		}
		if seen != nil {
			t.Fatalf("header %q: handler ran with a user", header)
		}
	}
}

func TestAuthGateRejectsDeletedUser(t *testing.T) {
	gate, _ := setupGate(t)

	// Token is valid but its subject has no row.
	token, err := jwtutil.GenerateToken(uuid.New())
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	rec, seen := invoke(t, gate, "Bearer "+token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
	if seen != nil {
		t.Fatal("handler ran for a dangling subject")
	}
}
