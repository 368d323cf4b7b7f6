package middleware

import (
	"net/http"
	"strings"

	"teampulse-api/internal/model"
	"teampulse-api/internal/repository"
	"teampulse-api/pkg/jwtutil"
	"teampulse-api/pkg/logger"
	"teampulse-api/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const currentUserKey = "current_user"

// AuthGate resolves a bearer token into the authenticated user. The
// token subject is looked up against the primary store on every request;
// a token for a deleted user fails exactly like an invalid token.
type AuthGate struct {
	users *repository.UserStore
}

func NewAuthGate(db *gorm.DB) *AuthGate {
	return &AuthGate{users: repository.NewUserStore(db)}
}

// Middleware validates the JWT token and loads the authenticated user
func (g *AuthGate) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		// Get the Authorization header
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Warn("Missing Authorization header")
			prometheus.RecordAuthError("missing_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
		}

		// Check if it's a Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Invalid Authorization header format")
			prometheus.RecordAuthError("invalid_header")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
		}

		// Validate the token
		userID, err := jwtutil.ValidateToken(parts[1])
		if err != nil {
			log.Warn("Invalid JWT token", zap.Error(err))
			prometheus.RecordAuthError("invalid_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		// Resolve the subject to a user row. An unknown subject gets the
		// same response as a bad token.
		user, err := g.users.GetByID(c.Request().Context(), userID)
		if err != nil {
			log.Warn("Token subject does not resolve to a user", zap.String("user_id", userID.String()))
			prometheus.RecordAuthError("unknown_subject")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		prometheus.AuthSuccessCounter.Inc()
		c.Set(currentUserKey, user)

		return next(c)
	}
}

// CurrentUser retrieves the authenticated user from the context.
// Returns nil outside of routes guarded by the AuthGate.
func CurrentUser(c echo.Context) *model.User {
	user, _ := c.Get(currentUserKey).(*model.User)
	return user
}
