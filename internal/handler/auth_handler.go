package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"teampulse-api/internal/model"
	"teampulse-api/internal/repository"
	"teampulse-api/pkg/jwtutil"
	"teampulse-api/pkg/logger"
	"teampulse-api/prometheus"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler serves registration and login against the primary store
type AuthHandler struct {
	db    *gorm.DB
	users *repository.UserStore
}

func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{
		db:    db,
		users: repository.NewUserStore(db),
	}
}

type registerRequest struct {
	Email       string         `json:"email"`
	Password    string         `json:"password"`
	Username    string         `json:"username"`
	ClientID    *uuid.UUID     `json:"client_id,omitempty"`
	Role        model.UserRole `json:"role,omitempty"`
	CompanyName *string        `json:"company_name,omitempty"`
	Position    *string        `json:"position,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken      string                  `json:"access_token"`
	TokenType        string                  `json:"token_type"`
	SubscriptionTier *model.SubscriptionTier `json:"subscription_tier,omitempty"`
}

// Register creates a new user and returns an access token
func (h *AuthHandler) Register(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RegisterCounter.Inc()

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse registration request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Email == "" || req.Password == "" || req.Username == "" {
		log.Warn("Invalid registration data",
			zap.String("email", req.Email),
			zap.Bool("password_provided", req.Password != ""))
		prometheus.RecordAuthError("incomplete_registration")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email, password and username are required"})
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		prometheus.RecordAuthError("password_hash_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	user := model.User{
		Email:          req.Email,
		Username:       req.Username,
		HashedPassword: string(hashedPassword),
		Role:           req.Role,
		Position:       req.Position,
		ClientID:       req.ClientID,
	}

	ctx := c.Request().Context()

	// User and tenant are committed together; a failure anywhere in the
	// sequence leaves no partial state behind. The unique index on email
	// decides the winner between concurrent registrations; no pre-read.
	var tier *model.SubscriptionTier
	defer prometheus.TrackDBOperation("insert")(time.Now())
	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := repository.NewUserStore(tx)
		if err := users.Create(ctx, &user); err != nil {
			return err
		}

		// An owner registering a company gets its tenant created alongside
		if req.CompanyName != nil && user.Role == model.RoleOwner {
			client := model.Client{Name: *req.CompanyName, OwnerID: user.ID}
			clients := repository.NewStore[model.Client](tx, "owner_id")
			if err := clients.Create(ctx, &client); err != nil {
				return err
			}
			if _, err := users.Update(ctx, user.ID, map[string]interface{}{"client_id": client.ID}); err != nil {
				return err
			}
			tier = &client.SubscriptionTier
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			log.Warn("Email already registered", zap.String("email", req.Email))
			prometheus.RecordAuthError("email_already_exists")
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
		}
		log.Error("Failed to register user", zap.Error(err))
		prometheus.RecordAuthError("user_creation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	token, err := jwtutil.GenerateToken(user.ID)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("User registered",
		zap.String("email", user.Email),
		zap.String("role", string(user.Role)))
	return c.JSON(http.StatusCreated, tokenResponse{
		AccessToken:      token,
		TokenType:        "bearer",
		SubscriptionTier: tier,
	})
}

// Login verifies credentials and returns an access token
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	ctx := c.Request().Context()

	defer prometheus.TrackDBOperation("query")(time.Now())
	user, err := h.users.GetByEmail(ctx, req.Email)
	if err != nil {
		log.Warn("User not found", zap.String("email", req.Email))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email or password"})
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		log.Warn("Invalid password", zap.String("email", req.Email))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email or password"})
	}

	token, err := jwtutil.GenerateToken(user.ID)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	// Surface the tenant's plan so the frontend can show it. Every member
	// of the tenant sees it, not just the owner, so the lookup bypasses
	// the owner-scoped store.
	var tier *model.SubscriptionTier
	if user.ClientID != nil {
		var client model.Client
		if err := h.db.WithContext(ctx).Where("id = ?", *user.ClientID).First(&client).Error; err == nil {
			tier = &client.SubscriptionTier
		}
	}

	log.Info("User logged in", zap.String("email", user.Email))
	return c.JSON(http.StatusOK, tokenResponse{
		AccessToken:      token,
		TokenType:        "bearer",
		SubscriptionTier: tier,
	})
}
