package jwtutil

import (
	"errors"
	"time"

	"teampulse-api/pkg/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	signingKey    []byte
	signingMethod jwt.SigningMethod = jwt.SigningMethodHS256
	expireMinutes                   = 60 * 24
)

// ErrInvalidToken is returned for any token that fails validation:
// bad signature, wrong algorithm, malformed payload or past expiry.
var ErrInvalidToken = errors.New("invalid or expired token")

// UserClaims represents the JWT claims carried by an access token.
// The subject field holds the user ID.
type UserClaims struct {
	jwt.RegisteredClaims
}

// Initialize configures the package from the application config.
// Must be called once at startup before tokens are issued or validated.
func Initialize(cfg *config.JWTConfig) {
	signingKey = []byte(cfg.SigningKey)
	if m := jwt.GetSigningMethod(cfg.Algorithm); m != nil {
		signingMethod = m
	}
	if cfg.ExpireMinutes > 0 {
		expireMinutes = cfg.ExpireMinutes
	}
}

// GenerateToken issues a signed, time-limited token for the given user
func GenerateToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expireMinutes) * time.Minute)),
		},
	}

	token := jwt.NewWithClaims(signingMethod, claims)
	return token.SignedString(signingKey)
}

// ValidateToken validates and parses the JWT token, returning the subject user ID
func ValidateToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != signingMethod.Alg() {
			return nil, ErrInvalidToken
		}
		return signingKey, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*UserClaims)
	if !ok || claims.Subject == "" {
		return uuid.Nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return userID, nil
}
