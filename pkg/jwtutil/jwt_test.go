package jwtutil

import (
	"testing"
	"time"

	"teampulse-api/pkg/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSigningKey = "unit-test-signing-key"

func initTestConfig(t *testing.T) {
	t.Helper()
	Initialize(&config.JWTConfig{
		SigningKey:    testSigningKey,
		Algorithm:     "HS256",
		ExpireMinutes: 60,
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	initTestConfig(t)

	userID := uuid.New()
	token, err := GenerateToken(userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	subject, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, subject)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	initTestConfig(t)

	token, err := GenerateToken(uuid.New())
	require.NoError(t, err)

	// Flip a character in the signature segment
	tampered := token[:len(token)-2] + "xx"
	_, err = ValidateToken(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ValidateToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	initTestConfig(t)

	claims := jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-1 * time.Hour)),
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSigningKey))
	require.NoError(t, err)

	_, err = ValidateToken(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsForeignAlgorithm(t *testing.T) {
	initTestConfig(t)

	claims := jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSigningKey))
	require.NoError(t, err)

	_, err = ValidateToken(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsWrongKey(t *testing.T) {
	initTestConfig(t)

	claims := jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("some-other-key"))
	require.NoError(t, err)

	_, err = ValidateToken(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
