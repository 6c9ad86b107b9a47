package server

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karkeeg/productforge/internal/config"
)

func TestJWTRoundTrip(t *testing.T) {
	svc := NewJWTService(testJWTConfig())
	userID := uuid.New()

	token, err := svc.GenerateToken(userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	svc := NewJWTService(testJWTConfig())
	other := NewJWTService(&config.JWTConfig{Secret: "a-different-secret-value", ExpirationHours: 1})

	token, err := svc.GenerateToken(uuid.New())
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTRejectsExpiredToken(t *testing.T) {
	expired := NewJWTService(&config.JWTConfig{Secret: "test-secret-0123456789abcdef", ExpirationHours: -1})

	token, err := expired.GenerateToken(uuid.New())
	require.NoError(t, err)

	_, err = expired.ValidateToken(token)
	assert.ErrorContains(t, err, "expired")
}

func TestJWTRejectsGarbage(t *testing.T) {
	svc := NewJWTService(testJWTConfig())

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		_, err := svc.ValidateToken(token)
		assert.Error(t, err, token)
	}
}
