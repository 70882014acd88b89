package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("s3cret", hash))
	assert.False(t, CheckPasswordHash("S3cret", hash))
}

func TestJWT_RoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour, 24*time.Hour)
	id := uuid.New()

	access, err := m.GenerateAccessToken(id, "finance@example.com", "finance", []string{"sales.create"})
	require.NoError(t, err)
	claims, err := m.ValidateAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "finance", claims.Role)
	assert.Equal(t, []string{"sales.create"}, claims.Permissions)

	refresh, err := m.GenerateRefreshToken(id)
	require.NoError(t, err)
	got, err := m.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = m.ValidateAccessToken(refresh)
	assert.Error(t, err, "a refresh token is not an access token")
}

func TestJWT_Expired(t *testing.T) {
	m := NewJWTManager("test-secret", -time.Minute, time.Hour)
	token, err := m.GenerateAccessToken(uuid.New(), "a@b.c", "admin", nil)
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(token)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestJWT_WrongSecret(t *testing.T) {
	token, err := NewJWTManager("one", time.Hour, time.Hour).GenerateAccessToken(uuid.New(), "a@b.c", "admin", nil)
	require.NoError(t, err)
	_, err = NewJWTManager("two", time.Hour, time.Hour).ValidateAccessToken(token)
	assert.Error(t, err)
}
