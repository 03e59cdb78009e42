package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Minute, time.Hour)
	userID := uuid.New()

	token, err := m.GenerateAccessToken(userID, RoleOwner)
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, RoleOwner, claims.Role)
	assert.False(t, claims.IsAdmin())
}

func TestJWTManager_RejectsRefreshTokenAsAccess(t *testing.T) {
	m := NewJWTManager("secret", time.Minute, time.Hour)

	token, err := m.GenerateRefreshToken(uuid.New(), RoleTenant)
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_RejectsForeignSignature(t *testing.T) {
	issuer := NewJWTManager("one", time.Minute, time.Hour)
	verifier := NewJWTManager("two", time.Minute, time.Hour)

	token, err := issuer.GenerateAccessToken(uuid.New(), RoleAdmin)
	require.NoError(t, err)

	_, err = verifier.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_Expired(t *testing.T) {
	m := NewJWTManager("secret", -time.Minute, time.Hour)

	token, err := m.GenerateAccessToken(uuid.New(), RoleTenant)
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}
