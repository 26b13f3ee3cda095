// internal/utils/jwt_test.go
package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateJWT(t *testing.T) {
	SetJWTSecret("test-secret")

	userID := uuid.New()
	token, err := GenerateJWT(userID, "mvasquez", "manager", "IT", 24)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "mvasquez", claims.Username)
	assert.Equal(t, "manager", claims.Role)
	assert.Equal(t, "IT", claims.Department)
	assert.Equal(t, "assetdesk", claims.Issuer)
}

func TestValidateJWTRejectsWrongSecret(t *testing.T) {
	SetJWTSecret("secret-one")
	token, err := GenerateJWT(uuid.New(), "tchen", "employee", "", 24)
	require.NoError(t, err)

	SetJWTSecret("secret-two")
	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestValidateJWTRejectsExpiredToken(t *testing.T) {
	SetJWTSecret("test-secret")
	token, err := GenerateJWT(uuid.New(), "tchen", "employee", "", -1)
	require.NoError(t, err)

	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestValidateJWTRejectsGarbage(t *testing.T) {
	SetJWTSecret("test-secret")
	_, err := ValidateJWT("not.a.token")
	assert.Error(t, err)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	SetJWTSecret("test-secret")

	userID := uuid.New()
	token, err := GenerateRefreshToken(userID, 168)
	require.NoError(t, err)

	subject, err := ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), subject)
}

func TestAccessTokenRejectedAsRefreshToken(t *testing.T) {
	SetJWTSecret("test-secret")

	accessToken, err := GenerateJWT(uuid.New(), "tchen", "employee", "", 24)
	require.NoError(t, err)

	_, err = ValidateRefreshToken(accessToken)
	assert.Error(t, err)
}

func TestRefreshTokenRejectedAsAccessToken(t *testing.T) {
	SetJWTSecret("test-secret")

	refreshToken, err := GenerateRefreshToken(uuid.New(), 168)
	require.NoError(t, err)

	_, err = ValidateJWT(refreshToken)
	assert.Error(t, err)
}
