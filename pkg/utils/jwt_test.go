package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTConfig() JWTConfig {
	return JWTConfig{
		Secret:             "unit-test-secret",
		AccessExpiryDays:   1,
		RefreshExpiryDays:  7,
		ResetExpirySeconds: 300,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	userID := uuid.New()

	access, err := GenerateAccessToken(cfg, userID, "alice@example.com")
	require.NoError(t, err)

	claims, err := DecodeToken(cfg, access)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Subject)
	assert.Empty(t, claims.Type)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenTypes(t *testing.T) {
	cfg := testJWTConfig()
	userID := uuid.New()

	refresh, err := GenerateRefreshToken(cfg, userID, "alice@example.com")
	require.NoError(t, err)
	claims, err := DecodeToken(cfg, refresh)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, claims.Type)

	reset, err := GenerateResetToken(cfg, userID, "alice@example.com")
	require.NoError(t, err)
	claims, err = DecodeToken(cfg, reset)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeReset, claims.Type)
}

func TestTokensAreUniquePerMint(t *testing.T) {
	cfg := testJWTConfig()
	userID := uuid.New()

	first, err := GenerateRefreshToken(cfg, userID, "alice@example.com")
	require.NoError(t, err)
	second, err := GenerateRefreshToken(cfg, userID, "alice@example.com")
	require.NoError(t, err)

	// Same claims in the same second must still produce distinct tokens
	assert.NotEqual(t, first, second)
}

func TestDecodeRejectsWrongSecret(t *testing.T) {
	cfg := testJWTConfig()

	token, err := GenerateAccessToken(cfg, uuid.New(), "alice@example.com")
	require.NoError(t, err)

	other := cfg
	other.Secret = "a-different-secret"
	_, err = DecodeToken(other, token)
	require.Error(t, err)
}

func TestDecodeRejectsExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	cfg.ResetExpirySeconds = -60

	token, err := GenerateResetToken(cfg, uuid.New(), "alice@example.com")
	require.NoError(t, err)

	_, err = DecodeToken(cfg, token)
	require.Error(t, err)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := DecodeToken(testJWTConfig(), "not-a-jwt")
	require.Error(t, err)
}

func TestResetTokenExpiry(t *testing.T) {
	cfg := testJWTConfig()

	token, err := GenerateResetToken(cfg, uuid.New(), "alice@example.com")
	require.NoError(t, err)

	claims, err := DecodeToken(cfg, token)
	require.NoError(t, err)

	remaining := time.Until(claims.ExpiresAt.Time)
	assert.Greater(t, remaining, 4*time.Minute)
	assert.LessOrEqual(t, remaining, 5*time.Minute)
}
