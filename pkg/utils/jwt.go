package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token type claim values. Access tokens carry no type claim.
const (
	TokenTypeRefresh = "refresh"
	TokenTypeReset   = "reset"
)

// TokenClaims includes the registered claims plus the account reference.
// Subject holds the account email.
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Type   string `json:"type,omitempty"`
}

// GenerateAccessToken signs a short-lived token for API access.
func GenerateAccessToken(cfg JWTConfig, userID uuid.UUID, email string) (string, error) {
	return signToken(cfg.Secret, userID, email, "",
		time.Duration(cfg.AccessExpiryDays)*24*time.Hour)
}

// GenerateRefreshToken signs a longer-lived token tagged type=refresh,
// accepted only by the refresh-exchange endpoint.
func GenerateRefreshToken(cfg JWTConfig, userID uuid.UUID, email string) (string, error) {
	return signToken(cfg.Secret, userID, email, TokenTypeRefresh,
		time.Duration(cfg.RefreshExpiryDays)*24*time.Hour)
}

// GenerateResetToken signs a short-lived single-purpose token handed out
// after a successful password-reset OTP verification.
func GenerateResetToken(cfg JWTConfig, userID uuid.UUID, email string) (string, error) {
	return signToken(cfg.Secret, userID, email, TokenTypeReset,
		time.Duration(cfg.ResetExpirySeconds)*time.Second)
}

func signToken(secret string, userID uuid.UUID, email, tokenType string, validity time.Duration) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			// A unique ID keeps two tokens minted in the same second from
			// colliding, which matters for per-token revocation.
			ID:        uuid.NewString(),
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		UserID: userID.String(),
		Type:   tokenType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// DecodeToken verifies signature and expiry and returns the claims.
func DecodeToken(cfg JWTConfig, tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(cfg.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}
