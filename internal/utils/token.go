package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// TokenClaims are the claims carried by both access and refresh tokens. The
// TokenType claim keeps a refresh token from being accepted where an access
// token is required, and vice versa.
type TokenClaims struct {
	UserID    uint64 `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// NewAccessToken signs a short-lived HS256 access token for a user.
func NewAccessToken(secret string, userID uint64, ttlMinutes int) (string, error) {
	return newToken(secret, userID, TokenTypeAccess, time.Duration(ttlMinutes)*time.Minute)
}

// NewRefreshToken signs a long-lived HS256 refresh token for a user.
func NewRefreshToken(secret string, userID uint64, ttlDays int) (string, error) {
	return newToken(secret, userID, TokenTypeRefresh, time.Duration(ttlDays)*24*time.Hour)
}

func newToken(secret string, userID uint64, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := TokenClaims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken verifies signature and expiry and requires the given token type.
func ParseToken(secret, raw, wantType string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != wantType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
