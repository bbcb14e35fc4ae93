package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/penpal-app/penpal-api/internal/constants"
	apierrors "github.com/penpal-app/penpal-api/internal/errors"
	"github.com/penpal-app/penpal-api/internal/utils"
)

// RequireAuth rejects requests without a valid Bearer access token.
func RequireAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := bearerClaims(c, secret)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		// Store user ID in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, claims.UserID)
		c.Next()
	}
}

// OptionalAuth sets the user ID when a valid token is present but lets
// anonymous requests through. Listing endpoints use it so public documents
// stay reachable without credentials.
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := bearerClaims(c, secret); ok {
			c.Set(constants.ContextKeyUserID, claims.UserID)
		}
		c.Next()
	}
}

func bearerClaims(c *gin.Context, secret string) (*utils.TokenClaims, bool) {
	header := c.GetHeader("Authorization")
	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found || raw == "" {
		return nil, false
	}
	claims, err := utils.ParseToken(secret, raw, utils.TokenTypeAccess)
	if err != nil {
		return nil, false
	}
	return claims, true
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
