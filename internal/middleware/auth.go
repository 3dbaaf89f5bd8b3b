package middleware

import (
	"errors"
	"log"
	"strings"

	"github.com/ecohistorias/eco-api/internal/constants"
	"github.com/ecohistorias/eco-api/internal/credentials"
	apierrors "github.com/ecohistorias/eco-api/internal/errors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// RequireAuth accepts either the session cookie or an
// "Authorization: Bearer <token>" header issued by the token store.
func RequireAuth(tokens credentials.TokenStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if userID, ok := session.Get(constants.ContextKeyUserID).(string); ok && userID != "" {
			c.Set(constants.ContextKeyUserID, userID)
			c.Next()
			return
		}

		token := BearerToken(c)
		if token == "" || tokens == nil {
			apierrors.Unauthorized(c, "")
			return
		}

		userID, err := tokens.Resolve(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, credentials.ErrUnknownToken) {
				log.Printf("Failed to resolve bearer token: %v", err)
			}
			apierrors.Unauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

// BearerToken extracts the token from the Authorization header, or "".
func BearerToken(c *gin.Context) string {
	header := c.GetHeader(constants.AuthorizationHeader)
	if len(header) <= len(constants.BearerPrefix) || !strings.EqualFold(header[:len(constants.BearerPrefix)], constants.BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(constants.BearerPrefix):])
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return "", false
	}

	id, ok := userID.(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
