package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/xxxsen/noteagent/internal/pkg/errcode"
	"github.com/xxxsen/noteagent/internal/pkg/jwt"
	"github.com/xxxsen/noteagent/internal/pkg/response"
)

const ContextUserIDKey = "user_id"

// JWTAuth verifies bearer tokens minted by the identity provider and stores
// the caller's user id in the request context.
func JWTAuth(secret []byte, audience string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, errcode.ErrUnauthorized, "missing authorization")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, errcode.ErrUnauthorized, "invalid authorization")
			c.Abort()
			return
		}
		userID, err := jwt.ParseToken(parts[1], secret, audience)
		if err != nil {
			response.Error(c, errcode.ErrUnauthorized, "invalid token")
			c.Abort()
			return
		}
		c.Set(ContextUserIDKey, userID)
		c.Next()
	}
}

// UserID returns the authenticated caller set by JWTAuth.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	value, ok := c.Get(ContextUserIDKey)
	if !ok {
		return uuid.Nil, false
	}
	userID, ok := value.(uuid.UUID)
	return userID, ok
}
