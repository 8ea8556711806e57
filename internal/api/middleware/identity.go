package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// UserIDHeader carries the caller identity set by the upstream gateway
const UserIDHeader = "X-User-ID"

// UserIDKey is the gin context key for the caller identity
const UserIDKey = "user_id"

// Identity rejects requests without a caller identity (401)
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(UserIDHeader))
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":       "UNAUTHORIZED",
					"message":    "인증이 필요합니다",
					"request_id": GetRequestID(c),
				},
			})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// GetUserID returns the caller identity set by Identity
func GetUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
