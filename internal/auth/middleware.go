package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// RequireAuth authenticates the request from the session cookie, or from a
// Bearer token for clients that don't hold cookies.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if uid, ok := sessionUserID(c); ok {
			c.Set("user_id", uid)
			c.Next()
			return
		}

		h := c.GetHeader("Authorization")
		if h == "" || !strings.HasPrefix(h, "Bearer ") {
			c.AbortWithStatusJSON(401, gin.H{"error": "unauthenticated"})
			return
		}
		claims, err := ParseToken(strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(401, gin.H{"error": "invalid token"})
			return
		}
		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Next()
	}
}

func sessionUserID(c *gin.Context) (uint, bool) {
	if store == nil {
		return 0, false
	}
	session, err := getSession(c.Request)
	if err != nil {
		return 0, false
	}
	v, ok := session.Values["user_id"]
	if !ok {
		return 0, false
	}
	uid, ok := v.(uint)
	if !ok {
		return 0, false
	}
	return uid, true
}
