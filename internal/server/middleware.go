package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	headerUserID    = "X-User-Id"
	headerUserEmail = "X-User-Email"

	ctxUserID    = "user_id"
	ctxUserEmail = "user_email"
)

// identity reads the user headers the fronting proxy sets. Requests without
// an id are rejected; the email header is optional.
func identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(headerUserID)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorEnvelope{
				Error: apiError{Message: "missing " + headerUserID + " header", Code: "unauthorized"},
			})
			return
		}
		c.Set(ctxUserID, userID)
		c.Set(ctxUserEmail, c.GetHeader(headerUserEmail))
		c.Next()
	}
}

func userID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

func userEmail(c *gin.Context) string {
	if email := c.GetString(ctxUserEmail); email != "" {
		return email
	}
	return "unknown@example.com"
}
