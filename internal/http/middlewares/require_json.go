package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireJSON rejects non-JSON bodies up front. POST is the only method
// carrying a body on this API; GET and DELETE pass through untouched.
func RequireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodPost && c.ContentType() != "application/json" {
			c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
				"error": gin.H{
					"code":    "unsupported_media_type",
					"message": "Content-Type must be application/json",
				},
			})

			return
		}

		c.Next()
	}
}
