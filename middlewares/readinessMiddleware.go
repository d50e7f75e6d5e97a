package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ReadinessMiddleware answers 503 until ready reports true. /healthz is always served so the
// platform's startup probe passes while the database is still connecting.
func ReadinessMiddleware(ready func() bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Next()
			return
		}
		if ready != nil && !ready() {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"success": false,
				"code":    "SERVICE_UNAVAILABLE",
				"message": "service is starting",
			})
			return
		}
		c.Next()
	}
}
