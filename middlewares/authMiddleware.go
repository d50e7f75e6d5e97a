package middlewares

import (
	"net/http"
	"strings"

	"bitbucket.org/mmdatafocus/scm_backend/utils"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware requires a valid HS256 bearer token when secret is set and puts the
// token's name claim into the request context. An empty secret disables the check.
func AuthMiddleware(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		if len(key) == 0 {
			c.Next()
			return
		}

		auth := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(auth, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"code":    "UNAUTHORIZED",
				"message": "bearer token required",
			})
			return
		}

		claims, err := utils.JwtValidate(key, strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"code":    "UNAUTHORIZED",
				"message": "invalid token",
			})
			return
		}

		ctx := utils.SetUserNameInContext(c.Request.Context(), claims.Name)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
