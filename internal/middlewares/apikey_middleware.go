package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// APIKeyMiddleware requires an X-API-Key header on every request when keys
// are configured. With no configured keys the API stays open.
func APIKeyMiddleware(keys []string, publicPaths []string) gin.HandlerFunc {
	keySet := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			keySet[k] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		if len(keySet) == 0 || c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		for _, p := range publicPaths {
			if c.Request.URL.Path == p || strings.HasPrefix(c.Request.URL.Path, p+"/") {
				c.Next()
				return
			}
		}

		if _, ok := keySet[c.GetHeader("X-API-Key")]; !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid API key"})
			c.Abort()
			return
		}
		c.Next()
	}
}
