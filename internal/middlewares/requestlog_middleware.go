package middlewares

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"cnpj-data-api/internal/metrics"
)

// RequestLogMiddleware counts every request into the metrics store and logs
// one line per request once the handler chain finished.
func RequestLogMiddleware(store *metrics.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		defer func() {
			store.Increment(metrics.RequestsTotal)
			log.Printf("request: %s %s status=%d duration_ms=%d request_id=%s",
				c.Request.Method,
				c.Request.URL.Path,
				c.Writer.Status(),
				time.Since(start).Milliseconds(),
				c.GetString("requestID"),
			)
		}()

		c.Next()
	}
}
