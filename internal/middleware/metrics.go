package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// MetricsMiddleware records duration and status of every request by route template.
func (m Middleware) MetricsMiddleware(ctx *gin.Context) {
	start := time.Now()
	ctx.Next()

	path := ctx.FullPath()
	if path == "" {
		path = "unmatched"
	}
	m.app.Metrics.ObserveHTTPRequest(ctx.Request.Method, path, ctx.Writer.Status(), time.Since(start))
}
