package middleware

import (
	"strconv"
	"time"

	"collaborative-workspace/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics 返回记录 HTTP 请求数和耗时的 Gin 中间件。
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := normalizePath(c)
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// normalizePath 使用路由模板作为标签，未匹配的路径归为一类以控制基数。
func normalizePath(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}
