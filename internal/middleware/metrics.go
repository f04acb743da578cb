package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"familytree_go/internal/service"
)

// Metrics 记录每个已注册路由的请求数与耗时
func Metrics(metrics *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			// 未匹配到路由的请求不计入
			return
		}
		metrics.Record(c.Request.Method+" "+route, c.Writer.Status(), time.Since(start))
	}
}
