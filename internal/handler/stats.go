package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Stats 返回进程内请求指标，仅限管理员
func (h *Handler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.metrics.Snapshot())
}
