package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Tree 查询焦点成员的关系快照。
// 焦点成员不存在时返回404；其余解析缺口在快照内降级为null/空，
// 调用方总能渲染可知的部分。
func (h *Handler) Tree(c *gin.Context) {
	raw := c.Query("person_id")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "person_id is required"})
		return
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "person_id must be a numeric id"})
		return
	}

	snapshot, err := h.resolver.Resolve(c.Request.Context(), uint(id))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}
