package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// UploadPhoto 上传成员照片，返回公开URL
func (h *Handler) UploadPhoto(c *gin.Context) {
	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}

	url, err := h.upload.UploadPhoto(file)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}
