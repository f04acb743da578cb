package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"familytree_go/internal/graph"
	"familytree_go/internal/repository"
	"familytree_go/internal/service"
)

// Handler REST接口处理器
type Handler struct {
	db       *repository.DB
	resolver *graph.Resolver
	cache    *service.CacheService
	upload   *service.UploadService
	auth     *service.Auth
	search   *service.MemberSearch
	metrics  *service.MetricsService
	limiter  *service.RateLimiter
	logger   *service.Logger
}

// New 创建处理器实例
func New(
	db *repository.DB,
	resolver *graph.Resolver,
	cache *service.CacheService,
	upload *service.UploadService,
	auth *service.Auth,
	search *service.MemberSearch,
	metrics *service.MetricsService,
	limiter *service.RateLimiter,
	logger *service.Logger,
) *Handler {
	return &Handler{
		db:       db,
		resolver: resolver,
		cache:    cache,
		upload:   upload,
		auth:     auth,
		search:   search,
		metrics:  metrics,
		limiter:  limiter,
		logger:   logger,
	}
}

// respondError 将错误映射为HTTP响应
func (h *Handler) respondError(c *gin.Context, err error) {
	var appErr *service.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus(), gin.H{"error": appErr.Message})
		return
	}
	h.logger.Error("unhandled error: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

// parseID 解析路径中的数字ID
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a numeric id"})
		return 0, false
	}
	return uint(id), true
}

// parseDate 解析可空日期字段，空串返回nil
func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(service.DateLayout, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
