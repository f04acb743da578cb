package handler

import (
	"github.com/gin-gonic/gin"

	"familytree_go/internal/middleware"
)

// RegisterRoutes 注册全部REST路由。
// 除注册/登录外的接口都要求Bearer令牌。
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	api.Use(middleware.Metrics(h.metrics))

	// 注册和登录接口按IP限流，防止暴力破解
	auth := api.Group("/auth", middleware.RateLimit(h.limiter))
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)
	auth.POST("/refresh", h.RefreshToken)

	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(h.auth))
	{
		authed.GET("/members", h.ListMembers)
		authed.GET("/members/:id", h.GetMember)
		authed.POST("/members", h.CreateMember)
		authed.PUT("/members/:id", h.UpdateMember)
		authed.DELETE("/members/:id", h.DeleteMember)

		authed.GET("/unions", h.ListUnions)
		authed.POST("/unions", h.CreateUnion)
		authed.PUT("/unions/:id", h.UpdateUnion)
		authed.DELETE("/unions/:id", h.DeleteUnion)

		authed.GET("/tree", h.Tree)

		authed.POST("/upload", h.UploadPhoto)

		admin := authed.Group("/admin", middleware.AdminOnly())
		admin.GET("/stats", h.Stats)
	}
}
