package site

import (
	"github.com/gin-gonic/gin"

	"go-attend/internal/middleware"
	"go-attend/internal/rbac"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService rbac.Service) {
	sites := r.Group("/sites")
	sites.Use(middleware.AuthMiddleware())
	{
		sites.GET("", middleware.RBACAuthorize(rbacService, "site", "read"), h.List)
		sites.GET("/:id", middleware.RBACAuthorize(rbacService, "site", "read"), h.GetByID)
		sites.POST("", middleware.RBACAuthorize(rbacService, "site", "manage"), h.Create)
		sites.PUT("/:id", middleware.RBACAuthorize(rbacService, "site", "manage"), h.Update)
	}
}
