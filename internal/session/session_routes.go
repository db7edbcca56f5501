package session

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"go-attend/internal/middleware"
	"go-attend/internal/rbac"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService rbac.Service) {
	sessions := r.Group("/sessions")
	sessions.Use(middleware.AuthMiddleware())
	sessions.Use(middleware.ExtractParticipantID())
	// Heartbeats arrive every few minutes per device; anything faster is a
	// misbehaving client.
	sessions.Use(middleware.RateLimitByParticipant(rate.Limit(1), 5))
	{
		sessions.GET("", middleware.RBACAuthorize(rbacService, "session", "read"), h.GetAll)
		sessions.GET("/:id", middleware.RBACAuthorize(rbacService, "session", "read"), h.GetByID)
		sessions.POST("/clock-in", middleware.RBACAuthorize(rbacService, "session", "create"), h.ClockIn)
		sessions.POST("/:id/heartbeat", middleware.RBACAuthorize(rbacService, "session", "create"), h.Heartbeat)
		sessions.POST("/:id/lunch/start", middleware.RBACAuthorize(rbacService, "session", "create"), h.StartLunch)
		sessions.POST("/:id/lunch/end", middleware.RBACAuthorize(rbacService, "session", "create"), h.EndLunch)
		sessions.POST("/:id/clock-out", middleware.RBACAuthorize(rbacService, "session", "create"), h.ClockOut)
	}
}
