package api

import (
	"github.com/gin-gonic/gin"

	"github.com/voltbridge/voltbridge/internal/middleware"
)

// registerAdminRoutes mounts the review queue and decisions, gated on
// the admin capability carried in the token.
func (r *router) registerAdminRoutes(engine *gin.Engine) {
	group := engine.Group("/api/admin", middleware.Auth(r.deps.JWT), middleware.RequireAdmin())

	group.GET("/host-requests", r.hostRequests.List)
	group.GET("/host-requests/:id", r.hostRequests.Get)
	group.POST("/host-requests/:id/approve", r.hostRequests.Approve)
	group.POST("/host-requests/:id/deny", r.hostRequests.Deny)
}
