package api

import (
	"github.com/gin-gonic/gin"

	"github.com/voltbridge/voltbridge/internal/middleware"
)

// registerUserRoutes mounts endpoints available to any authenticated
// account.
func (r *router) registerUserRoutes(engine *gin.Engine) {
	group := engine.Group("/api", middleware.Auth(r.deps.JWT))

	group.GET("/me", r.auth.Me)

	group.POST("/host-requests", r.hostRequests.Submit)
	group.GET("/host-requests/mine", r.hostRequests.Mine)

	group.POST("/bookings", r.bookings.Create)
	group.GET("/bookings", r.bookings.ListMine)
	group.POST("/bookings/:id/cancel", r.bookings.Cancel)

	group.POST("/chargers/:id/reviews", r.reviews.Create)

	group.GET("/notifications", r.notifs.List)
	group.POST("/notifications/read-all", r.notifs.MarkAllRead)
	group.POST("/notifications/:id/read", r.notifs.MarkRead)
	group.GET("/notifications/stream", r.notifs.Stream)
}
