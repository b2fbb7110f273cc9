package api

import (
	"github.com/gin-gonic/gin"

	"github.com/voltbridge/voltbridge/internal/middleware"
)

// registerHostRoutes mounts endpoints gated on the host capability.
func (r *router) registerHostRoutes(engine *gin.Engine) {
	group := engine.Group("/api/host", middleware.Auth(r.deps.JWT), middleware.RequireHost())

	group.GET("/chargers", r.chargers.ListMine)
	group.POST("/chargers", r.chargers.Create)
	group.PUT("/chargers/:id", r.chargers.Update)
	group.DELETE("/chargers/:id", r.chargers.Delete)

	group.GET("/bookings", r.bookings.ListForHost)
}
