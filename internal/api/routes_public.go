package api

import "github.com/gin-gonic/gin"

// registerPublicRoutes mounts endpoints that need no authentication:
// account entry points, the charger directory, and the contact form.
func (r *router) registerPublicRoutes(engine *gin.Engine) {
	auth := engine.Group("/api/auth")
	auth.POST("/register", r.auth.Register)
	auth.POST("/login", r.auth.Login)

	chargers := engine.Group("/api/chargers")
	chargers.GET("", r.chargers.Search)
	chargers.GET("/types", r.chargers.Types)
	chargers.GET("/:id", r.chargers.Get)
	chargers.GET("/:id/reviews", r.reviews.ListForCharger)

	engine.POST("/api/contact", r.contact.Submit)
}
