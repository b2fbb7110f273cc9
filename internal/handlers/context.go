package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/voltbridge/voltbridge/internal/middleware"
)

// currentUserID returns the authenticated user's id from the request
// context, or empty when the request is unauthenticated.
func currentUserID(c *gin.Context) string {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return ""
	}
	return claims.UserID
}
