package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/voltbridge/voltbridge/pkg/errors"
	"github.com/voltbridge/voltbridge/pkg/response"
)

// RequireAdmin rejects callers whose token lacks the admin capability.
// It never consults the database: capabilities travel in the token, so
// a denied caller learns nothing about any record's existence.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !claims.IsAdmin {
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireHost rejects callers whose token lacks the host capability.
// Tokens issued before an approval do not carry it; the caller must
// re-authenticate after being approved.
func RequireHost() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !claims.IsHost && !claims.IsAdmin {
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
