package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	iauth "github.com/voltbridge/voltbridge/internal/auth"
)

func serveWithClaims(t *testing.T, claims *iauth.Claims, mw gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		if claims != nil {
			c.Set(CtxClaimsKey, claims)
			c.Set(CtxUserIDKey, claims.UserID)
		}
		c.Next()
	})
	router.Use(mw)
	router.GET("/target", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/target", nil)
	router.ServeHTTP(rec, req)
	return rec
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name   string
		claims *iauth.Claims
		want   int
	}{
		{name: "no claims", claims: nil, want: http.StatusUnauthorized},
		{name: "plain user", claims: &iauth.Claims{UserID: "u1"}, want: http.StatusForbidden},
		{name: "host without admin", claims: &iauth.Claims{UserID: "u1", IsHost: true}, want: http.StatusForbidden},
		{name: "admin", claims: &iauth.Claims{UserID: "u1", IsAdmin: true}, want: http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := serveWithClaims(t, tc.claims, RequireAdmin())
			require.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestRequireHost(t *testing.T) {
	tests := []struct {
		name   string
		claims *iauth.Claims
		want   int
	}{
		{name: "no claims", claims: nil, want: http.StatusUnauthorized},
		{name: "plain user", claims: &iauth.Claims{UserID: "u1"}, want: http.StatusForbidden},
		{name: "host", claims: &iauth.Claims{UserID: "u1", IsHost: true}, want: http.StatusOK},
		{name: "admin passes host gate", claims: &iauth.Claims{UserID: "u1", IsAdmin: true}, want: http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := serveWithClaims(t, tc.claims, RequireHost())
			require.Equal(t, tc.want, rec.Code)
		})
	}
}
