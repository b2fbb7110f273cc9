package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	iauth "github.com/voltbridge/voltbridge/internal/auth"
	"github.com/voltbridge/voltbridge/internal/database/testutil"
	"github.com/voltbridge/voltbridge/internal/middleware"
	"github.com/voltbridge/voltbridge/internal/models"
	"github.com/voltbridge/voltbridge/internal/services"
	"github.com/voltbridge/voltbridge/pkg/response"
)

type hostRequestFixture struct {
	db     *gorm.DB
	router *gin.Engine
	user   *models.User
	admin  *models.User
}

func impersonate(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.CtxClaimsKey, &iauth.Claims{
			UserID:  user.ID,
			IsAdmin: user.IsAdmin,
			IsHost:  user.IsHost,
		})
		c.Set(middleware.CtxUserIDKey, user.ID)
		c.Next()
	}
}

func seedAccount(t *testing.T, db *gorm.DB, email string, admin bool) *models.User {
	t.Helper()

	user := &models.User{
		Email:    email,
		Password: "hashed",
		Name:     "Test Account",
		IsAdmin:  admin,
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func newHostRequestFixture(t *testing.T) *hostRequestFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	user := seedAccount(t, db, "user@example.com", false)
	admin := seedAccount(t, db, "admin@example.com", true)

	svc, err := services.NewHostRequestService(db)
	require.NoError(t, err)

	handler, err := NewHostRequestHandler(svc)
	require.NoError(t, err)

	router := gin.New()
	userGroup := router.Group("/api", impersonate(user))
	userGroup.POST("/host-requests", handler.Submit)
	userGroup.GET("/host-requests/mine", handler.Mine)

	adminGroup := router.Group("/api/admin", impersonate(admin), middleware.RequireAdmin())
	adminGroup.GET("/host-requests", handler.List)
	adminGroup.GET("/host-requests/:id", handler.Get)
	adminGroup.POST("/host-requests/:id/approve", handler.Approve)
	adminGroup.POST("/host-requests/:id/deny", handler.Deny)

	return &hostRequestFixture{db: db, router: router, user: user, admin: admin}
}

func (f *hostRequestFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func submitPayload() map[string]any {
	return map[string]any{
		"email":        "host@example.com",
		"name":         "Jordan Blake",
		"phone":        "+1-555-0100",
		"company_name": "Blake Charging Co",
		"location": map[string]any{
			"city":  "Austin",
			"state": "TX",
		},
		"number_of_chargers":   2,
		"charger_types":        []string{models.ChargerTypeFast},
		"business_description": "Charging lounge near the highway",
	}
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()

	var resp response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestSubmitHostRequestEndpoint(t *testing.T) {
	f := newHostRequestFixture(t)

	rec := f.do(t, http.MethodPost, "/api/host-requests", submitPayload())
	require.Equal(t, http.StatusCreated, rec.Code)

	resp := decodeResponse(t, rec)
	require.True(t, resp.Success)

	data := resp.Data.(map[string]any)
	require.Equal(t, models.HostRequestStatusPending, data["status"])
	require.Equal(t, "Blake Charging Co", data["company_name"])

	// duplicate submission conflicts
	rec = f.do(t, http.MethodPost, "/api/host-requests", submitPayload())
	require.Equal(t, http.StatusConflict, rec.Code)

	resp = decodeResponse(t, rec)
	require.Equal(t, "HOST_REQUEST_EXISTS", resp.Error.Code)
}

func TestSubmitHostRequestEndpointValidation(t *testing.T) {
	f := newHostRequestFixture(t)

	payload := submitPayload()
	payload["company_name"] = ""
	delete(payload, "charger_types")

	rec := f.do(t, http.MethodPost, "/api/host-requests", payload)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	resp := decodeResponse(t, rec)
	require.Equal(t, "VALIDATION_FAILED", resp.Error.Code)
	require.Contains(t, resp.Error.Fields, "company_name")
	require.Contains(t, resp.Error.Fields, "charger_types")
}

func TestHostRequestMineEndpoint(t *testing.T) {
	f := newHostRequestFixture(t)

	rec := f.do(t, http.MethodGet, "/api/host-requests/mine", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/host-requests", submitPayload())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/host-requests/mine", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]any)
	require.Equal(t, f.user.ID, data["user_id"])
}

func TestApproveHostRequestEndpoint(t *testing.T) {
	f := newHostRequestFixture(t)

	rec := f.do(t, http.MethodPost, "/api/host-requests", submitPayload())
	require.Equal(t, http.StatusCreated, rec.Code)
	requestID := decodeResponse(t, rec).Data.(map[string]any)["id"].(string)

	rec = f.do(t, http.MethodPost, fmt.Sprintf("/api/admin/host-requests/%s/approve", requestID),
		map[string]any{"admin_notes": "verified"})
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeResponse(t, rec).Data.(map[string]any)
	require.Equal(t, models.HostRequestStatusApproved, data["status"])
	require.Equal(t, f.admin.ID, data["reviewed_by"])

	var user models.User
	require.NoError(t, f.db.First(&user, "id = ?", f.user.ID).Error)
	require.True(t, user.IsHost)

	// a second decision conflicts
	rec = f.do(t, http.MethodPost, fmt.Sprintf("/api/admin/host-requests/%s/deny", requestID),
		map[string]any{"reason": "changed my mind"})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "REQUEST_NOT_PENDING", decodeResponse(t, rec).Error.Code)
}

func TestDenyHostRequestEndpoint(t *testing.T) {
	f := newHostRequestFixture(t)

	rec := f.do(t, http.MethodPost, "/api/host-requests", submitPayload())
	require.Equal(t, http.StatusCreated, rec.Code)
	requestID := decodeResponse(t, rec).Data.(map[string]any)["id"].(string)

	// reason is mandatory
	rec = f.do(t, http.MethodPost, fmt.Sprintf("/api/admin/host-requests/%s/deny", requestID),
		map[string]any{})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = f.do(t, http.MethodPost, fmt.Sprintf("/api/admin/host-requests/%s/deny", requestID),
		map[string]any{"reason": "incomplete documents"})
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeResponse(t, rec).Data.(map[string]any)
	require.Equal(t, models.HostRequestStatusDenied, data["status"])
	require.Equal(t, "incomplete documents", data["denial_reason"])

	var user models.User
	require.NoError(t, f.db.First(&user, "id = ?", f.user.ID).Error)
	require.False(t, user.IsHost)
}

func TestAdminHostRequestQueueEndpoint(t *testing.T) {
	f := newHostRequestFixture(t)

	rec := f.do(t, http.MethodPost, "/api/host-requests", submitPayload())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/admin/host-requests", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	items := resp.Data.([]any)
	require.Len(t, items, 1)
	require.NotNil(t, resp.Meta)
	require.Equal(t, 1, resp.Meta.Total)

	rec = f.do(t, http.MethodGet, "/api/admin/host-requests?status=approved", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, decodeResponse(t, rec).Data)
}

func TestUnknownHostRequestDecisionEndpoint(t *testing.T) {
	f := newHostRequestFixture(t)

	rec := f.do(t, http.MethodPost, "/api/admin/host-requests/missing-id/approve", map[string]any{})
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "NOT_FOUND", decodeResponse(t, rec).Error.Code)
}
