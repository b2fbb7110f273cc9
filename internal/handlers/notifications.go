package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voltbridge/voltbridge/internal/notifications"
	"github.com/voltbridge/voltbridge/internal/services"
	"github.com/voltbridge/voltbridge/pkg/response"
)

// NotificationHandler exposes in-app notifications and the live stream.
type NotificationHandler struct {
	service *services.NotificationService
	hub     *notifications.Hub
}

// NewNotificationHandler constructs a NotificationHandler. The hub is
// optional; without it the Stream endpoint reports 404.
func NewNotificationHandler(service *services.NotificationService, hub *notifications.Hub) (*NotificationHandler, error) {
	if service == nil {
		return nil, errors.New("notification handler requires a notification service")
	}
	return &NotificationHandler{service: service, hub: hub}, nil
}

// List handles GET /api/notifications.
func (h *NotificationHandler) List(c *gin.Context) {
	p := paginationFromQuery(c)
	unreadOnly := c.Query("unread") == "true"

	items, total, err := h.service.List(c.Request.Context(), currentUserID(c), unreadOnly, p)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, items, buildMeta(p, total))
}

// MarkRead handles POST /api/notifications/:id/read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.service.MarkRead(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"read": true})
}

// MarkAllRead handles POST /api/notifications/read-all.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.service.MarkAllRead(c.Request.Context(), currentUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"read": true})
}

// Stream handles GET /api/notifications/stream, upgrading to a WebSocket.
func (h *NotificationHandler) Stream(c *gin.Context) {
	if h.hub == nil {
		c.Status(http.StatusNotFound)
		return
	}

	if err := h.hub.Serve(c.Writer, c.Request, currentUserID(c)); err != nil {
		// Upgrade failures already wrote a response
		c.Abort()
	}
}
