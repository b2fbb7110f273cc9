package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/voltbridge/voltbridge/internal/services"
	"github.com/voltbridge/voltbridge/pkg/response"
)

// BookingHandler exposes charger reservations.
type BookingHandler struct {
	bookings *services.BookingService
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(bookings *services.BookingService) (*BookingHandler, error) {
	if bookings == nil {
		return nil, errors.New("booking handler requires a booking service")
	}
	return &BookingHandler{bookings: bookings}, nil
}

type createBookingRequest struct {
	ChargerID string    `json:"charger_id" validate:"required"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
}

// Create handles POST /api/bookings.
func (h *BookingHandler) Create(c *gin.Context) {
	req, ok := bindAndValidate[createBookingRequest](c)
	if !ok {
		return
	}

	booking, err := h.bookings.Create(c.Request.Context(), currentUserID(c), services.CreateBookingInput{
		ChargerID: req.ChargerID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, booking)
}

// Cancel handles POST /api/bookings/:id/cancel.
func (h *BookingHandler) Cancel(c *gin.Context) {
	booking, err := h.bookings.Cancel(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, booking)
}

// ListMine handles GET /api/bookings.
func (h *BookingHandler) ListMine(c *gin.Context) {
	p := paginationFromQuery(c)
	bookings, total, err := h.bookings.ListMine(c.Request.Context(), currentUserID(c), p)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, bookings, buildMeta(p, total))
}

// ListForHost handles GET /api/host/bookings.
func (h *BookingHandler) ListForHost(c *gin.Context) {
	p := paginationFromQuery(c)
	bookings, total, err := h.bookings.ListForHost(c.Request.Context(), currentUserID(c), p)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, bookings, buildMeta(p, total))
}
