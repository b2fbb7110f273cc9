package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voltbridge/voltbridge/internal/services"
	"github.com/voltbridge/voltbridge/pkg/response"
)

// ReviewHandler exposes charger ratings.
type ReviewHandler struct {
	reviews *services.ReviewService
}

// NewReviewHandler constructs a ReviewHandler.
func NewReviewHandler(reviews *services.ReviewService) (*ReviewHandler, error) {
	if reviews == nil {
		return nil, errors.New("review handler requires a review service")
	}
	return &ReviewHandler{reviews: reviews}, nil
}

type createReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=500"`
}

// Create handles POST /api/chargers/:id/reviews.
func (h *ReviewHandler) Create(c *gin.Context) {
	req, ok := bindAndValidate[createReviewRequest](c)
	if !ok {
		return
	}

	review, err := h.reviews.Create(c.Request.Context(), currentUserID(c), services.CreateReviewInput{
		ChargerID: c.Param("id"),
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, review)
}

// ListForCharger handles GET /api/chargers/:id/reviews.
func (h *ReviewHandler) ListForCharger(c *gin.Context) {
	p := paginationFromQuery(c)
	reviews, rating, err := h.reviews.ListForCharger(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"reviews": reviews,
		"rating":  rating,
	})
}
