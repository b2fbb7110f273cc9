package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voltbridge/voltbridge/internal/services"
	"github.com/voltbridge/voltbridge/pkg/response"
)

// ContactHandler exposes the public contact form.
type ContactHandler struct {
	contact *services.ContactService
}

// NewContactHandler constructs a ContactHandler.
func NewContactHandler(contact *services.ContactService) (*ContactHandler, error) {
	if contact == nil {
		return nil, errors.New("contact handler requires a contact service")
	}
	return &ContactHandler{contact: contact}, nil
}

type contactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject"`
	Message string `json:"message" validate:"required,max=2000"`
}

// Submit handles POST /api/contact.
func (h *ContactHandler) Submit(c *gin.Context) {
	req, ok := bindAndValidate[contactRequest](c)
	if !ok {
		return
	}

	msg, err := h.contact.Submit(c.Request.Context(), services.ContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, msg)
}
