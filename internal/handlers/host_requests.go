package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voltbridge/voltbridge/internal/models"
	"github.com/voltbridge/voltbridge/internal/services"
	"github.com/voltbridge/voltbridge/pkg/response"
)

// HostRequestHandler exposes the host registration workflow: intake for
// users, the review queue and decisions for admins.
type HostRequestHandler struct {
	requests *services.HostRequestService
}

// NewHostRequestHandler constructs a HostRequestHandler.
func NewHostRequestHandler(requests *services.HostRequestService) (*HostRequestHandler, error) {
	if requests == nil {
		return nil, errors.New("host request handler requires a host request service")
	}
	return &HostRequestHandler{requests: requests}, nil
}

type hostRequestLocation struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

type hostRequestDocuments struct {
	CompanyRegistration string `json:"company_registration"`
	TaxID               string `json:"tax_id"`
	IdentityProof       string `json:"identity_proof"`
}

type submitHostRequestRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Name        string `json:"name" validate:"required"`
	Phone       string `json:"phone" validate:"required"`
	CompanyName string `json:"company_name" validate:"required"`

	Location hostRequestLocation `json:"location"`

	NumberOfChargers    int                  `json:"number_of_chargers" validate:"required,min=1"`
	ChargerTypes        []string             `json:"charger_types" validate:"required,min=1"`
	BusinessDescription string               `json:"business_description" validate:"max=1000"`
	Documents           hostRequestDocuments `json:"documents"`
}

// Submit handles POST /api/host-requests.
func (h *HostRequestHandler) Submit(c *gin.Context) {
	req, ok := bindAndValidate[submitHostRequestRequest](c)
	if !ok {
		return
	}

	request, err := h.requests.Submit(c.Request.Context(), currentUserID(c), services.SubmitHostRequestInput{
		Email:       req.Email,
		Name:        req.Name,
		Phone:       req.Phone,
		CompanyName: req.CompanyName,
		Location: models.HostRequestLocation{
			Address: req.Location.Address,
			City:    req.Location.City,
			State:   req.Location.State,
			Pincode: req.Location.Pincode,
		},
		NumberOfChargers:    req.NumberOfChargers,
		ChargerTypes:        req.ChargerTypes,
		BusinessDescription: req.BusinessDescription,
		Documents: models.HostRequestDocuments{
			CompanyRegistration: req.Documents.CompanyRegistration,
			TaxID:               req.Documents.TaxID,
			IdentityProof:       req.Documents.IdentityProof,
		},
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, request)
}

// Mine handles GET /api/host-requests/mine.
func (h *HostRequestHandler) Mine(c *gin.Context) {
	request, err := h.requests.GetMine(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, request)
}

// List handles GET /api/admin/host-requests. Without a status filter it
// returns the pending queue.
func (h *HostRequestHandler) List(c *gin.Context) {
	p := paginationFromQuery(c)
	requests, total, err := h.requests.List(c.Request.Context(), services.ListHostRequestsInput{
		Status:     c.Query("status"),
		Pagination: p,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, requests, buildMeta(p, total))
}

// Get handles GET /api/admin/host-requests/:id.
func (h *HostRequestHandler) Get(c *gin.Context) {
	request, err := h.requests.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, request)
}

type approveRequest struct {
	AdminNotes string `json:"admin_notes"`
}

// Approve handles POST /api/admin/host-requests/:id/approve.
func (h *HostRequestHandler) Approve(c *gin.Context) {
	var req approveRequest
	// the body is optional for approvals
	_ = c.ShouldBindJSON(&req)

	request, err := h.requests.Approve(c.Request.Context(), c.Param("id"), services.DecisionInput{
		AdminID:    currentUserID(c),
		AdminNotes: req.AdminNotes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, request)
}

type denyRequest struct {
	Reason     string `json:"reason" validate:"required"`
	AdminNotes string `json:"admin_notes"`
}

// Deny handles POST /api/admin/host-requests/:id/deny.
func (h *HostRequestHandler) Deny(c *gin.Context) {
	req, ok := bindAndValidate[denyRequest](c)
	if !ok {
		return
	}

	request, err := h.requests.Deny(c.Request.Context(), c.Param("id"), services.DecisionInput{
		AdminID:    currentUserID(c),
		Reason:     req.Reason,
		AdminNotes: req.AdminNotes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, request)
}
