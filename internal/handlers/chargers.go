package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voltbridge/voltbridge/internal/models"
	"github.com/voltbridge/voltbridge/internal/services"
	"github.com/voltbridge/voltbridge/pkg/response"
)

// ChargerHandler exposes the public charger directory and the host's
// own inventory management.
type ChargerHandler struct {
	chargers *services.ChargerService
}

// NewChargerHandler constructs a ChargerHandler.
func NewChargerHandler(chargers *services.ChargerService) (*ChargerHandler, error) {
	if chargers == nil {
		return nil, errors.New("charger handler requires a charger service")
	}
	return &ChargerHandler{chargers: chargers}, nil
}

// Types handles GET /api/chargers/types.
func (h *ChargerHandler) Types(c *gin.Context) {
	response.Success(c, http.StatusOK, models.ChargerTypes)
}

// Search handles GET /api/chargers.
func (h *ChargerHandler) Search(c *gin.Context) {
	p := paginationFromQuery(c)
	chargers, total, err := h.chargers.Search(c.Request.Context(), services.SearchChargersInput{
		City:        c.Query("city"),
		ChargerType: c.Query("charger_type"),
		Pagination:  p,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, chargers, buildMeta(p, total))
}

// Get handles GET /api/chargers/:id.
func (h *ChargerHandler) Get(c *gin.Context) {
	charger, err := h.chargers.GetActive(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, charger)
}

type chargerRequest struct {
	Name        string `json:"name" validate:"required"`
	ChargerType string `json:"charger_type" validate:"required"`

	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	PricePerKwh float64 `json:"price_per_kwh" validate:"required,gt=0"`
	Available   *bool   `json:"available"`
}

func (req chargerRequest) toInput() services.ChargerInput {
	return services.ChargerInput{
		Name:        req.Name,
		ChargerType: req.ChargerType,
		Address:     req.Address,
		City:        req.City,
		State:       req.State,
		Pincode:     req.Pincode,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		PricePerKwh: req.PricePerKwh,
		Available:   req.Available,
	}
}

// ListMine handles GET /api/host/chargers.
func (h *ChargerHandler) ListMine(c *gin.Context) {
	chargers, err := h.chargers.ListMine(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, chargers)
}

// Create handles POST /api/host/chargers.
func (h *ChargerHandler) Create(c *gin.Context) {
	req, ok := bindAndValidate[chargerRequest](c)
	if !ok {
		return
	}

	charger, err := h.chargers.Create(c.Request.Context(), currentUserID(c), req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, charger)
}

// Update handles PUT /api/host/chargers/:id.
func (h *ChargerHandler) Update(c *gin.Context) {
	req, ok := bindAndValidate[chargerRequest](c)
	if !ok {
		return
	}

	charger, err := h.chargers.Update(c.Request.Context(), currentUserID(c), c.Param("id"), req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, charger)
}

// Delete handles DELETE /api/host/chargers/:id.
func (h *ChargerHandler) Delete(c *gin.Context) {
	if err := h.chargers.Delete(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
