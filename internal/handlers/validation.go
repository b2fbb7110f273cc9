package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/voltbridge/voltbridge/internal/services"
	apperrors "github.com/voltbridge/voltbridge/pkg/errors"
	"github.com/voltbridge/voltbridge/pkg/response"
	"github.com/voltbridge/voltbridge/pkg/validator"
)

// bindAndValidate decodes the JSON body into T and runs struct
// validation. On failure it writes the error response and reports false.
func bindAndValidate[T any](c *gin.Context) (T, bool) {
	var req T

	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.NewBadRequest("Invalid request body"))
		return req, false
	}

	if err := validator.ValidateStruct(req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			response.Error(c, apperrors.NewValidation(ve.Fields(), ve.Error()))
		} else {
			response.Error(c, apperrors.NewBadRequest(err.Error()))
		}
		return req, false
	}

	return req, true
}

func parseIntQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func paginationFromQuery(c *gin.Context) services.Pagination {
	return services.Pagination{
		Page:    parseIntQuery(c, "page", 1),
		PerPage: parseIntQuery(c, "per_page", 20),
	}
}

func buildMeta(p services.Pagination, total int64) *response.Meta {
	perPage := p.PerPage
	if perPage < 1 {
		perPage = 20
	}
	pages := int(total) / perPage
	if int(total)%perPage != 0 {
		pages++
	}
	return &response.Meta{
		Page:       p.Page,
		PerPage:    perPage,
		Total:      int(total),
		TotalPages: pages,
	}
}
