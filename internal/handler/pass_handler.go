package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AhilyaKokare/visitor-pass-service/internal/domain"
	"github.com/AhilyaKokare/visitor-pass-service/internal/dto"
	"github.com/AhilyaKokare/visitor-pass-service/internal/repository"
	"github.com/AhilyaKokare/visitor-pass-service/internal/service"
	"github.com/AhilyaKokare/visitor-pass-service/pkg/middleware"
	"github.com/AhilyaKokare/visitor-pass-service/pkg/response"
)

// PassHandler handles visitor pass HTTP requests
type PassHandler struct {
	passService service.PassService
}

// NewPassHandler creates a new PassHandler
func NewPassHandler(passService service.PassService) *PassHandler {
	return &PassHandler{passService: passService}
}

// Create handles pass creation
// POST /api/v1/tenants/:tenantId/passes
func (h *PassHandler) Create(c *gin.Context) {
	var req dto.CreatePassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	userID, _ := middleware.GetUserID(c)
	result, err := h.passService.Create(c.Request.Context(), c.Param("tenantId"), userID, &req)
	if err != nil {
		respondPassError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(result))
}

// GetByID handles retrieving one pass
// GET /api/v1/tenants/:tenantId/passes/:passId
func (h *PassHandler) GetByID(c *gin.Context) {
	result, err := h.passService.GetByID(c.Request.Context(), c.Param("tenantId"), c.Param("passId"))
	if err != nil {
		respondPassError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// List handles retrieving a tenant's passes with pagination
// GET /api/v1/tenants/:tenantId/passes
func (h *PassHandler) List(c *gin.Context) {
	var query dto.ListPassesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	result, err := h.passService.List(c.Request.Context(), c.Param("tenantId"), &query)
	if err != nil {
		respondPassError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// ListMine handles retrieving passes created by the calling user
// GET /api/v1/tenants/:tenantId/passes/history
func (h *PassHandler) ListMine(c *gin.Context) {
	var query dto.ListPassesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	userID, _ := middleware.GetUserID(c)
	result, err := h.passService.ListMine(c.Request.Context(), c.Param("tenantId"), userID, &query)
	if err != nil {
		respondPassError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// History handles retrieving a pass's audit trail
// GET /api/v1/tenants/:tenantId/passes/:passId/history
func (h *PassHandler) History(c *gin.Context) {
	result, err := h.passService.History(c.Request.Context(), c.Param("tenantId"), c.Param("passId"))
	if err != nil {
		respondPassError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// respondPassError maps service errors onto the response envelope
func respondPassError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
	case errors.Is(err, service.ErrPassNotFound):
		c.JSON(http.StatusNotFound, response.NotFound("Pass not found"))
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, response.NotFound("User not found"))
	case errors.Is(err, service.ErrTenantNotFound):
		c.JSON(http.StatusNotFound, response.NotFound("Tenant not found"))
	case errors.Is(err, service.ErrTenantAccessDenied):
		c.JSON(http.StatusForbidden, response.TenantAccessDenied())
	case errors.Is(err, service.ErrForbiddenAction):
		c.JSON(http.StatusForbidden, response.Forbidden("Role is not allowed to perform this action"))
	case errors.Is(err, domain.ErrInvalidTransition):
		c.JSON(http.StatusConflict, response.InvalidPassStatus(err.Error()))
	case errors.Is(err, repository.ErrVersionConflict):
		c.JSON(http.StatusConflict, response.Error(response.ErrCodePassConflict, "Pass was modified concurrently, retry the operation"))
	case errors.Is(err, repository.ErrDuplicatePassCode):
		c.JSON(http.StatusConflict, response.Error(response.ErrCodePassConflict, "Could not allocate a unique pass code, retry the request"))
	default:
		c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
	}
}
