package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AhilyaKokare/visitor-pass-service/internal/service"
	"github.com/AhilyaKokare/visitor-pass-service/pkg/middleware"
	"github.com/AhilyaKokare/visitor-pass-service/pkg/response"
)

// SecurityHandler handles gate operations performed by security staff
type SecurityHandler struct {
	passService service.PassService
}

// NewSecurityHandler creates a new SecurityHandler
func NewSecurityHandler(passService service.PassService) *SecurityHandler {
	return &SecurityHandler{passService: passService}
}

// Search handles looking up a pass by gate code
// GET /api/v1/tenants/:tenantId/security/passes/search?passCode=AB12CD34
func (h *SecurityHandler) Search(c *gin.Context) {
	passCode := c.Query("passCode")
	if passCode == "" {
		c.JSON(http.StatusBadRequest, response.BadRequest("passCode query parameter is required"))
		return
	}

	result, err := h.passService.FindByPassCode(c.Request.Context(), c.Param("tenantId"), passCode)
	if err != nil {
		respondPassError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// CheckIn handles checking a visitor in at the gate
// POST /api/v1/tenants/:tenantId/security/check-in/:passId
func (h *SecurityHandler) CheckIn(c *gin.Context) {
	result, err := h.passService.CheckIn(c.Request.Context(), c.Param("tenantId"), c.Param("passId"))
	if err != nil {
		respondPassError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// CheckOut handles checking a visitor out at the gate
// POST /api/v1/tenants/:tenantId/security/check-out/:passId
func (h *SecurityHandler) CheckOut(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	result, err := h.passService.CheckOut(c.Request.Context(), c.Param("tenantId"), c.Param("passId"), userID)
	if err != nil {
		respondPassError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// Today handles the gate dashboard for the current day
// GET /api/v1/tenants/:tenantId/security/dashboard/today
func (h *SecurityHandler) Today(c *gin.Context) {
	result, err := h.passService.TodayDashboard(c.Request.Context(), c.Param("tenantId"), time.Now())
	if err != nil {
		respondPassError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}
