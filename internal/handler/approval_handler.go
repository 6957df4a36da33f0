package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AhilyaKokare/visitor-pass-service/internal/dto"
	"github.com/AhilyaKokare/visitor-pass-service/internal/service"
	"github.com/AhilyaKokare/visitor-pass-service/pkg/middleware"
	"github.com/AhilyaKokare/visitor-pass-service/pkg/response"
)

// ApprovalHandler handles pass approval decisions
type ApprovalHandler struct {
	passService service.PassService
}

// NewApprovalHandler creates a new ApprovalHandler
func NewApprovalHandler(passService service.PassService) *ApprovalHandler {
	return &ApprovalHandler{passService: passService}
}

// Approve handles approving a pending pass
// POST /api/v1/tenants/:tenantId/approvals/:passId/approve
func (h *ApprovalHandler) Approve(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	result, err := h.passService.Approve(c.Request.Context(), c.Param("tenantId"), c.Param("passId"), userID)
	if err != nil {
		respondPassError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// Reject handles rejecting a pending pass
// POST /api/v1/tenants/:tenantId/approvals/:passId/reject
func (h *ApprovalHandler) Reject(c *gin.Context) {
	var req dto.RejectPassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	userID, _ := middleware.GetUserID(c)
	result, err := h.passService.Reject(c.Request.Context(), c.Param("tenantId"), c.Param("passId"), userID, &req)
	if err != nil {
		respondPassError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}
