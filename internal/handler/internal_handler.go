package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AhilyaKokare/visitor-pass-service/internal/service"
	"github.com/AhilyaKokare/visitor-pass-service/pkg/response"
)

// InternalHandler handles service-to-service requests authenticated by the
// shared internal API key rather than a user token
type InternalHandler struct {
	passService service.PassService
}

// NewInternalHandler creates a new InternalHandler
func NewInternalHandler(passService service.PassService) *InternalHandler {
	return &InternalHandler{passService: passService}
}

// GetPass handles retrieving one pass without tenant scoping
// GET /api/v1/internal/passes/:passId
func (h *InternalHandler) GetPass(c *gin.Context) {
	result, err := h.passService.GetInternal(c.Request.Context(), c.Param("passId"))
	if err != nil {
		respondPassError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}
