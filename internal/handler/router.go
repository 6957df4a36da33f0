package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AhilyaKokare/visitor-pass-service/internal/domain"
	"github.com/AhilyaKokare/visitor-pass-service/internal/service"
	"github.com/AhilyaKokare/visitor-pass-service/pkg/middleware"
	"github.com/AhilyaKokare/visitor-pass-service/pkg/response"
)

// RouterConfig holds the handlers and auth settings wired into the engine
type RouterConfig struct {
	Pass           *PassHandler
	Approval       *ApprovalHandler
	Security       *SecurityHandler
	Internal       *InternalHandler
	Health         *HealthHandler
	JWTSecret      string
	InternalAPIKey string
}

// RequireTenant rejects requests whose token tenant does not match the
// tenant addressed in the path. The service layer re-checks ownership of
// each loaded pass, so this guard is the first gate, not the only one.
func RequireTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		principalTenant, _ := middleware.GetTenantID(c)
		if err := service.AuthorizeTenantAccess(principalTenant, c.Param("tenantId")); err != nil {
			c.JSON(http.StatusForbidden, response.TenantAccessDenied())
			c.Abort()
			return
		}
		c.Next()
	}
}

// SetupRouter wires all routes onto the given engine
func SetupRouter(r *gin.Engine, cfg *RouterConfig) {
	r.GET("/health", cfg.Health.Health)
	r.GET("/health/ready", cfg.Health.Ready)

	internalAPI := r.Group("/api/v1/internal")
	internalAPI.Use(middleware.InternalAPIAuth(cfg.InternalAPIKey))
	{
		internalAPI.GET("/passes/:passId", cfg.Internal.GetPass)
	}

	tenant := r.Group("/api/v1/tenants/:tenantId")
	tenant.Use(middleware.JWTMiddleware(&middleware.JWTConfig{Secret: cfg.JWTSecret}))
	tenant.Use(RequireTenant())
	{
		passes := tenant.Group("/passes")
		{
			passes.POST("", middleware.RequireRole(
				string(domain.RoleEmployee), string(domain.RoleTenantAdmin),
			), cfg.Pass.Create)
			passes.GET("", middleware.RequireRole(
				string(domain.RoleApprover), string(domain.RoleTenantAdmin),
			), cfg.Pass.List)
			passes.GET("/history", cfg.Pass.ListMine)
			passes.GET("/:passId", cfg.Pass.GetByID)
			passes.GET("/:passId/history", cfg.Pass.History)
		}

		approvals := tenant.Group("/approvals")
		approvals.Use(middleware.RequireRole(
			string(domain.RoleApprover), string(domain.RoleTenantAdmin),
		))
		{
			approvals.POST("/:passId/approve", cfg.Approval.Approve)
			approvals.POST("/:passId/reject", cfg.Approval.Reject)
		}

		security := tenant.Group("/security")
		security.Use(middleware.RequireRole(
			string(domain.RoleSecurity), string(domain.RoleTenantAdmin),
		))
		{
			security.GET("/passes/search", cfg.Security.Search)
			security.POST("/check-in/:passId", cfg.Security.CheckIn)
			security.POST("/check-out/:passId", cfg.Security.CheckOut)
			security.GET("/dashboard/today", cfg.Security.Today)
		}
	}
}
