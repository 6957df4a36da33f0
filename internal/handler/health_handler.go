package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AhilyaKokare/visitor-pass-service/internal/worker"
	"github.com/AhilyaKokare/visitor-pass-service/pkg/database"
	"github.com/AhilyaKokare/visitor-pass-service/pkg/response"
)

// HealthHandler reports service liveness and readiness
type HealthHandler struct {
	db           *database.PostgresDB
	expiryWorker *worker.ExpiryWorker
}

// NewHealthHandler creates a new HealthHandler. Both dependencies may be nil
// in reduced deployments.
func NewHealthHandler(db *database.PostgresDB, expiryWorker *worker.ExpiryWorker) *HealthHandler {
	return &HealthHandler{db: db, expiryWorker: expiryWorker}
}

// Health handles the liveness probe
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(gin.H{"status": "ok"}))
}

// Ready handles the readiness probe, failing when the database is down
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	status := gin.H{"status": "ready", "database": "ok"}

	if h.db != nil {
		if err := h.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, response.Error(response.ErrCodeServiceUnavailable, "database unavailable"))
			return
		}
	}

	if h.expiryWorker != nil {
		stats := h.expiryWorker.GetStats()
		status["expiry_worker"] = gin.H{
			"running":       stats.IsRunning,
			"total_expired": stats.TotalExpired,
			"last_scan":     stats.LastScanTime,
		}
	}

	c.JSON(http.StatusOK, response.Success(status))
}
