package handler

import (
	"net/http"

	"register_server/internal/service"

	"github.com/gin-gonic/gin"
)

// HealthHandler 健康检查
type HealthHandler struct {
	healthSvc service.HealthService
}

func NewHealthHandler(healthSvc service.HealthService) *HealthHandler {
	return &HealthHandler{healthSvc: healthSvc}
}

// Health GET /healthz，存储不可用时返回 503
func (h *HealthHandler) Health(c *gin.Context) {
	rsp := h.healthSvc.Check(c.Request.Context())
	status := http.StatusOK
	if rsp.Status != "UP" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, rsp)
}
