package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kcislk/gradebook-api/internal/service"
	"github.com/kcislk/gradebook-api/pkg/response"
)

// MetricsHandler exposes the diagnostic metrics snapshot.
type MetricsHandler struct {
	service *service.MetricsService
}

// NewMetricsHandler creates a new handler.
func NewMetricsHandler(svc *service.MetricsService) *MetricsHandler {
	return &MetricsHandler{service: svc}
}

// Snapshot godoc
// @Summary Metrics snapshot
// @Description Aggregated request, cache and database metrics
// @Tags System
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /system/metrics [get]
func (h *MetricsHandler) Snapshot(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Snapshot(), nil)
}
