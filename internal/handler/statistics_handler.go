package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kcislk/gradebook-api/internal/dto"
	"github.com/kcislk/gradebook-api/internal/service"
	appErrors "github.com/kcislk/gradebook-api/pkg/errors"
	"github.com/kcislk/gradebook-api/pkg/response"
)

// StatisticsHandler wires class statistics and trend endpoints.
type StatisticsHandler struct {
	service *service.StatisticsService
}

// NewStatisticsHandler creates a new handler.
func NewStatisticsHandler(svc *service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{service: svc}
}

// ClassStatistics godoc
// @Summary Class statistics
// @Description Descriptive statistics over the class grade series
// @Tags Statistics
// @Produce json
// @Param courseId path string true "Course ID"
// @Param periodId path string true "Period ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /courses/{courseId}/periods/{periodId}/statistics [get]
func (h *StatisticsHandler) ClassStatistics(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	stats, err := h.service.ClassStatistics(c.Request.Context(), scope, c.Param("courseId"), c.Param("periodId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil, map[string]interface{}{"cached": stats.Cached})
}

// ClassDistribution godoc
// @Summary Grade distribution
// @Description Performance-band distribution with shape statistics
// @Tags Statistics
// @Produce json
// @Param courseId path string true "Course ID"
// @Param periodId path string true "Period ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /courses/{courseId}/periods/{periodId}/distribution [get]
func (h *StatisticsHandler) ClassDistribution(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	dist, err := h.service.ClassDistribution(c.Request.Context(), scope, c.Param("courseId"), c.Param("periodId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dist, nil)
}

// StudentTrend godoc
// @Summary Student score trend
// @Description Classify the direction of a student's score series
// @Tags Statistics
// @Accept json
// @Produce json
// @Param payload body dto.TrendRequest true "Trend payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /statistics/trend [post]
func (h *StatisticsHandler) StudentTrend(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.TrendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid trend payload"))
		return
	}

	trend, err := h.service.StudentTrend(c.Request.Context(), scope, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, trend, nil)
}
