package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kcislk/gradebook-api/internal/dto"
	"github.com/kcislk/gradebook-api/internal/models"
	"github.com/kcislk/gradebook-api/internal/service"
	appErrors "github.com/kcislk/gradebook-api/pkg/errors"
	"github.com/kcislk/gradebook-api/pkg/response"
)

// ExpectationHandler wires expectation settings and progress reporting.
type ExpectationHandler struct {
	service *service.ExpectationService
}

// NewExpectationHandler creates a new handler.
func NewExpectationHandler(svc *service.ExpectationService) *ExpectationHandler {
	return &ExpectationHandler{service: svc}
}

// ListSettings godoc
// @Summary List expectation settings
// @Description Every configured expected-assessment-count setting for a year and term
// @Tags Expectations
// @Produce json
// @Param academicYear query string true "Academic year"
// @Param term query int true "Term"
// @Success 200 {object} response.Envelope
// @Router /expectations [get]
func (h *ExpectationHandler) ListSettings(c *gin.Context) {
	term, err := strconv.Atoi(c.Query("term"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "term must be a number"))
		return
	}

	settings, err := h.service.ListSettings(c.Request.Context(), c.Query("academicYear"), term)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// UpsertSetting godoc
// @Summary Configure expected assessment counts
// @Description Create or update a setting for one scope
// @Tags Expectations
// @Accept json
// @Produce json
// @Param id path string true "Period ID"
// @Param payload body dto.ExpectationUpsertRequest true "Setting payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /periods/{id}/expectations [put]
func (h *ExpectationHandler) UpsertSetting(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.ExpectationUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid expectation payload"))
		return
	}

	setting, err := h.service.UpsertSetting(c.Request.Context(), scope, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, setting, nil)
}

// DeleteSetting godoc
// @Summary Remove an expectation setting
// @Description Reset the scope back to defaults
// @Tags Expectations
// @Produce json
// @Param id path string true "Period ID"
// @Param settingId path string true "Setting ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /periods/{id}/expectations/{settingId} [delete]
func (h *ExpectationHandler) DeleteSetting(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.DeleteSetting(c.Request.Context(), scope, c.Param("id"), c.Param("settingId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ProgressReport godoc
// @Summary Gradebook completion report
// @Description Per-course completion for a grade and track
// @Tags Expectations
// @Produce json
// @Param id path string true "Period ID"
// @Param academicYear query string true "Academic year"
// @Param term query int true "Term"
// @Param grade query int true "Grade level"
// @Param courseType query string true "Course type"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /periods/{id}/progress [get]
func (h *ExpectationHandler) ProgressReport(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	term, err := strconv.Atoi(c.Query("term"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "term must be a number"))
		return
	}
	grade, err := strconv.Atoi(c.Query("grade"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "grade must be a number"))
		return
	}
	courseType := models.CourseType(c.Query("courseType"))
	if !courseType.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown course type"))
		return
	}

	report, err := h.service.ProgressReport(c.Request.Context(), scope, c.Query("academicYear"), term, c.Param("id"), grade, courseType)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
