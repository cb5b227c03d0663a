package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kcislk/gradebook-api/internal/dto"
	"github.com/kcislk/gradebook-api/internal/service"
	appErrors "github.com/kcislk/gradebook-api/pkg/errors"
	"github.com/kcislk/gradebook-api/pkg/response"
)

// GradebookHandler wires score entry and gradebook view endpoints.
type GradebookHandler struct {
	service *service.GradebookService
}

// NewGradebookHandler creates a new handler.
func NewGradebookHandler(svc *service.GradebookService) *GradebookHandler {
	return &GradebookHandler{service: svc}
}

// UpsertScore godoc
// @Summary Record or update a score
// @Description Upsert one score entry for a course and period
// @Tags Gradebook
// @Accept json
// @Produce json
// @Param courseId path string true "Course ID"
// @Param periodId path string true "Period ID"
// @Param payload body dto.ScoreUpsertRequest true "Score payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /courses/{courseId}/periods/{periodId}/scores [put]
func (h *GradebookHandler) UpsertScore(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.ScoreUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid score payload"))
		return
	}

	entry, err := h.service.UpsertScore(c.Request.Context(), scope, c.Param("courseId"), c.Param("periodId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// BulkUpsertScores godoc
// @Summary Record a batch of scores
// @Description Upsert multiple score entries atomically
// @Tags Gradebook
// @Accept json
// @Produce json
// @Param courseId path string true "Course ID"
// @Param periodId path string true "Period ID"
// @Param payload body dto.BulkScoreRequest true "Batch payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /courses/{courseId}/periods/{periodId}/scores/bulk [post]
func (h *GradebookHandler) BulkUpsertScores(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.BulkScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid bulk payload"))
		return
	}

	count, err := h.service.BulkUpsertScores(c.Request.Context(), scope, c.Param("courseId"), c.Param("periodId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"saved": count}, nil)
}

// StudentGradebook godoc
// @Summary Student gradebook
// @Description Raw entries plus the recomputed grade snapshot for one student
// @Tags Gradebook
// @Produce json
// @Param courseId path string true "Course ID"
// @Param periodId path string true "Period ID"
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /courses/{courseId}/periods/{periodId}/students/{studentId} [get]
func (h *GradebookHandler) StudentGradebook(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	book, err := h.service.StudentGradebook(c.Request.Context(), scope, c.Param("studentId"), c.Param("courseId"), c.Param("periodId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, book, nil)
}

// ClassGradebook godoc
// @Summary Class gradebook
// @Description Roster-wide gradebook for one course and period
// @Tags Gradebook
// @Produce json
// @Param courseId path string true "Course ID"
// @Param periodId path string true "Period ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /courses/{courseId}/periods/{periodId}/gradebook [get]
func (h *GradebookHandler) ClassGradebook(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	book, err := h.service.ClassGradebook(c.Request.Context(), scope, c.Param("courseId"), c.Param("periodId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, book, nil)
}
