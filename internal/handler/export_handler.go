package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kcislk/gradebook-api/internal/service"
	appErrors "github.com/kcislk/gradebook-api/pkg/errors"
	"github.com/kcislk/gradebook-api/pkg/response"
)

// ExportHandler wires gradebook export downloads.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler creates a new handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// ClassGradebook godoc
// @Summary Export class gradebook
// @Description Download the class gradebook as CSV or PDF
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Param courseId path string true "Course ID"
// @Param periodId path string true "Period ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /courses/{courseId}/periods/{periodId}/export [get]
func (h *ExportHandler) ClassGradebook(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	format := service.ExportFormat(c.DefaultQuery("format", string(service.ExportCSV)))
	result, err := h.service.ClassGradebookExport(c.Request.Context(), scope, c.Param("courseId"), c.Param("periodId"), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.FileName+`"`)
	c.Data(200, result.ContentType, result.Content)
}
