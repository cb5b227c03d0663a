package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/kcislk/gradebook-api/internal/dto"
	"github.com/kcislk/gradebook-api/internal/models"
	appErrors "github.com/kcislk/gradebook-api/pkg/errors"
	"github.com/kcislk/gradebook-api/pkg/export"
)

// ExportFormat selects the export renderer.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// ExportResult is a rendered export document.
type ExportResult struct {
	FileName    string
	ContentType string
	Content     []byte
}

// ExportService renders class gradebooks as CSV or PDF downloads.
type ExportService struct {
	gradebook *GradebookService
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	enabled   bool
	logger    *zap.Logger
}

// NewExportService constructs the service.
func NewExportService(gradebook *GradebookService, enabled bool, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		gradebook: gradebook,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		enabled:   enabled,
		logger:    logger,
	}
}

// ClassGradebookExport renders the class gradebook in the requested
// format. Scope checks happen inside the gradebook service, so an
// export can never show more than the corresponding API view.
func (s *ExportService) ClassGradebookExport(ctx context.Context, scope models.UserScope, courseID, periodID string, format ExportFormat) (*ExportResult, error) {
	if !s.enabled {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "exports are disabled")
	}

	book, err := s.gradebook.ClassGradebook(ctx, scope, courseID, periodID)
	if err != nil {
		return nil, err
	}

	dataset := gradebookDataset(book)
	switch format {
	case ExportCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{
			FileName:    fmt.Sprintf("gradebook_%s_%s.csv", courseID, periodID),
			ContentType: "text/csv",
			Content:     content,
		}, nil
	case ExportPDF:
		content, err := s.pdf.Render(dataset, fmt.Sprintf("Gradebook %s", courseID))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{
			FileName:    fmt.Sprintf("gradebook_%s_%s.pdf", courseID, periodID),
			ContentType: "application/pdf",
			Content:     content,
		}, nil
	}
	return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown export format %q", format))
}

// gradebookDataset flattens the class gradebook into a tabular dataset.
// Absent entries render as "ABS", never-entered scores as blank.
func gradebookDataset(book *dto.ClassGradebook) export.Dataset {
	headers := append([]string{"Student"}, book.Codes...)
	if book.CourseType == models.CourseTypeKCFS {
		headers = append(headers, "Term Grade")
	} else {
		headers = append(headers, "Formative Avg", "Summative Avg", "Semester Grade")
	}

	rows := make([]map[string]string, 0, len(book.Rows))
	for _, row := range book.Rows {
		record := map[string]string{"Student": row.StudentID}
		absent := make(map[string]bool, len(row.Absences))
		for _, code := range row.Absences {
			absent[code] = true
		}
		for _, code := range book.Codes {
			switch {
			case absent[code]:
				record[code] = "ABS"
			case row.Scores[code] != nil:
				record[code] = formatScore(*row.Scores[code])
			default:
				record[code] = ""
			}
		}
		if book.CourseType == models.CourseTypeKCFS {
			record["Term Grade"] = formatOptional(row.TermGrade)
		} else if row.Grades != nil {
			record["Formative Avg"] = formatOptional(row.Grades.FormativeAvg)
			record["Summative Avg"] = formatOptional(row.Grades.SummativeAvg)
			record["Semester Grade"] = formatOptional(row.Grades.SemesterGrade)
		}
		rows = append(rows, record)
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}
