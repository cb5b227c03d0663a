package dto

import (
	"github.com/kcislk/gradebook-api/internal/grading"
	"github.com/kcislk/gradebook-api/internal/models"
)

// ScoreUpsertRequest is one score mutation submitted by a teacher.
type ScoreUpsertRequest struct {
	StudentID      string   `json:"student_id" validate:"required"`
	AssessmentCode string   `json:"assessment_code" validate:"required"`
	Value          *float64 `json:"value"`
	IsAbsent       bool     `json:"is_absent"`
}

// BulkScoreRequest applies a batch of score mutations atomically for
// one course and period.
type BulkScoreRequest struct {
	Entries []ScoreUpsertRequest `json:"entries" validate:"required,min=1,dive"`
}

// StudentGradebook is the per-student view of raw entries plus the
// recomputed grade snapshot.
type StudentGradebook struct {
	StudentID  string              `json:"student_id"`
	CourseID   string              `json:"course_id"`
	PeriodID   string              `json:"period_id"`
	CourseType models.CourseType   `json:"course_type"`
	Entries    []models.ScoreEntry `json:"entries"`
	Grades     *grading.Result     `json:"grades,omitempty"`
	TermGrade  *float64            `json:"term_grade,omitempty"`
	UsedCount  int                 `json:"used_count,omitempty"`
}

// ClassGradebookRow is one student's row in the class gradebook.
type ClassGradebookRow struct {
	StudentID string              `json:"student_id"`
	Scores    map[string]*float64 `json:"scores"`
	Absences  []string            `json:"absences,omitempty"`
	Grades    *grading.Result     `json:"grades,omitempty"`
	TermGrade *float64            `json:"term_grade,omitempty"`
}

// ClassGradebook is the full roster view for one course and period.
type ClassGradebook struct {
	CourseID   string              `json:"course_id"`
	PeriodID   string              `json:"period_id"`
	CourseType models.CourseType   `json:"course_type"`
	Grade      int                 `json:"grade"`
	Codes      []string            `json:"codes"`
	Rows       []ClassGradebookRow `json:"rows"`
}
