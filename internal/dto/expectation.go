package dto

import "github.com/kcislk/gradebook-api/internal/models"

// ExpectationUpsertRequest configures the expected assessment counts
// for one scope. Grade and Level are required for LT/IT and must be
// omitted for KCFS, whose settings are unified per year and term.
type ExpectationUpsertRequest struct {
	AcademicYear       string            `json:"academic_year" validate:"required"`
	Term               int               `json:"term" validate:"required,min=1,max=4"`
	CourseType         models.CourseType `json:"course_type" validate:"required"`
	Grade              *int              `json:"grade"`
	Level              *string           `json:"level"`
	ExpectedFormative  int               `json:"expected_formative" validate:"min=0,max=8"`
	ExpectedSummative  int               `json:"expected_summative" validate:"min=0,max=4"`
	ExpectedMidOrFinal int               `json:"expected_mid_or_final" validate:"min=0,max=1"`
}

// CourseProgress is the completion report for one course.
type CourseProgress struct {
	CourseID      string                `json:"course_id"`
	CourseName    string                `json:"course_name"`
	TeacherID     string                `json:"teacher_id"`
	StudentCount  int                   `json:"student_count"`
	ExpectedItems int                   `json:"expected_items"`
	ScoresEntered int                   `json:"scores_entered"`
	Percentage    int                   `json:"percentage"`
	Status        models.ProgressStatus `json:"status"`
}

// ProgressReport aggregates course completion for a grade and track.
type ProgressReport struct {
	AcademicYear string                `json:"academic_year"`
	Term         int                   `json:"term"`
	PeriodID     string                `json:"period_id"`
	Grade        int                   `json:"grade"`
	CourseType   models.CourseType     `json:"course_type"`
	Courses      []CourseProgress      `json:"courses"`
	Status       models.ProgressStatus `json:"status"`
}
