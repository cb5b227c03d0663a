package models

import "time"

// CourseType identifies the grading track a course belongs to.
type CourseType string

const (
	CourseTypeLT   CourseType = "LT"
	CourseTypeIT   CourseType = "IT"
	CourseTypeKCFS CourseType = "KCFS"
)

// Valid reports whether the course type is one of the known tracks.
func (t CourseType) Valid() bool {
	switch t {
	case CourseTypeLT, CourseTypeIT, CourseTypeKCFS:
		return true
	}
	return false
}

// ScoreEntry is a single raw score keyed by assessment code.
// Value is nullable: NULL means the score was never entered.
type ScoreEntry struct {
	ID             string     `db:"id" json:"id"`
	StudentID      string     `db:"student_id" json:"student_id"`
	CourseID       string     `db:"course_id" json:"course_id"`
	PeriodID       string     `db:"period_id" json:"period_id"`
	AssessmentCode string     `db:"assessment_code" json:"assessment_code"`
	Value          *float64   `db:"value" json:"value,omitempty"`
	IsAbsent       bool       `db:"is_absent" json:"is_absent"`
	EnteredBy      string     `db:"entered_by" json:"entered_by"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt      *time.Time `db:"deleted_at" json:"-"`
}

// ScoreFilter captures query criteria for listing score entries.
type ScoreFilter struct {
	StudentID      string
	CourseID       string
	PeriodID       string
	AssessmentCode string
}

// Course models a taught course within one track.
type Course struct {
	ID         string     `db:"id" json:"id"`
	Name       string     `db:"name" json:"name"`
	CourseType CourseType `db:"course_type" json:"course_type"`
	Grade      int        `db:"grade" json:"grade"`
	Level      *string    `db:"level" json:"level,omitempty"`
	TeacherID  string     `db:"teacher_id" json:"teacher_id"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// Enrollment links a student to a course for a period.
type Enrollment struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	CourseID  string    `db:"course_id" json:"course_id"`
	PeriodID  string    `db:"period_id" json:"period_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
