package models

import "time"

// Default expected assessment counts applied when no setting row exists.
const (
	DefaultExpectedFormative  = 8
	DefaultExpectedSummative  = 4
	DefaultExpectedMidOrFinal = 1
	DefaultExpectedItems      = DefaultExpectedFormative + DefaultExpectedSummative + DefaultExpectedMidOrFinal
)

// ExpectationSetting configures the expected assessment count for a
// grade x level x course-type scope. KCFS rows are unified per year and
// term, so Grade and Level are NULL for that track.
type ExpectationSetting struct {
	ID                 string     `db:"id" json:"id"`
	AcademicYear       string     `db:"academic_year" json:"academic_year"`
	Term               int        `db:"term" json:"term"`
	CourseType         CourseType `db:"course_type" json:"course_type"`
	Grade              *int       `db:"grade" json:"grade,omitempty"`
	Level              *string    `db:"level" json:"level,omitempty"`
	ExpectedFormative  int        `db:"expected_formative" json:"expected_formative"`
	ExpectedSummative  int        `db:"expected_summative" json:"expected_summative"`
	ExpectedMidOrFinal int        `db:"expected_mid_or_final" json:"expected_mid_or_final"`
	UpdatedBy          string     `db:"updated_by" json:"updated_by"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// TotalExpected is the sum of the configured assessment counts.
func (s ExpectationSetting) TotalExpected() int {
	return s.ExpectedFormative + s.ExpectedSummative + s.ExpectedMidOrFinal
}

// ExpectationFilter scopes setting lookups.
type ExpectationFilter struct {
	AcademicYear string
	Term         int
	CourseType   CourseType
	Grade        *int
	Level        *string
}

// ProgressStatus classifies gradebook completion across course types.
type ProgressStatus string

const (
	ProgressOnTrack    ProgressStatus = "on_track"
	ProgressBehind     ProgressStatus = "behind"
	ProgressNotStarted ProgressStatus = "not_started"
)
