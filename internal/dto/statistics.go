package dto

import "github.com/kcislk/gradebook-api/internal/grading"

// ClassStatisticsResponse carries descriptive statistics for one class
// metric, typically the semester grade series.
type ClassStatisticsResponse struct {
	CourseID string          `json:"course_id"`
	PeriodID string          `json:"period_id"`
	Metric   string          `json:"metric"`
	Summary  grading.Summary `json:"summary"`
	Cached   bool            `json:"cached"`
}

// DistributionResponse buckets class grades into performance bands.
type DistributionResponse struct {
	CourseID     string               `json:"course_id"`
	PeriodID     string               `json:"period_id"`
	Distribution grading.Distribution `json:"distribution"`
	Cached       bool                 `json:"cached"`
}

// TrendRequest names the score series to classify.
type TrendRequest struct {
	StudentID string          `json:"student_id" validate:"required"`
	CourseID  string          `json:"course_id" validate:"required"`
	Points    []grading.Point `json:"points"`
}

// TrendResponse is the classified direction of a score series.
type TrendResponse struct {
	StudentID string              `json:"student_id"`
	CourseID  string              `json:"course_id"`
	Result    grading.TrendResult `json:"result"`
}
