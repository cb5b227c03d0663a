package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kcislk/gradebook-api/internal/dto"
	"github.com/kcislk/gradebook-api/internal/grading"
	"github.com/kcislk/gradebook-api/internal/models"
	appErrors "github.com/kcislk/gradebook-api/pkg/errors"
)

// StatisticsService computes class-level descriptive statistics,
// distributions and per-student trends on top of the gradebook views.
type StatisticsService struct {
	gradebook *GradebookService
	scores    gradebookScoreRepository
	cache     *CacheService
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStatisticsService constructs the service.
func NewStatisticsService(gradebook *GradebookService, scores gradebookScoreRepository, cache *CacheService, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *StatisticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &StatisticsService{gradebook: gradebook, scores: scores, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

// ClassStatistics computes descriptive statistics over the class's
// semester (LT/IT) or term (KCFS) grades. Results are cached per
// course and period; any score write invalidates them.
func (s *StatisticsService) ClassStatistics(ctx context.Context, scope models.UserScope, courseID, periodID string) (*dto.ClassStatisticsResponse, error) {
	if _, err := s.gradebook.authorizeRead(ctx, scope, courseID); err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("stats:%s:%s:summary", courseID, periodID)
	var cached dto.ClassStatisticsResponse
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		cached.Cached = true
		return &cached, nil
	}

	grades, err := s.classGrades(ctx, scope, courseID, periodID)
	if err != nil {
		return nil, err
	}

	resp := &dto.ClassStatisticsResponse{
		CourseID: courseID,
		PeriodID: periodID,
		Metric:   "semester_grade",
		Summary:  grading.CalculateStatistics(grades),
	}
	if err := s.cache.Set(ctx, cacheKey, resp, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache class statistics", zap.String("course_id", courseID), zap.Error(err))
	}
	return resp, nil
}

// ClassDistribution buckets class grades into the fixed performance
// bands with shape statistics.
func (s *StatisticsService) ClassDistribution(ctx context.Context, scope models.UserScope, courseID, periodID string) (*dto.DistributionResponse, error) {
	if _, err := s.gradebook.authorizeRead(ctx, scope, courseID); err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("stats:%s:%s:distribution", courseID, periodID)
	var cached dto.DistributionResponse
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		cached.Cached = true
		return &cached, nil
	}

	grades, err := s.classGrades(ctx, scope, courseID, periodID)
	if err != nil {
		return nil, err
	}

	resp := &dto.DistributionResponse{
		CourseID:     courseID,
		PeriodID:     periodID,
		Distribution: grading.CalculateDistribution(grades),
	}
	if err := s.cache.Set(ctx, cacheKey, resp, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache class distribution", zap.String("course_id", courseID), zap.Error(err))
	}
	return resp, nil
}

// StudentTrend classifies the direction of a student's score series.
// Callers may submit the series directly; otherwise it is built from
// the student's stored entries ordered by entry time.
func (s *StatisticsService) StudentTrend(ctx context.Context, scope models.UserScope, req dto.TrendRequest) (*dto.TrendResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid trend payload")
	}

	if _, err := s.gradebook.authorizeRead(ctx, scope, req.CourseID); err != nil {
		return nil, err
	}

	points := req.Points
	if len(points) == 0 {
		entries, err := s.scores.List(ctx, models.ScoreFilter{StudentID: req.StudentID, CourseID: req.CourseID})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scores")
		}
		points = entriesToPoints(entries)
	}

	return &dto.TrendResponse{
		StudentID: req.StudentID,
		CourseID:  req.CourseID,
		Result:    grading.CalculateTrend(points),
	}, nil
}

// classGrades materialises the class gradebook and extracts the grade
// series. Students without a computable grade are skipped, never
// counted as zero.
func (s *StatisticsService) classGrades(ctx context.Context, scope models.UserScope, courseID, periodID string) ([]float64, error) {
	book, err := s.gradebook.ClassGradebook(ctx, scope, courseID, periodID)
	if err != nil {
		return nil, err
	}
	grades := make([]float64, 0, len(book.Rows))
	for _, row := range book.Rows {
		switch {
		case row.TermGrade != nil:
			grades = append(grades, *row.TermGrade)
		case row.Grades != nil && row.Grades.SemesterGrade != nil:
			grades = append(grades, *row.Grades.SemesterGrade)
		}
	}
	return grades, nil
}

// entriesToPoints projects stored entries onto the trend axis using the
// entry timestamp, which sorts lexicographically in RFC 3339 form.
// Absent and never-entered scores carry no information for a trend.
func entriesToPoints(entries []models.ScoreEntry) []grading.Point {
	points := make([]grading.Point, 0, len(entries))
	for _, entry := range entries {
		if entry.Value == nil || entry.IsAbsent {
			continue
		}
		points = append(points, grading.Point{
			X: entry.UpdatedAt.UTC().Format(time.RFC3339),
			Y: *entry.Value,
		})
	}
	return points
}
