package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kcislk/gradebook-api/internal/access"
	"github.com/kcislk/gradebook-api/internal/dto"
	"github.com/kcislk/gradebook-api/internal/grading"
	"github.com/kcislk/gradebook-api/internal/models"
	appErrors "github.com/kcislk/gradebook-api/pkg/errors"
)

type expectationRepository interface {
	FindByID(ctx context.Context, id string) (*models.ExpectationSetting, error)
	FindByScope(ctx context.Context, filter models.ExpectationFilter) (*models.ExpectationSetting, error)
	List(ctx context.Context, academicYear string, term int) ([]models.ExpectationSetting, error)
	Upsert(ctx context.Context, setting *models.ExpectationSetting) error
	Delete(ctx context.Context, id string) error
}

type expectationCourseRepository interface {
	ListByGradeAndType(ctx context.Context, grade int, courseType models.CourseType) ([]models.Course, error)
	CountStudents(ctx context.Context, courseID, periodID string) (int, error)
}

type expectationScoreRepository interface {
	CountEntered(ctx context.Context, courseID, periodID string) (int, error)
}

// Per-course completion thresholds for progress classification.
const onTrackThreshold = 80

// ExpectationService manages expected-assessment-count settings and the
// gradebook completion reporting built on them.
type ExpectationService struct {
	settings  expectationRepository
	courses   expectationCourseRepository
	scores    expectationScoreRepository
	periods   gradebookPeriodRepository
	cache     *CacheService
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExpectationService constructs the service.
func NewExpectationService(settings expectationRepository, courses expectationCourseRepository, scores expectationScoreRepository, periods gradebookPeriodRepository, cache *CacheService, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *ExpectationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ExpectationService{settings: settings, courses: courses, scores: scores, periods: periods, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

// ListSettings returns every configured setting for a year and term.
func (s *ExpectationService) ListSettings(ctx context.Context, academicYear string, term int) ([]models.ExpectationSetting, error) {
	settings, err := s.settings.List(ctx, academicYear, term)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list settings")
	}
	return settings, nil
}

// UpsertSetting creates or updates a setting for one scope. LT/IT
// scopes carry grade and level; KCFS scopes must omit both because the
// setting is unified per year and term.
func (s *ExpectationService) UpsertSetting(ctx context.Context, scope models.UserScope, periodID string, req dto.ExpectationUpsertRequest) (*models.ExpectationSetting, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid expectation payload")
	}
	if !req.CourseType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown course type %q", req.CourseType))
	}

	if err := s.authorizeMutation(ctx, scope, req.CourseType, req.Grade, periodID); err != nil {
		return nil, err
	}

	switch req.CourseType {
	case models.CourseTypeKCFS:
		if req.Grade != nil || req.Level != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "KCFS settings are unified: grade and level must be omitted")
		}
	default:
		if req.Grade == nil || req.Level == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "grade and level are required for LT and IT settings")
		}
	}

	setting := &models.ExpectationSetting{
		AcademicYear:       req.AcademicYear,
		Term:               req.Term,
		CourseType:         req.CourseType,
		Grade:              req.Grade,
		Level:              req.Level,
		ExpectedFormative:  req.ExpectedFormative,
		ExpectedSummative:  req.ExpectedSummative,
		ExpectedMidOrFinal: req.ExpectedMidOrFinal,
		UpdatedBy:          scope.UserID,
	}
	if err := s.settings.Upsert(ctx, setting); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save setting")
	}

	s.invalidateProgress(ctx, periodID)
	return setting, nil
}

// DeleteSetting removes a setting, which resets its scope to defaults.
// The target is loaded first so heads are checked against its grade
// and course type, not just their role.
func (s *ExpectationService) DeleteSetting(ctx context.Context, scope models.UserScope, periodID, settingID string) error {
	setting, err := s.settings.FindByID(ctx, settingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "setting not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load setting")
	}
	if err := s.authorizeMutation(ctx, scope, setting.CourseType, setting.Grade, periodID); err != nil {
		return err
	}
	if err := s.settings.Delete(ctx, settingID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "setting not found")
	}
	s.invalidateProgress(ctx, periodID)
	return nil
}

// ExpectedItems resolves the expected assessment count for a course
// scope. KCFS is a fixed function of the grade band's category count;
// stored rows never override it. LT/IT read their stored setting and
// fall back to the default 8 formative + 4 summative + 1 final or mid.
func (s *ExpectationService) ExpectedItems(ctx context.Context, filter models.ExpectationFilter, grade int) (int, error) {
	if filter.CourseType == models.CourseTypeKCFS {
		return grading.KCFSExpectedCategories(grade), nil
	}
	setting, err := s.settings.FindByScope(ctx, filter)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DefaultExpectedItems, nil
		}
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load setting")
	}
	return setting.TotalExpected(), nil
}

// ProgressReport aggregates gradebook completion for every course in a
// grade and track. The denominator is students x expected items; a
// course with no students reports zero.
func (s *ExpectationService) ProgressReport(ctx context.Context, scope models.UserScope, academicYear string, term int, periodID string, grade int, courseType models.CourseType) (*dto.ProgressReport, error) {
	policy := access.PolicyFor(scope)
	if decision := policy.CanAccessGrade(grade); !decision.Allowed {
		return nil, appErrors.Clone(appErrors.ErrForbidden, decision.Reason)
	}
	if scope.Role == models.RoleHead {
		if decision := policy.CanAccessCourseType(courseType); !decision.Allowed {
			return nil, appErrors.Clone(appErrors.ErrForbidden, decision.Reason)
		}
	}

	cacheKey := fmt.Sprintf("progress:%s:%d:%s", periodID, grade, courseType)
	var cached dto.ProgressReport
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	courses, err := s.courses.ListByGradeAndType(ctx, grade, courseType)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}

	report := &dto.ProgressReport{
		AcademicYear: academicYear,
		Term:         term,
		PeriodID:     periodID,
		Grade:        grade,
		CourseType:   courseType,
		Courses:      make([]dto.CourseProgress, 0, len(courses)),
	}

	for _, course := range courses {
		students, err := s.courses.CountStudents(ctx, course.ID, periodID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
		}
		entered, err := s.scores.CountEntered(ctx, course.ID, periodID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count scores")
		}
		expected, err := s.ExpectedItems(ctx, models.ExpectationFilter{
			AcademicYear: academicYear,
			Term:         term,
			CourseType:   courseType,
			Grade:        &course.Grade,
			Level:        course.Level,
		}, course.Grade)
		if err != nil {
			return nil, err
		}

		pct := grading.ProgressPercentage(entered, students, expected)
		report.Courses = append(report.Courses, dto.CourseProgress{
			CourseID:      course.ID,
			CourseName:    course.Name,
			TeacherID:     course.TeacherID,
			StudentCount:  students,
			ExpectedItems: expected,
			ScoresEntered: entered,
			Percentage:    pct,
			Status:        progressStatus(pct),
		})
	}

	report.Status = aggregateStatus(report.Courses)
	if err := s.cache.Set(ctx, cacheKey, report, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache progress report", zap.String("period_id", periodID), zap.Error(err))
	}
	return report, nil
}

// authorizeMutation admits admins everywhere and heads within their
// band and track; expectation changes in locked or archived periods
// are rejected.
func (s *ExpectationService) authorizeMutation(ctx context.Context, scope models.UserScope, courseType models.CourseType, grade *int, periodID string) error {
	switch scope.Role {
	case models.RoleAdmin:
	case models.RoleHead:
		policy := access.PolicyFor(scope)
		if grade != nil {
			if decision := policy.CanAccessGrade(*grade); !decision.Allowed {
				return appErrors.Clone(appErrors.ErrForbidden, decision.Reason)
			}
		}
		if courseType != "" {
			if decision := policy.CanAccessCourseType(courseType); !decision.Allowed {
				return appErrors.Clone(appErrors.ErrForbidden, decision.Reason)
			}
		}
	default:
		return appErrors.Clone(appErrors.ErrForbidden, "only admins and heads may manage expectation settings")
	}

	period, err := s.periods.FindByID(ctx, periodID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "period not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load period")
	}
	if period.State == models.PeriodLocked || period.State == models.PeriodArchived {
		return appErrors.Clone(appErrors.ErrPeriodLocked, fmt.Sprintf("period is %s and does not accept setting changes", period.State))
	}
	return nil
}

func (s *ExpectationService) invalidateProgress(ctx context.Context, periodID string) {
	if !s.cache.Enabled() {
		return
	}
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("progress:%s:*", periodID)); err != nil {
		s.logger.Warn("failed to invalidate progress cache", zap.String("period_id", periodID), zap.Error(err))
	}
}

func progressStatus(pct int) models.ProgressStatus {
	switch {
	case pct >= onTrackThreshold:
		return models.ProgressOnTrack
	case pct > 0:
		return models.ProgressBehind
	}
	return models.ProgressNotStarted
}

// aggregateStatus rolls per-course statuses up: on track when every
// course is on track, not started when nothing has begun, behind
// otherwise. An empty course list counts as not started.
func aggregateStatus(courses []dto.CourseProgress) models.ProgressStatus {
	if len(courses) == 0 {
		return models.ProgressNotStarted
	}
	allOnTrack := true
	anyStarted := false
	for _, c := range courses {
		if c.Status != models.ProgressOnTrack {
			allOnTrack = false
		}
		if c.Percentage > 0 {
			anyStarted = true
		}
	}
	switch {
	case allOnTrack:
		return models.ProgressOnTrack
	case anyStarted:
		return models.ProgressBehind
	}
	return models.ProgressNotStarted
}
