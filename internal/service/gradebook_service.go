package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kcislk/gradebook-api/internal/access"
	"github.com/kcislk/gradebook-api/internal/dto"
	"github.com/kcislk/gradebook-api/internal/grading"
	"github.com/kcislk/gradebook-api/internal/models"
	appErrors "github.com/kcislk/gradebook-api/pkg/errors"
)

type gradebookScoreRepository interface {
	List(ctx context.Context, filter models.ScoreFilter) ([]models.ScoreEntry, error)
	Upsert(ctx context.Context, entry *models.ScoreEntry) error
	BulkUpsert(ctx context.Context, entries []models.ScoreEntry) error
	FetchByStudents(ctx context.Context, studentIDs []string, courseID, periodID string) (map[string][]models.ScoreEntry, error)
}

type gradebookCourseRepository interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	ListStudents(ctx context.Context, courseID, periodID string) ([]string, error)
}

type gradebookPeriodRepository interface {
	FindByID(ctx context.Context, id string) (*models.AcademicPeriod, error)
}

// GradebookService handles score entry and the derived grade views.
// Grades are always recomputed from the raw entries; nothing derived is
// ever written back.
type GradebookService struct {
	scores    gradebookScoreRepository
	courses   gradebookCourseRepository
	periods   gradebookPeriodRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradebookService constructs the service.
func NewGradebookService(scores gradebookScoreRepository, courses gradebookCourseRepository, periods gradebookPeriodRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *GradebookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &GradebookService{scores: scores, courses: courses, periods: periods, cache: cache, validator: validate, logger: logger}
}

// UpsertScore records or updates one score entry. The period must
// accept writes, the scope must be allowed to mutate the course and the
// value must be in range for the course's track.
func (s *GradebookService) UpsertScore(ctx context.Context, scope models.UserScope, courseID, periodID string, req dto.ScoreUpsertRequest) (*models.ScoreEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid score payload")
	}

	course, err := s.authorizeWrite(ctx, scope, courseID, periodID)
	if err != nil {
		return nil, err
	}

	if err := validateScoreValue(course.CourseType, req.AssessmentCode, req.Value, course.Grade); err != nil {
		return nil, err
	}

	entry := &models.ScoreEntry{
		StudentID:      req.StudentID,
		CourseID:       courseID,
		PeriodID:       periodID,
		AssessmentCode: req.AssessmentCode,
		Value:          req.Value,
		IsAbsent:       req.IsAbsent,
		EnteredBy:      scope.UserID,
	}
	if err := s.scores.Upsert(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save score")
	}

	s.invalidateCourseCaches(ctx, courseID, periodID)
	return entry, nil
}

// BulkUpsertScores records a batch of entries in one transaction. The
// whole batch is validated before anything is written, so a single bad
// row rejects the batch.
func (s *GradebookService) BulkUpsertScores(ctx context.Context, scope models.UserScope, courseID, periodID string, req dto.BulkScoreRequest) (int, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk score payload")
	}

	course, err := s.authorizeWrite(ctx, scope, courseID, periodID)
	if err != nil {
		return 0, err
	}

	entries := make([]models.ScoreEntry, 0, len(req.Entries))
	for i, item := range req.Entries {
		if err := validateScoreValue(course.CourseType, item.AssessmentCode, item.Value, course.Grade); err != nil {
			return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("entry %d: %s", i, appErrors.FromError(err).Message))
		}
		entries = append(entries, models.ScoreEntry{
			StudentID:      item.StudentID,
			CourseID:       courseID,
			PeriodID:       periodID,
			AssessmentCode: item.AssessmentCode,
			Value:          item.Value,
			IsAbsent:       item.IsAbsent,
			EnteredBy:      scope.UserID,
		})
	}

	if err := s.scores.BulkUpsert(ctx, entries); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save scores")
	}

	s.invalidateCourseCaches(ctx, courseID, periodID)
	return len(entries), nil
}

// StudentGradebook returns a student's raw entries plus the recomputed
// grade snapshot for one course and period.
func (s *GradebookService) StudentGradebook(ctx context.Context, scope models.UserScope, studentID, courseID, periodID string) (*dto.StudentGradebook, error) {
	course, err := s.authorizeRead(ctx, scope, courseID)
	if err != nil {
		return nil, err
	}

	entries, err := s.scores.List(ctx, models.ScoreFilter{StudentID: studentID, CourseID: courseID, PeriodID: periodID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scores")
	}

	result := &dto.StudentGradebook{
		StudentID:  studentID,
		CourseID:   courseID,
		PeriodID:   periodID,
		CourseType: course.CourseType,
		Entries:    entries,
	}

	scores := entriesToEngine(entries)
	if course.CourseType == models.CourseTypeKCFS {
		termGrade, used := grading.CalculateTermGrade(course.Grade, scores)
		result.TermGrade = termGrade
		result.UsedCount = used
	} else {
		grades := grading.CalculateGrades(scores)
		result.Grades = &grades
	}
	return result, nil
}

// ClassGradebook returns the roster-wide gradebook for one course and
// period, one row per enrolled student.
func (s *GradebookService) ClassGradebook(ctx context.Context, scope models.UserScope, courseID, periodID string) (*dto.ClassGradebook, error) {
	course, err := s.authorizeRead(ctx, scope, courseID)
	if err != nil {
		return nil, err
	}

	students, err := s.courses.ListStudents(ctx, courseID, periodID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}

	byStudent, err := s.scores.FetchByStudents(ctx, students, courseID, periodID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scores")
	}

	book := &dto.ClassGradebook{
		CourseID:   courseID,
		PeriodID:   periodID,
		CourseType: course.CourseType,
		Grade:      course.Grade,
		Codes:      assessmentCodes(course.CourseType, course.Grade),
		Rows:       make([]dto.ClassGradebookRow, 0, len(students)),
	}

	for _, studentID := range students {
		entries := byStudent[studentID]
		row := dto.ClassGradebookRow{
			StudentID: studentID,
			Scores:    make(map[string]*float64, len(entries)),
		}
		for _, entry := range entries {
			row.Scores[entry.AssessmentCode] = entry.Value
			if entry.IsAbsent {
				row.Absences = append(row.Absences, entry.AssessmentCode)
			}
		}
		scores := entriesToEngine(entries)
		if course.CourseType == models.CourseTypeKCFS {
			row.TermGrade, _ = grading.CalculateTermGrade(course.Grade, scores)
		} else {
			grades := grading.CalculateGrades(scores)
			row.Grades = &grades
		}
		book.Rows = append(book.Rows, row)
	}
	return book, nil
}

func (s *GradebookService) authorizeWrite(ctx context.Context, scope models.UserScope, courseID, periodID string) (*models.Course, error) {
	course, err := s.authorizeCourse(ctx, scope, courseID, true)
	if err != nil {
		return nil, err
	}

	period, err := s.periods.FindByID(ctx, periodID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "period not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load period")
	}
	if !period.State.AcceptsWrites() {
		return nil, appErrors.Clone(appErrors.ErrPeriodLocked, fmt.Sprintf("period is %s and does not accept writes", period.State))
	}
	return course, nil
}

func (s *GradebookService) authorizeRead(ctx context.Context, scope models.UserScope, courseID string) (*models.Course, error) {
	return s.authorizeCourse(ctx, scope, courseID, false)
}

// authorizeCourse loads the course and checks the scope against it.
// Teachers get ownership checks; heads get band and track checks; admin
// and office members pass through, with office writes denied.
func (s *GradebookService) authorizeCourse(ctx context.Context, scope models.UserScope, courseID string, write bool) (*models.Course, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	policy := access.PolicyFor(scope)
	if write {
		if decision := policy.CanWrite(); !decision.Allowed {
			return nil, appErrors.Clone(appErrors.ErrForbidden, decision.Reason)
		}
	}

	switch scope.Role {
	case models.RoleAdmin, models.RoleOfficeMember:
		return course, nil
	case models.RoleTeacher:
		if course.TeacherID != scope.UserID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "course is not assigned to this teacher")
		}
		return course, nil
	case models.RoleHead:
		if decision := policy.CanAccessGrade(course.Grade); !decision.Allowed {
			return nil, appErrors.Clone(appErrors.ErrForbidden, decision.Reason)
		}
		if decision := policy.CanAccessCourseType(course.CourseType); !decision.Allowed {
			return nil, appErrors.Clone(appErrors.ErrForbidden, decision.Reason)
		}
		return course, nil
	}
	return nil, appErrors.Clone(appErrors.ErrForbidden, fmt.Sprintf("unknown role %q", scope.Role))
}

func (s *GradebookService) invalidateCourseCaches(ctx context.Context, courseID, periodID string) {
	if !s.cache.Enabled() {
		return
	}
	pattern := fmt.Sprintf("stats:%s:%s:*", courseID, periodID)
	if err := s.cache.Invalidate(ctx, pattern); err != nil {
		s.logger.Warn("failed to invalidate statistics cache", zap.String("course_id", courseID), zap.Error(err))
	}
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("progress:%s:*", periodID)); err != nil {
		s.logger.Warn("failed to invalidate progress cache", zap.String("period_id", periodID), zap.Error(err))
	}
}

// validateScoreValue checks track-specific value ranges: LT/IT scores
// are 0-100, KCFS category scores are 0-5 in half-point steps against
// the category set for the course's grade band.
func validateScoreValue(courseType models.CourseType, code string, value *float64, grade int) error {
	switch courseType {
	case models.CourseTypeLT, models.CourseTypeIT:
		if !validAssessmentCode(code) {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown assessment code %q", code))
		}
		if value != nil && (*value < 0 || *value > 100) {
			return appErrors.Clone(appErrors.ErrValidation, "score must be between 0 and 100")
		}
	case models.CourseTypeKCFS:
		if !validKCFSCategory(code, grade) {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown category %q for grade %d", code, grade))
		}
		if value != nil {
			if *value < 0 || *value > 5 {
				return appErrors.Clone(appErrors.ErrValidation, "category score must be between 0 and 5")
			}
			if math.Mod(*value*2, 1) != 0 {
				return appErrors.Clone(appErrors.ErrValidation, "category score must be in half-point steps")
			}
		}
	default:
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown course type %q", courseType))
	}
	return nil
}

func validAssessmentCode(code string) bool {
	if code == grading.CodeFinal || code == grading.CodeMid {
		return true
	}
	for _, c := range grading.FormativeCodes() {
		if c == code {
			return true
		}
	}
	for _, c := range grading.SummativeCodes() {
		if c == code {
			return true
		}
	}
	return false
}

func validKCFSCategory(code string, grade int) bool {
	for _, c := range grading.KCFSBandForGrade(grade).Categories {
		if c == code {
			return true
		}
	}
	return false
}

// assessmentCodes returns the column set for a class gradebook view.
func assessmentCodes(courseType models.CourseType, grade int) []string {
	if courseType == models.CourseTypeKCFS {
		return grading.KCFSBandForGrade(grade).Categories
	}
	codes := append(grading.FormativeCodes(), grading.SummativeCodes()...)
	return append(codes, grading.CodeMid, grading.CodeFinal)
}

// entriesToEngine converts stored entries into the engine's score map.
func entriesToEngine(entries []models.ScoreEntry) map[string]grading.Entry {
	scores := make(map[string]grading.Entry, len(entries))
	for _, entry := range entries {
		scores[entry.AssessmentCode] = grading.Entry{Value: entry.Value, Absent: entry.IsAbsent}
	}
	return scores
}
