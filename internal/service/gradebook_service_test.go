package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kcislk/gradebook-api/internal/dto"
	"github.com/kcislk/gradebook-api/internal/models"
	appErrors "github.com/kcislk/gradebook-api/pkg/errors"
)

type mockScoreRepo struct {
	entries []models.ScoreEntry
	bulk    [][]models.ScoreEntry
	counts  map[string]int
}

func (m *mockScoreRepo) List(ctx context.Context, filter models.ScoreFilter) ([]models.ScoreEntry, error) {
	var out []models.ScoreEntry
	for _, e := range m.entries {
		if filter.StudentID != "" && e.StudentID != filter.StudentID {
			continue
		}
		if filter.CourseID != "" && e.CourseID != filter.CourseID {
			continue
		}
		if filter.PeriodID != "" && e.PeriodID != filter.PeriodID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *mockScoreRepo) Upsert(ctx context.Context, entry *models.ScoreEntry) error {
	entry.ID = "score-1"
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockScoreRepo) BulkUpsert(ctx context.Context, entries []models.ScoreEntry) error {
	m.bulk = append(m.bulk, entries)
	m.entries = append(m.entries, entries...)
	return nil
}

func (m *mockScoreRepo) FetchByStudents(ctx context.Context, studentIDs []string, courseID, periodID string) (map[string][]models.ScoreEntry, error) {
	result := make(map[string][]models.ScoreEntry)
	for _, e := range m.entries {
		if e.CourseID == courseID && e.PeriodID == periodID {
			result[e.StudentID] = append(result[e.StudentID], e)
		}
	}
	return result, nil
}

func (m *mockScoreRepo) CountEntered(ctx context.Context, courseID, periodID string) (int, error) {
	return m.counts[courseID], nil
}

type mockCourseRepo struct {
	courses  map[string]*models.Course
	students map[string][]string
}

func (m *mockCourseRepo) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if c, ok := m.courses[id]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCourseRepo) ListByGradeAndType(ctx context.Context, grade int, courseType models.CourseType) ([]models.Course, error) {
	var out []models.Course
	for _, c := range m.courses {
		if c.Grade == grade && c.CourseType == courseType {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockCourseRepo) ListStudents(ctx context.Context, courseID, periodID string) ([]string, error) {
	return m.students[courseID], nil
}

func (m *mockCourseRepo) CountStudents(ctx context.Context, courseID, periodID string) (int, error) {
	return len(m.students[courseID]), nil
}

type mockPeriodRepo struct {
	periods     map[string]*models.AcademicPeriod
	transitions []string
	unlocks     []models.PeriodUnlock
}

func (m *mockPeriodRepo) FindByID(ctx context.Context, id string) (*models.AcademicPeriod, error) {
	if p, ok := m.periods[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockPeriodRepo) List(ctx context.Context, academicYear string) ([]models.AcademicPeriod, error) {
	var out []models.AcademicPeriod
	for _, p := range m.periods {
		if p.AcademicYear == academicYear {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockPeriodRepo) UpdateState(ctx context.Context, id string, from, to models.PeriodState) error {
	p, ok := m.periods[id]
	if !ok || p.State != from {
		return sql.ErrNoRows
	}
	p.State = to
	m.transitions = append(m.transitions, string(from)+"->"+string(to))
	return nil
}

func (m *mockPeriodRepo) CreateUnlock(ctx context.Context, unlock *models.PeriodUnlock) error {
	unlock.ID = "unlock-1"
	m.unlocks = append(m.unlocks, *unlock)
	return nil
}

func (m *mockPeriodRepo) ListUnlocks(ctx context.Context, periodID string) ([]models.PeriodUnlock, error) {
	return m.unlocks, nil
}

func newGradebookFixture() (*GradebookService, *mockScoreRepo, *mockCourseRepo, *mockPeriodRepo) {
	scores := &mockScoreRepo{}
	courses := &mockCourseRepo{
		courses: map[string]*models.Course{
			"c-lt": {ID: "c-lt", Name: "English LT", CourseType: models.CourseTypeLT, Grade: 3, TeacherID: "t-1"},
			"c-k":  {ID: "c-k", Name: "KCFS", CourseType: models.CourseTypeKCFS, Grade: 2, TeacherID: "t-1"},
		},
		students: map[string][]string{"c-lt": {"stu-1", "stu-2"}, "c-k": {"stu-1"}},
	}
	periods := &mockPeriodRepo{periods: map[string]*models.AcademicPeriod{
		"p-active": {ID: "p-active", AcademicYear: "2025", Term: 1, State: models.PeriodActive},
		"p-locked": {ID: "p-locked", AcademicYear: "2025", Term: 2, State: models.PeriodLocked},
	}}
	svc := NewGradebookService(scores, courses, periods, nil, validator.New(), zap.NewNop())
	return svc, scores, courses, periods
}

func teacherScope() models.UserScope {
	return models.UserScope{UserID: "t-1", Role: models.RoleTeacher}
}

func TestGradebookUpsertScore(t *testing.T) {
	svc, scores, _, _ := newGradebookFixture()

	value := 88.0
	entry, err := svc.UpsertScore(context.Background(), teacherScope(), "c-lt", "p-active", dto.ScoreUpsertRequest{
		StudentID:      "stu-1",
		AssessmentCode: "FA1",
		Value:          &value,
	})
	require.NoError(t, err)
	assert.Equal(t, "t-1", entry.EnteredBy)
	require.Len(t, scores.entries, 1)
}

func TestGradebookUpsertScoreLockedPeriod(t *testing.T) {
	svc, _, _, _ := newGradebookFixture()

	value := 88.0
	_, err := svc.UpsertScore(context.Background(), teacherScope(), "c-lt", "p-locked", dto.ScoreUpsertRequest{
		StudentID:      "stu-1",
		AssessmentCode: "FA1",
		Value:          &value,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPeriodLocked.Code, appErrors.FromError(err).Code)
}

func TestGradebookUpsertScoreWrongTeacher(t *testing.T) {
	svc, _, _, _ := newGradebookFixture()

	value := 88.0
	_, err := svc.UpsertScore(context.Background(), models.UserScope{UserID: "t-2", Role: models.RoleTeacher}, "c-lt", "p-active", dto.ScoreUpsertRequest{
		StudentID:      "stu-1",
		AssessmentCode: "FA1",
		Value:          &value,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestGradebookUpsertScoreOfficeReadOnly(t *testing.T) {
	svc, _, _, _ := newGradebookFixture()

	value := 88.0
	_, err := svc.UpsertScore(context.Background(), models.UserScope{UserID: "o-1", Role: models.RoleOfficeMember}, "c-lt", "p-active", dto.ScoreUpsertRequest{
		StudentID:      "stu-1",
		AssessmentCode: "FA1",
		Value:          &value,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestGradebookUpsertScoreValueOutOfRange(t *testing.T) {
	svc, _, _, _ := newGradebookFixture()

	value := 105.0
	_, err := svc.UpsertScore(context.Background(), teacherScope(), "c-lt", "p-active", dto.ScoreUpsertRequest{
		StudentID:      "stu-1",
		AssessmentCode: "FA1",
		Value:          &value,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGradebookUpsertKCFSHalfPointStep(t *testing.T) {
	svc, _, _, _ := newGradebookFixture()

	good := 3.5
	_, err := svc.UpsertScore(context.Background(), teacherScope(), "c-k", "p-active", dto.ScoreUpsertRequest{
		StudentID:      "stu-1",
		AssessmentCode: "CURIOSITY",
		Value:          &good,
	})
	require.NoError(t, err)

	bad := 3.3
	_, err = svc.UpsertScore(context.Background(), teacherScope(), "c-k", "p-active", dto.ScoreUpsertRequest{
		StudentID:      "stu-1",
		AssessmentCode: "CURIOSITY",
		Value:          &bad,
	})
	require.Error(t, err)
}

func TestGradebookUpsertKCFSUnknownCategory(t *testing.T) {
	svc, _, _, _ := newGradebookFixture()

	// CITIZENSHIP only exists for grades 5-6; the course is grade 2.
	value := 4.0
	_, err := svc.UpsertScore(context.Background(), teacherScope(), "c-k", "p-active", dto.ScoreUpsertRequest{
		StudentID:      "stu-1",
		AssessmentCode: "CITIZENSHIP",
		Value:          &value,
	})
	require.Error(t, err)
}

func TestGradebookBulkUpsertRejectsWholeBatch(t *testing.T) {
	svc, scores, _, _ := newGradebookFixture()

	good, bad := 80.0, 120.0
	_, err := svc.BulkUpsertScores(context.Background(), teacherScope(), "c-lt", "p-active", dto.BulkScoreRequest{
		Entries: []dto.ScoreUpsertRequest{
			{StudentID: "stu-1", AssessmentCode: "FA1", Value: &good},
			{StudentID: "stu-2", AssessmentCode: "FA1", Value: &bad},
		},
	})
	require.Error(t, err)
	assert.Empty(t, scores.entries)
}

func TestGradebookBulkUpsert(t *testing.T) {
	svc, scores, _, _ := newGradebookFixture()

	v1, v2 := 80.0, 90.0
	count, err := svc.BulkUpsertScores(context.Background(), teacherScope(), "c-lt", "p-active", dto.BulkScoreRequest{
		Entries: []dto.ScoreUpsertRequest{
			{StudentID: "stu-1", AssessmentCode: "FA1", Value: &v1},
			{StudentID: "stu-2", AssessmentCode: "FA1", Value: &v2},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	require.Len(t, scores.bulk, 1)
}

func TestGradebookStudentGradebookComputesGrades(t *testing.T) {
	svc, scores, _, _ := newGradebookFixture()

	for code, v := range map[string]float64{"FA1": 80, "FA2": 90, "SA1": 85, "FINAL": 88} {
		value := v
		scores.entries = append(scores.entries, models.ScoreEntry{
			StudentID: "stu-1", CourseID: "c-lt", PeriodID: "p-active",
			AssessmentCode: code, Value: &value,
		})
	}

	book, err := svc.StudentGradebook(context.Background(), teacherScope(), "stu-1", "c-lt", "p-active")
	require.NoError(t, err)
	require.NotNil(t, book.Grades)
	require.NotNil(t, book.Grades.SemesterGrade)
	assert.Equal(t, 85.0, *book.Grades.FormativeAvg)
	assert.Equal(t, 2, book.Grades.UsedCounts.Formative)
	assert.Len(t, book.Entries, 4)
}

func TestGradebookStudentGradebookKCFS(t *testing.T) {
	svc, scores, _, _ := newGradebookFixture()

	for _, category := range []string{"CURIOSITY", "CREATIVITY", "COLLABORATION", "COMMUNICATION"} {
		value := 4.0
		scores.entries = append(scores.entries, models.ScoreEntry{
			StudentID: "stu-1", CourseID: "c-k", PeriodID: "p-active",
			AssessmentCode: category, Value: &value,
		})
	}

	book, err := svc.StudentGradebook(context.Background(), teacherScope(), "stu-1", "c-k", "p-active")
	require.NoError(t, err)
	require.NotNil(t, book.TermGrade)
	// 50 + 4*4.0*2.5 = 90
	assert.Equal(t, 90.0, *book.TermGrade)
	assert.Equal(t, 4, book.UsedCount)
}

func TestGradebookClassGradebook(t *testing.T) {
	svc, scores, _, _ := newGradebookFixture()

	v1 := 75.0
	scores.entries = append(scores.entries, models.ScoreEntry{
		StudentID: "stu-1", CourseID: "c-lt", PeriodID: "p-active",
		AssessmentCode: "FA1", Value: &v1,
	})
	scores.entries = append(scores.entries, models.ScoreEntry{
		StudentID: "stu-2", CourseID: "c-lt", PeriodID: "p-active",
		AssessmentCode: "FA1", IsAbsent: true,
	})

	book, err := svc.ClassGradebook(context.Background(), teacherScope(), "c-lt", "p-active")
	require.NoError(t, err)
	require.Len(t, book.Rows, 2)
	assert.Contains(t, book.Codes, "FA8")
	assert.Contains(t, book.Codes, "FINAL")
	assert.Equal(t, []string{"FA1"}, book.Rows[1].Absences)
	require.NotNil(t, book.Rows[0].Grades)
	assert.Nil(t, book.Rows[0].Grades.SemesterGrade)
}

func TestGradebookHeadScope(t *testing.T) {
	svc, _, _, _ := newGradebookFixture()

	inBand := models.UserScope{UserID: "h-1", Role: models.RoleHead, GradeBand: "3-4", Track: models.CourseTypeLT}
	_, err := svc.ClassGradebook(context.Background(), inBand, "c-lt", "p-active")
	require.NoError(t, err)

	outOfBand := models.UserScope{UserID: "h-2", Role: models.RoleHead, GradeBand: "5-6", Track: models.CourseTypeLT}
	_, err = svc.ClassGradebook(context.Background(), outOfBand, "c-lt", "p-active")
	require.Error(t, err)

	wrongTrack := models.UserScope{UserID: "h-3", Role: models.RoleHead, GradeBand: "3-4", Track: models.CourseTypeIT}
	_, err = svc.ClassGradebook(context.Background(), wrongTrack, "c-lt", "p-active")
	require.Error(t, err)
}
