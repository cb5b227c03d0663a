package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kcislk/gradebook-api/internal/middleware"
	"github.com/kcislk/gradebook-api/internal/models"
	"github.com/kcislk/gradebook-api/internal/service"
)

type fakeScoreRepo struct {
	entries []models.ScoreEntry
}

func (f *fakeScoreRepo) List(ctx context.Context, filter models.ScoreFilter) ([]models.ScoreEntry, error) {
	return f.entries, nil
}

func (f *fakeScoreRepo) Upsert(ctx context.Context, entry *models.ScoreEntry) error {
	entry.ID = "score-1"
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeScoreRepo) BulkUpsert(ctx context.Context, entries []models.ScoreEntry) error {
	f.entries = append(f.entries, entries...)
	return nil
}

func (f *fakeScoreRepo) FetchByStudents(ctx context.Context, studentIDs []string, courseID, periodID string) (map[string][]models.ScoreEntry, error) {
	result := make(map[string][]models.ScoreEntry)
	for _, e := range f.entries {
		result[e.StudentID] = append(result[e.StudentID], e)
	}
	return result, nil
}

type fakeCourseRepo struct {
	course *models.Course
}

func (f *fakeCourseRepo) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if f.course != nil && f.course.ID == id {
		return f.course, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeCourseRepo) ListStudents(ctx context.Context, courseID, periodID string) ([]string, error) {
	return []string{"stu-1"}, nil
}

func newGradebookHandler() (*GradebookHandler, *fakeScoreRepo) {
	scores := &fakeScoreRepo{}
	courses := &fakeCourseRepo{course: &models.Course{
		ID: "c-1", Name: "English LT", CourseType: models.CourseTypeLT, Grade: 3, TeacherID: "t-1",
	}}
	periods := &fakePeriodRepo{periods: map[string]*models.AcademicPeriod{
		"p-1": {ID: "p-1", AcademicYear: "2025", Term: 1, State: models.PeriodActive},
	}}
	svc := service.NewGradebookService(scores, courses, periods, nil, validator.New(), zap.NewNop())
	return NewGradebookHandler(svc), scores
}

func gradebookRequest(t *testing.T, handlerFn gin.HandlerFunc, body string, claims *models.JWTClaims) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPut, "/courses/c-1/periods/p-1/scores", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "courseId", Value: "c-1"}, {Key: "periodId", Value: "p-1"}}
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	handlerFn(c)
	return rec
}

func TestGradebookHandlerUpsertScore(t *testing.T) {
	handler, scores := newGradebookHandler()

	rec := gradebookRequest(t, handler.UpsertScore,
		`{"student_id":"stu-1","assessment_code":"FA1","value":88}`,
		&models.JWTClaims{UserID: "t-1", Role: models.RoleTeacher})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, scores.entries, 1)

	var envelope struct {
		Data models.ScoreEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "FA1", envelope.Data.AssessmentCode)
	assert.Equal(t, "t-1", envelope.Data.EnteredBy)
}

func TestGradebookHandlerUpsertScoreUnauthenticated(t *testing.T) {
	handler, _ := newGradebookHandler()

	rec := gradebookRequest(t, handler.UpsertScore,
		`{"student_id":"stu-1","assessment_code":"FA1","value":88}`, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGradebookHandlerUpsertScoreBadJSON(t *testing.T) {
	handler, _ := newGradebookHandler()

	rec := gradebookRequest(t, handler.UpsertScore, `{`,
		&models.JWTClaims{UserID: "t-1", Role: models.RoleTeacher})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGradebookHandlerUpsertScoreOutOfRange(t *testing.T) {
	handler, _ := newGradebookHandler()

	rec := gradebookRequest(t, handler.UpsertScore,
		`{"student_id":"stu-1","assessment_code":"FA1","value":150}`,
		&models.JWTClaims{UserID: "t-1", Role: models.RoleTeacher})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGradebookHandlerClassGradebook(t *testing.T) {
	handler, scores := newGradebookHandler()
	value := 85.0
	scores.entries = append(scores.entries, models.ScoreEntry{
		StudentID: "stu-1", CourseID: "c-1", PeriodID: "p-1",
		AssessmentCode: "FA1", Value: &value,
	})

	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/courses/c-1/periods/p-1/gradebook", nil)
	c.Params = gin.Params{{Key: "courseId", Value: "c-1"}, {Key: "periodId", Value: "p-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "t-1", Role: models.RoleTeacher})

	handler.ClassGradebook(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"FA1"`)
}
