package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcislk/gradebook-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func scoreColumns() []string {
	return []string{"id", "student_id", "course_id", "period_id", "assessment_code", "value", "is_absent", "entered_by", "created_at", "updated_at"}
}

func TestScoreRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewScoreRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows(scoreColumns()).
		AddRow("s-1", "stu-1", "c-1", "p-1", "FA1", 85.0, false, "t-1", now, now).
		AddRow("s-2", "stu-1", "c-1", "p-1", "SA1", 90.0, false, "t-1", now, now)
	mock.ExpectQuery("SELECT id, student_id").
		WithArgs("stu-1", "c-1").
		WillReturnRows(rows)

	entries, err := repo.List(context.Background(), models.ScoreFilter{StudentID: "stu-1", CourseID: "c-1"})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "FA1", entries[0].AssessmentCode)
	require.NotNil(t, entries[0].Value)
	assert.Equal(t, 85.0, *entries[0].Value)
}

func TestScoreRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewScoreRepository(db)
	mock.ExpectExec("INSERT INTO score_entries").
		WillReturnResult(sqlmock.NewResult(1, 1))

	value := 88.0
	entry := &models.ScoreEntry{
		StudentID:      "stu-1",
		CourseID:       "c-1",
		PeriodID:       "p-1",
		AssessmentCode: "FA2",
		Value:          &value,
		EnteredBy:      "t-1",
	}
	require.NoError(t, repo.Upsert(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.UpdatedAt.IsZero())
}

func TestScoreRepositoryBulkUpsertTransaction(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewScoreRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO score_entries").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO score_entries").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	v1, v2 := 70.0, 75.0
	entries := []models.ScoreEntry{
		{StudentID: "stu-1", CourseID: "c-1", PeriodID: "p-1", AssessmentCode: "FA1", Value: &v1, EnteredBy: "t-1"},
		{StudentID: "stu-2", CourseID: "c-1", PeriodID: "p-1", AssessmentCode: "FA1", Value: &v2, EnteredBy: "t-1"},
	}
	require.NoError(t, repo.BulkUpsert(context.Background(), entries))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScoreRepositoryBulkUpsertEmpty(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewScoreRepository(db)
	require.NoError(t, repo.BulkUpsert(context.Background(), nil))
}

func TestScoreRepositoryFetchByStudents(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewScoreRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows(scoreColumns()).
		AddRow("s-1", "stu-1", "c-1", "p-1", "FA1", 85.0, false, "t-1", now, now).
		AddRow("s-2", "stu-2", "c-1", "p-1", "FA1", nil, true, "t-1", now, now)
	mock.ExpectQuery("SELECT id, student_id").
		WithArgs("stu-1", "stu-2", "c-1", "p-1").
		WillReturnRows(rows)

	result, err := repo.FetchByStudents(context.Background(), []string{"stu-1", "stu-2"}, "c-1", "p-1")
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Nil(t, result["stu-2"][0].Value)
	assert.True(t, result["stu-2"][0].IsAbsent)
}

func TestScoreRepositoryFetchByStudentsEmpty(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewScoreRepository(db)
	result, err := repo.FetchByStudents(context.Background(), nil, "c-1", "p-1")
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestScoreRepositoryCountEntered(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewScoreRepository(db)
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("c-1", "p-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	count, err := repo.CountEntered(context.Background(), "c-1", "p-1")
	require.NoError(t, err)
	assert.Equal(t, 42, count)
}
