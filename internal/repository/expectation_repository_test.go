package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcislk/gradebook-api/internal/models"
)

func expectationColumns() []string {
	return []string{"id", "academic_year", "term", "course_type", "grade", "level", "expected_formative", "expected_summative", "expected_mid_or_final", "updated_by", "created_at", "updated_at"}
}

func TestExpectationRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewExpectationRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows(expectationColumns()).
		AddRow("e-1", "2025", 1, "LT", 3, "E2", 6, 3, 1, "head-1", now, now)
	mock.ExpectQuery("SELECT id, academic_year").
		WithArgs("e-1").
		WillReturnRows(rows)

	setting, err := repo.FindByID(context.Background(), "e-1")
	require.NoError(t, err)
	assert.Equal(t, models.CourseTypeLT, setting.CourseType)
	require.NotNil(t, setting.Grade)
	assert.Equal(t, 3, *setting.Grade)
}

func TestExpectationRepositoryFindByScopeLT(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewExpectationRepository(db)
	now := time.Now()
	grade := 3
	level := "E2"
	rows := sqlmock.NewRows(expectationColumns()).
		AddRow("e-1", "2025", 1, "LT", grade, level, 6, 3, 1, "head-1", now, now)
	mock.ExpectQuery("SELECT id, academic_year").
		WithArgs("2025", 1, "LT", grade, level).
		WillReturnRows(rows)

	setting, err := repo.FindByScope(context.Background(), models.ExpectationFilter{
		AcademicYear: "2025",
		Term:         1,
		CourseType:   models.CourseTypeLT,
		Grade:        &grade,
		Level:        &level,
	})
	require.NoError(t, err)
	assert.Equal(t, 10, setting.TotalExpected())
}

func TestExpectationRepositoryFindByScopeKCFSNullKey(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewExpectationRepository(db)
	mock.ExpectQuery("SELECT id, academic_year").
		WithArgs("2025", 2, "KCFS").
		WillReturnRows(sqlmock.NewRows(expectationColumns()))

	_, err := repo.FindByScope(context.Background(), models.ExpectationFilter{
		AcademicYear: "2025",
		Term:         2,
		CourseType:   models.CourseTypeKCFS,
	})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestExpectationRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewExpectationRepository(db)
	mock.ExpectExec("INSERT INTO expectation_settings").
		WillReturnResult(sqlmock.NewResult(1, 1))

	grade := 4
	level := "E3"
	setting := &models.ExpectationSetting{
		AcademicYear:       "2025",
		Term:               1,
		CourseType:         models.CourseTypeIT,
		Grade:              &grade,
		Level:              &level,
		ExpectedFormative:  8,
		ExpectedSummative:  4,
		ExpectedMidOrFinal: 1,
		UpdatedBy:          "head-2",
	}
	require.NoError(t, repo.Upsert(context.Background(), setting))
	assert.NotEmpty(t, setting.ID)
}

func TestExpectationRepositoryDeleteNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewExpectationRepository(db)
	mock.ExpectExec("DELETE FROM expectation_settings").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	assert.Error(t, err)
}

func TestExpectationRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewExpectationRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows(expectationColumns()).
		AddRow("e-1", "2025", 1, "LT", 3, "E2", 8, 4, 1, "head-1", now, now).
		AddRow("e-2", "2025", 1, "KCFS", nil, nil, 5, 0, 0, "admin-1", now, now)
	mock.ExpectQuery("SELECT id, academic_year").
		WithArgs("2025", 1).
		WillReturnRows(rows)

	settings, err := repo.List(context.Background(), "2025", 1)
	require.NoError(t, err)
	require.Len(t, settings, 2)
	assert.Nil(t, settings[1].Grade)
}
