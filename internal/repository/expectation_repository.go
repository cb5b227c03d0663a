package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kcislk/gradebook-api/internal/models"
)

// ExpectationRepository persists expected-assessment-count settings.
type ExpectationRepository struct {
	db *sqlx.DB
}

// NewExpectationRepository constructs the repository.
func NewExpectationRepository(db *sqlx.DB) *ExpectationRepository {
	return &ExpectationRepository{db: db}
}

// FindByID returns a single setting row.
func (r *ExpectationRepository) FindByID(ctx context.Context, id string) (*models.ExpectationSetting, error) {
	const query = `SELECT id, academic_year, term, course_type, grade, level, expected_formative, expected_summative, expected_mid_or_final, updated_by, created_at, updated_at
        FROM expectation_settings
        WHERE id = $1`
	var setting models.ExpectationSetting
	if err := r.db.GetContext(ctx, &setting, query, id); err != nil {
		return nil, err
	}
	return &setting, nil
}

// FindByScope returns the setting matching the filter key. LT/IT rows
// match on grade and level; KCFS rows are unified so grade and level
// are NULL.
func (r *ExpectationRepository) FindByScope(ctx context.Context, filter models.ExpectationFilter) (*models.ExpectationSetting, error) {
	query := `SELECT id, academic_year, term, course_type, grade, level, expected_formative, expected_summative, expected_mid_or_final, updated_by, created_at, updated_at
        FROM expectation_settings
        WHERE academic_year = $1 AND term = $2 AND course_type = $3`
	args := []interface{}{filter.AcademicYear, filter.Term, filter.CourseType}
	if filter.Grade != nil {
		query += fmt.Sprintf(" AND grade = $%d", len(args)+1)
		args = append(args, *filter.Grade)
	} else {
		query += " AND grade IS NULL"
	}
	if filter.Level != nil {
		query += fmt.Sprintf(" AND level = $%d", len(args)+1)
		args = append(args, *filter.Level)
	} else {
		query += " AND level IS NULL"
	}
	var setting models.ExpectationSetting
	if err := r.db.GetContext(ctx, &setting, query, args...); err != nil {
		return nil, err
	}
	return &setting, nil
}

// List returns all settings for an academic year and term.
func (r *ExpectationRepository) List(ctx context.Context, academicYear string, term int) ([]models.ExpectationSetting, error) {
	const query = `SELECT id, academic_year, term, course_type, grade, level, expected_formative, expected_summative, expected_mid_or_final, updated_by, created_at, updated_at
        FROM expectation_settings
        WHERE academic_year = $1 AND term = $2
        ORDER BY course_type, grade, level`
	var settings []models.ExpectationSetting
	if err := r.db.SelectContext(ctx, &settings, query, academicYear, term); err != nil {
		return nil, fmt.Errorf("list expectations: %w", err)
	}
	return settings, nil
}

// Upsert inserts or updates a setting keyed by its scope.
func (r *ExpectationRepository) Upsert(ctx context.Context, setting *models.ExpectationSetting) error {
	if setting.ID == "" {
		setting.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if setting.CreatedAt.IsZero() {
		setting.CreatedAt = now
	}
	setting.UpdatedAt = now
	const query = `INSERT INTO expectation_settings (id, academic_year, term, course_type, grade, level, expected_formative, expected_summative, expected_mid_or_final, updated_by, created_at, updated_at)
        VALUES (:id, :academic_year, :term, :course_type, :grade, :level, :expected_formative, :expected_summative, :expected_mid_or_final, :updated_by, :created_at, :updated_at)
        ON CONFLICT (academic_year, term, course_type, grade, level)
        DO UPDATE SET expected_formative = EXCLUDED.expected_formative,
                      expected_summative = EXCLUDED.expected_summative,
                      expected_mid_or_final = EXCLUDED.expected_mid_or_final,
                      updated_by = EXCLUDED.updated_by,
                      updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, setting); err != nil {
		return fmt.Errorf("upsert expectation: %w", err)
	}
	return nil
}

// Delete removes a setting, resetting the scope to defaults.
func (r *ExpectationRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM expectation_settings WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete expectation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expectation: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("expectation %s: not found", id)
	}
	return nil
}
