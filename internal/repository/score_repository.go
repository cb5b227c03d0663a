package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kcislk/gradebook-api/internal/models"
)

// ScoreRepository handles raw score entry persistence.
type ScoreRepository struct {
	db *sqlx.DB
}

// NewScoreRepository creates a new score repository.
func NewScoreRepository(db *sqlx.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// List returns score entries matching the filter.
func (r *ScoreRepository) List(ctx context.Context, filter models.ScoreFilter) ([]models.ScoreEntry, error) {
	query := `SELECT id, student_id, course_id, period_id, assessment_code, value, is_absent, entered_by, created_at, updated_at
        FROM score_entries
        WHERE deleted_at IS NULL`
	var args []interface{}
	if filter.StudentID != "" {
		query += fmt.Sprintf(" AND student_id = $%d", len(args)+1)
		args = append(args, filter.StudentID)
	}
	if filter.CourseID != "" {
		query += fmt.Sprintf(" AND course_id = $%d", len(args)+1)
		args = append(args, filter.CourseID)
	}
	if filter.PeriodID != "" {
		query += fmt.Sprintf(" AND period_id = $%d", len(args)+1)
		args = append(args, filter.PeriodID)
	}
	if filter.AssessmentCode != "" {
		query += fmt.Sprintf(" AND assessment_code = $%d", len(args)+1)
		args = append(args, filter.AssessmentCode)
	}
	query += " ORDER BY student_id, assessment_code"
	var entries []models.ScoreEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	return entries, nil
}

// Upsert inserts or updates a score entry keyed by student, course,
// period and assessment code.
func (r *ScoreRepository) Upsert(ctx context.Context, entry *models.ScoreEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now
	const query = `INSERT INTO score_entries (id, student_id, course_id, period_id, assessment_code, value, is_absent, entered_by, created_at, updated_at)
        VALUES (:id, :student_id, :course_id, :period_id, :assessment_code, :value, :is_absent, :entered_by, :created_at, :updated_at)
        ON CONFLICT (student_id, course_id, period_id, assessment_code)
        DO UPDATE SET value = EXCLUDED.value, is_absent = EXCLUDED.is_absent, entered_by = EXCLUDED.entered_by, updated_at = EXCLUDED.updated_at, deleted_at = NULL`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("upsert score: %w", err)
	}
	return nil
}

// BulkUpsert inserts or updates multiple score entries in a transaction.
func (r *ScoreRepository) BulkUpsert(ctx context.Context, entries []models.ScoreEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	const query = `INSERT INTO score_entries (id, student_id, course_id, period_id, assessment_code, value, is_absent, entered_by, created_at, updated_at)
        VALUES (:id, :student_id, :course_id, :period_id, :assessment_code, :value, :is_absent, :entered_by, :created_at, :updated_at)
        ON CONFLICT (student_id, course_id, period_id, assessment_code)
        DO UPDATE SET value = EXCLUDED.value, is_absent = EXCLUDED.is_absent, entered_by = EXCLUDED.entered_by, updated_at = EXCLUDED.updated_at, deleted_at = NULL`
	for i := range entries {
		if entries[i].ID == "" {
			entries[i].ID = uuid.NewString()
		}
		now := time.Now().UTC()
		if entries[i].CreatedAt.IsZero() {
			entries[i].CreatedAt = now
		}
		entries[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, entries[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("bulk upsert score: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit scores: %w", err)
	}
	return nil
}

// FetchByStudents returns score entries keyed by student ID for one
// course and period.
func (r *ScoreRepository) FetchByStudents(ctx context.Context, studentIDs []string, courseID, periodID string) (map[string][]models.ScoreEntry, error) {
	if len(studentIDs) == 0 {
		return map[string][]models.ScoreEntry{}, nil
	}
	placeholders := make([]string, len(studentIDs))
	args := make([]interface{}, len(studentIDs)+2)
	for i, id := range studentIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	args[len(args)-2] = courseID
	args[len(args)-1] = periodID
	query := fmt.Sprintf(`SELECT id, student_id, course_id, period_id, assessment_code, value, is_absent, entered_by, created_at, updated_at
        FROM score_entries
        WHERE deleted_at IS NULL AND student_id IN (%s) AND course_id = $%d AND period_id = $%d`,
		strings.Join(placeholders, ","), len(args)-1, len(args))
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch scores: %w", err)
	}
	defer rows.Close()
	result := make(map[string][]models.ScoreEntry, len(studentIDs))
	for rows.Next() {
		var entry models.ScoreEntry
		if err := rows.StructScan(&entry); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		result[entry.StudentID] = append(result[entry.StudentID], entry)
	}
	return result, nil
}

// CountEntered counts non-deleted entries that carry either a value or
// an absence mark for one course and period.
func (r *ScoreRepository) CountEntered(ctx context.Context, courseID, periodID string) (int, error) {
	const query = `SELECT COUNT(*) FROM score_entries
        WHERE deleted_at IS NULL AND course_id = $1 AND period_id = $2 AND (value IS NOT NULL OR is_absent)`
	var count int
	if err := r.db.GetContext(ctx, &count, query, courseID, periodID); err != nil {
		return 0, fmt.Errorf("count scores: %w", err)
	}
	return count, nil
}
