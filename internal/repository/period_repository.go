package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kcislk/gradebook-api/internal/models"
)

// PeriodRepository persists academic periods and their unlock audit trail.
type PeriodRepository struct {
	db *sqlx.DB
}

// NewPeriodRepository constructs the repository.
func NewPeriodRepository(db *sqlx.DB) *PeriodRepository {
	return &PeriodRepository{db: db}
}

// FindByID returns one academic period.
func (r *PeriodRepository) FindByID(ctx context.Context, id string) (*models.AcademicPeriod, error) {
	const query = `SELECT id, academic_year, term, state, created_at, updated_at
        FROM academic_periods WHERE id = $1`
	var period models.AcademicPeriod
	if err := r.db.GetContext(ctx, &period, query, id); err != nil {
		return nil, err
	}
	return &period, nil
}

// List returns all periods for an academic year ordered by term.
func (r *PeriodRepository) List(ctx context.Context, academicYear string) ([]models.AcademicPeriod, error) {
	const query = `SELECT id, academic_year, term, state, created_at, updated_at
        FROM academic_periods WHERE academic_year = $1 ORDER BY term`
	var periods []models.AcademicPeriod
	if err := r.db.SelectContext(ctx, &periods, query, academicYear); err != nil {
		return nil, fmt.Errorf("list periods: %w", err)
	}
	return periods, nil
}

// UpdateState moves a period to the given state. The previous state is
// part of the predicate so concurrent transitions cannot skip steps.
func (r *PeriodRepository) UpdateState(ctx context.Context, id string, from, to models.PeriodState) error {
	const query = `UPDATE academic_periods SET state = $1, updated_at = $2 WHERE id = $3 AND state = $4`
	result, err := r.db.ExecContext(ctx, query, to, time.Now().UTC(), id, from)
	if err != nil {
		return fmt.Errorf("update period state: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update period state: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("period %s: state changed concurrently", id)
	}
	return nil
}

// CreateUnlock records an audited unlock of a locked period.
func (r *PeriodRepository) CreateUnlock(ctx context.Context, unlock *models.PeriodUnlock) error {
	if unlock.ID == "" {
		unlock.ID = uuid.NewString()
	}
	if unlock.CreatedAt.IsZero() {
		unlock.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO period_unlocks (id, period_id, unlocked_by, reason, created_at)
        VALUES (:id, :period_id, :unlocked_by, :reason, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, unlock); err != nil {
		return fmt.Errorf("create period unlock: %w", err)
	}
	return nil
}

// ListUnlocks returns the unlock audit trail for a period.
func (r *PeriodRepository) ListUnlocks(ctx context.Context, periodID string) ([]models.PeriodUnlock, error) {
	const query = `SELECT id, period_id, unlocked_by, reason, created_at
        FROM period_unlocks WHERE period_id = $1 ORDER BY created_at DESC`
	var unlocks []models.PeriodUnlock
	if err := r.db.SelectContext(ctx, &unlocks, query, periodID); err != nil {
		return nil, fmt.Errorf("list period unlocks: %w", err)
	}
	return unlocks, nil
}
