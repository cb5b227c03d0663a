package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kcislk/gradebook-api/internal/dto"
	"github.com/kcislk/gradebook-api/internal/models"
	appErrors "github.com/kcislk/gradebook-api/pkg/errors"
)

type periodRepository interface {
	FindByID(ctx context.Context, id string) (*models.AcademicPeriod, error)
	List(ctx context.Context, academicYear string) ([]models.AcademicPeriod, error)
	UpdateState(ctx context.Context, id string, from, to models.PeriodState) error
	CreateUnlock(ctx context.Context, unlock *models.PeriodUnlock) error
	ListUnlocks(ctx context.Context, periodID string) ([]models.PeriodUnlock, error)
}

type periodAuditRepository interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// PeriodService drives the academic period lifecycle. Regular
// transitions move strictly forward one state at a time; the only way
// back is the audited unlock from locked to active.
type PeriodService struct {
	periods   periodRepository
	audits    periodAuditRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPeriodService constructs the service.
func NewPeriodService(periods periodRepository, audits periodAuditRepository, validate *validator.Validate, logger *zap.Logger) *PeriodService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &PeriodService{periods: periods, audits: audits, validator: validate, logger: logger}
}

// Get returns a period with its unlock history.
func (s *PeriodService) Get(ctx context.Context, periodID string) (*dto.PeriodResponse, error) {
	period, err := s.findPeriod(ctx, periodID)
	if err != nil {
		return nil, err
	}
	unlocks, err := s.periods.ListUnlocks(ctx, periodID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load unlock history")
	}
	return &dto.PeriodResponse{Period: *period, Unlocks: unlocks}, nil
}

// List returns the periods of an academic year in term order.
func (s *PeriodService) List(ctx context.Context, academicYear string) ([]models.AcademicPeriod, error) {
	periods, err := s.periods.List(ctx, academicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list periods")
	}
	return periods, nil
}

// Transition moves a period forward one lifecycle step. Skipping
// states or moving backwards is rejected; reopening a locked period
// must go through Unlock.
func (s *PeriodService) Transition(ctx context.Context, scope models.UserScope, periodID string, req dto.PeriodTransitionRequest) (*models.AcademicPeriod, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid transition payload")
	}
	if scope.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only admins may transition periods")
	}
	if !req.TargetState.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown period state %q", req.TargetState))
	}

	period, err := s.findPeriod(ctx, periodID)
	if err != nil {
		return nil, err
	}

	if !period.State.CanTransitionTo(req.TargetState) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("cannot transition from %s to %s", period.State, req.TargetState))
	}

	if err := s.periods.UpdateState(ctx, periodID, period.State, req.TargetState); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "period state changed concurrently")
	}

	s.logger.Info("period transitioned",
		zap.String("period_id", periodID),
		zap.String("from", string(period.State)),
		zap.String("to", string(req.TargetState)),
		zap.String("by", scope.UserID))

	period.State = req.TargetState
	return period, nil
}

// Unlock reopens a locked period for corrections. The reason is
// mandatory and the unlock is recorded twice: in the period's unlock
// trail and in the global audit log.
func (s *PeriodService) Unlock(ctx context.Context, scope models.UserScope, periodID string, req dto.PeriodUnlockRequest) (*models.AcademicPeriod, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unlock requires a reason of at least 10 characters")
	}
	if scope.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only admins may unlock periods")
	}

	period, err := s.findPeriod(ctx, periodID)
	if err != nil {
		return nil, err
	}
	if period.State != models.PeriodLocked {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("only locked periods can be unlocked, period is %s", period.State))
	}

	if err := s.periods.UpdateState(ctx, periodID, models.PeriodLocked, models.PeriodActive); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "period state changed concurrently")
	}

	unlock := &models.PeriodUnlock{
		PeriodID:   periodID,
		UnlockedBy: scope.UserID,
		Reason:     req.Reason,
	}
	if err := s.periods.CreateUnlock(ctx, unlock); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record unlock")
	}

	if err := s.audits.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &scope.UserID,
		Action:     models.AuditActionPeriodUnlock,
		Resource:   "academic_period",
		ResourceID: &periodID,
		NewValues:  []byte(fmt.Sprintf(`{"reason":%q}`, req.Reason)),
	}); err != nil {
		s.logger.Warn("failed to record unlock audit log", zap.Error(err))
	}

	s.logger.Info("period unlocked",
		zap.String("period_id", periodID),
		zap.String("by", scope.UserID),
		zap.String("reason", req.Reason))

	period.State = models.PeriodActive
	return period, nil
}

func (s *PeriodService) findPeriod(ctx context.Context, periodID string) (*models.AcademicPeriod, error) {
	period, err := s.periods.FindByID(ctx, periodID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "period not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load period")
	}
	return period, nil
}
