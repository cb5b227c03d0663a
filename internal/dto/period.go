package dto

import "github.com/kcislk/gradebook-api/internal/models"

// PeriodTransitionRequest moves a period one step forward in its
// lifecycle.
type PeriodTransitionRequest struct {
	TargetState models.PeriodState `json:"target_state" validate:"required"`
}

// PeriodUnlockRequest reopens a locked period. The reason is mandatory
// and lands in the unlock audit trail.
type PeriodUnlockRequest struct {
	Reason string `json:"reason" validate:"required,min=10"`
}

// PeriodResponse pairs a period with its unlock history.
type PeriodResponse struct {
	Period  models.AcademicPeriod `json:"period"`
	Unlocks []models.PeriodUnlock `json:"unlocks,omitempty"`
}
