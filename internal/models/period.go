package models

import "time"

// PeriodState models the lifecycle of an academic period.
type PeriodState string

const (
	PeriodPreparing PeriodState = "preparing"
	PeriodActive    PeriodState = "active"
	PeriodClosing   PeriodState = "closing"
	PeriodLocked    PeriodState = "locked"
	PeriodArchived  PeriodState = "archived"
)

var periodOrder = map[PeriodState]int{
	PeriodPreparing: 0,
	PeriodActive:    1,
	PeriodClosing:   2,
	PeriodLocked:    3,
	PeriodArchived:  4,
}

// Valid reports whether the state is a known lifecycle state.
func (s PeriodState) Valid() bool {
	_, ok := periodOrder[s]
	return ok
}

// CanTransitionTo reports whether the state machine permits moving to
// next via a regular forward transition. The locked -> active unlock
// path is handled separately because it requires an audited reason.
func (s PeriodState) CanTransitionTo(next PeriodState) bool {
	cur, ok := periodOrder[s]
	if !ok {
		return false
	}
	target, ok := periodOrder[next]
	if !ok {
		return false
	}
	return target == cur+1
}

// AcceptsWrites reports whether score and expectation mutations are
// allowed while the period is in this state.
func (s PeriodState) AcceptsWrites() bool {
	return s == PeriodActive || s == PeriodClosing
}

// AcademicPeriod is one term of the four-term academic calendar.
type AcademicPeriod struct {
	ID           string      `db:"id" json:"id"`
	AcademicYear string      `db:"academic_year" json:"academic_year"`
	Term         int         `db:"term" json:"term"`
	State        PeriodState `db:"state" json:"state"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}

// PeriodUnlock records an audited unlock of a locked period.
type PeriodUnlock struct {
	ID         string    `db:"id" json:"id"`
	PeriodID   string    `db:"period_id" json:"period_id"`
	UnlockedBy string    `db:"unlocked_by" json:"unlocked_by"`
	Reason     string    `db:"reason" json:"reason"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
