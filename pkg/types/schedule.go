package types

import "time"

// SolveStatus describes the terminal state of a scheduling run
type SolveStatus string

const (
	// StatusOptimal means search exhausted the space or proved the bound;
	// the returned schedule is the best possible under the given weights.
	StatusOptimal SolveStatus = "optimal"
	// StatusFeasible means a valid schedule was found but the budget ran
	// out (or the run was cancelled) before optimality was proven.
	StatusFeasible SolveStatus = "feasible"
	// StatusInfeasible means no hard-constraint-satisfying schedule was
	// found within the budget.
	StatusInfeasible SolveStatus = "infeasible"
)

// SlotAssignment binds one slot to the set of doctors working it
type SlotAssignment struct {
	Slot      ShiftSlot `json:"slot"`
	DoctorIDs []string  `json:"doctor_ids"`
}

// Schedule is the terminal artifact: every slot of the horizon exactly once,
// in slot-index order, each with its assigned doctor set.
type Schedule struct {
	Assignments []SlotAssignment `json:"assignments"`
}

// DoctorsFor returns the doctor set assigned to the given slot index
func (s *Schedule) DoctorsFor(slotIndex int) []string {
	if slotIndex < 0 || slotIndex >= len(s.Assignments) {
		return nil
	}
	return s.Assignments[slotIndex].DoctorIDs
}

// ScoreBreakdown reports the soft-constraint score per objective category
type ScoreBreakdown struct {
	Total               float64  `json:"total"`
	RequestsFulfilled   float64  `json:"requests_fulfilled"`
	HolidayBalance      float64  `json:"holiday_balance"`
	WeekStartCover      float64  `json:"week_start_cover"`
	RunShape            float64  `json:"run_shape"`
	FulfilledRequestIDs []string `json:"fulfilled_request_ids,omitempty"`
}

// SolverStats reports how the search behaved
type SolverStats struct {
	NodesExplored    int64         `json:"nodes_explored"`
	Backtracks       int64         `json:"backtracks"`
	IncumbentsFound  int           `json:"incumbents_found"`
	Elapsed          time.Duration `json:"elapsed"`
	OptimalityProven bool          `json:"optimality_proven"`
	Cancelled        bool          `json:"cancelled"`
}

// ViolationSeverity grades a reported constraint violation
type ViolationSeverity string

const (
	SeverityError   ViolationSeverity = "error"
	SeverityWarning ViolationSeverity = "warning"
	SeverityInfo    ViolationSeverity = "info"
)

// ConstraintViolation is a validator finding against a candidate schedule.
// Error-severity violations indicate a broken hard constraint and are fatal.
type ConstraintViolation struct {
	ConstraintID string            `json:"constraint_id"`
	Severity     ViolationSeverity `json:"severity"`
	Description  string            `json:"description"`
	DoctorID     string            `json:"doctor_id,omitempty"`
	SlotIndex    int               `json:"slot_index"`
}

// InfeasibilityReport is a best-effort explanation of why no feasible
// schedule exists: the constraint identifiers and doctors/slots whose mutual
// interaction blocked the search. Not a guaranteed minimal core.
type InfeasibilityReport struct {
	ConstraintIDs []string `json:"constraint_ids"`
	DoctorIDs     []string `json:"doctor_ids,omitempty"`
	SlotIndices   []int    `json:"slot_indices,omitempty"`
	Message       string   `json:"message"`
}

// ScheduleResult is the packaged outcome of one scheduling run
type ScheduleResult struct {
	ID     string      `json:"id"`
	Status SolveStatus `json:"status"`

	Schedule *Schedule       `json:"schedule,omitempty"`
	Score    *ScoreBreakdown `json:"score,omitempty"`
	Stats    SolverStats     `json:"stats"`

	Infeasibility *InfeasibilityReport `json:"infeasibility,omitempty"`
	Warnings      []ConstraintViolation `json:"warnings,omitempty"`
}

// IsFeasible reports whether the result carries a valid schedule
func (r *ScheduleResult) IsFeasible() bool {
	return r.Status == StatusOptimal || r.Status == StatusFeasible
}
