package types

import "time"

// FixedAssignmentKind distinguishes pre-bindings from pre-exclusions
type FixedAssignmentKind string

const (
	FixedAssign  FixedAssignmentKind = "assign"
	FixedExclude FixedAssignmentKind = "exclude"
)

// FixedAssignmentSource records which approved workflow produced the binding
type FixedAssignmentSource string

const (
	SourceLeave  FixedAssignmentSource = "leave"
	SourceSwap   FixedAssignmentSource = "swap"
	SourceManual FixedAssignmentSource = "manual"
)

// FixedAssignment pre-binds a doctor to a slot (approved swap) or pre-excludes
// a doctor from a slot (approved leave). Fixed assignments are immutable input
// and are honored verbatim in the final schedule; they are not subject to search.
type FixedAssignment struct {
	DoctorID  string                `json:"doctor_id"`
	SlotIndex int                   `json:"slot_index"`
	Kind      FixedAssignmentKind   `json:"kind"`
	Source    FixedAssignmentSource `json:"source"`
}

// ShiftRequest is a doctor's request to work a specific slot. Fulfilled
// requests contribute to the soft-constraint objective weighted by priority.
type ShiftRequest struct {
	ID        string `json:"id"`
	DoctorID  string `json:"doctor_id"`
	SlotIndex int    `json:"slot_index"`
	Priority  int    `json:"priority"` // 1 (low) .. 5 (high)
}

// SoftWeights configures the soft-constraint objective. Higher total is better.
type SoftWeights struct {
	// RequestFulfilled is awarded per fulfilled shift request, scaled by the
	// request's priority.
	RequestFulfilled float64 `json:"request_fulfilled"`
	// HolidayBalance scales the penalty for uneven bank-holiday shift
	// distribution (negated squared deviation from the roster mean).
	HolidayBalance float64 `json:"holiday_balance"`
	// WeekStartCover is awarded per senior doctor above the first on a
	// Monday or Tuesday slot.
	WeekStartCover float64 `json:"week_start_cover"`
	// RunShape is awarded per run of length 2-3 and deducted per run of
	// length 1 or 4.
	RunShape float64 `json:"run_shape"`
}

// SearchBudget bounds a single solver run. Zero values mean unlimited.
type SearchBudget struct {
	MaxNodes  int64         `json:"max_nodes"`
	TimeLimit time.Duration `json:"time_limit"`
}

// SchedulingRequest is the fully-resolved problem snapshot handed to the
// engine: the roster, the slot calendar, the final effect of approved
// leave/swap workflows, preferences, weights, and the search budget. The
// engine does not reach back into any persistence layer.
type SchedulingRequest struct {
	HorizonStart time.Time `json:"horizon_start"`
	HorizonEnd   time.Time `json:"horizon_end"`

	Slots            []ShiftSlot       `json:"slots"`
	Doctors          []Doctor          `json:"doctors"`
	FixedAssignments []FixedAssignment `json:"fixed_assignments,omitempty"`
	ShiftRequests    []ShiftRequest    `json:"shift_requests,omitempty"`
	BankHolidays     []time.Time       `json:"bank_holidays,omitempty"`

	// Weights overrides the configured soft-constraint weights when set.
	// A nil value means the defaults apply; an explicit zero value disables
	// every soft term.
	Weights *SoftWeights `json:"weights,omitempty"`
	Budget  SearchBudget `json:"budget"`
	Seed    int64        `json:"seed"`
}
