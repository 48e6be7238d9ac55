package roster

import (
	"time"

	"github.com/sbanks1000/rota-scheduler/pkg/config"
	"github.com/sbanks1000/rota-scheduler/pkg/types"
)

// ScheduleInput is the raw, record-oriented form of a scheduling problem as
// the surrounding application collects it: a horizon, requirement rules, and
// the reviewed leave/swap records. BuildRequest resolves it into the engine's
// snapshot form.
type ScheduleInput struct {
	HorizonStart time.Time `json:"horizon_start"`
	HorizonEnd   time.Time `json:"horizon_end"`

	Doctors      []types.Doctor          `json:"doctors"`
	Requirements []types.SlotRequirement `json:"requirements,omitempty"`

	Leaves []LeaveRecord `json:"leaves,omitempty"`
	Swaps  []SwapRecord  `json:"swaps,omitempty"`

	ShiftRequests []types.ShiftRequest `json:"shift_requests,omitempty"`
	BankHolidays  []time.Time          `json:"bank_holidays,omitempty"`

	Weights *types.SoftWeights `json:"weights,omitempty"`
	Budget  types.SearchBudget `json:"budget,omitempty"`
	Seed    int64              `json:"seed,omitempty"`
}

// BuildRequest expands the horizon into the slot calendar, converts approved
// leave and swap records into fixed assignments, and assembles the immutable
// request snapshot the engine consumes.
func BuildRequest(input *ScheduleInput, rules config.RulesConfig) (*types.SchedulingRequest, error) {
	slots, err := BuildCalendar(input.HorizonStart, input.HorizonEnd, input.Requirements, rules)
	if err != nil {
		return nil, err
	}

	return &types.SchedulingRequest{
		HorizonStart:     input.HorizonStart,
		HorizonEnd:       input.HorizonEnd,
		Slots:            slots,
		Doctors:          input.Doctors,
		FixedAssignments: DeriveFixedAssignments(slots, input.Leaves, input.Swaps),
		ShiftRequests:    input.ShiftRequests,
		BankHolidays:     input.BankHolidays,
		Weights:          input.Weights,
		Budget:           input.Budget,
		Seed:             input.Seed,
	}, nil
}
