package roster

import (
	"time"

	"github.com/sbanks1000/rota-scheduler/pkg/types"
)

// Record statuses as produced by the surrounding application's approval
// workflows. Only approved records affect the engine input.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

// LeaveRecord is the final state of a leave request after review. An approved
// record excludes the doctor from every slot in its date range.
type LeaveRecord struct {
	DoctorID  string    `json:"doctor_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	LeaveType string    `json:"leave_type"` // vacation, study_leave, practice_development, sick, other
	Status    string    `json:"status"`
}

// SwapRecord is the final state of a shift-swap request after the target
// doctor accepted and an administrator approved it. An approved record binds
// the target doctor to the slot and excludes the requesting doctor from it.
type SwapRecord struct {
	SlotIndex          int    `json:"slot_index"`
	RequestingDoctorID string `json:"requesting_doctor_id"`
	TargetDoctorID     string `json:"target_doctor_id"`
	Status             string `json:"status"`
}

// DeriveFixedAssignments converts approved leave and swap records into the
// engine's FixedAssignment form against the given slot calendar. Pending,
// rejected, and cancelled records are ignored; the approval state machines
// themselves live in the surrounding application.
func DeriveFixedAssignments(slots []types.ShiftSlot, leaves []LeaveRecord, swaps []SwapRecord) []types.FixedAssignment {
	var fixed []types.FixedAssignment

	for _, leave := range leaves {
		if leave.Status != StatusApproved {
			continue
		}
		start := truncateToDay(leave.StartDate)
		end := truncateToDay(leave.EndDate)
		for i := range slots {
			day := truncateToDay(slots[i].Date)
			if day.Before(start) || day.After(end) {
				continue
			}
			fixed = append(fixed, types.FixedAssignment{
				DoctorID:  leave.DoctorID,
				SlotIndex: slots[i].Index,
				Kind:      types.FixedExclude,
				Source:    types.SourceLeave,
			})
		}
	}

	for _, swap := range swaps {
		if swap.Status != StatusApproved {
			continue
		}
		if swap.SlotIndex < 0 || swap.SlotIndex >= len(slots) {
			continue
		}
		fixed = append(fixed,
			types.FixedAssignment{
				DoctorID:  swap.TargetDoctorID,
				SlotIndex: swap.SlotIndex,
				Kind:      types.FixedAssign,
				Source:    types.SourceSwap,
			},
			types.FixedAssignment{
				DoctorID:  swap.RequestingDoctorID,
				SlotIndex: swap.SlotIndex,
				Kind:      types.FixedExclude,
				Source:    types.SourceSwap,
			},
		)
	}

	return fixed
}

// LeaveDays returns, per doctor, the set of horizon day indices covered by an
// approved leave exclusion. The solver exempts these days from the
// consecutive-days-off rule.
func LeaveDays(slots []types.ShiftSlot, fixed []types.FixedAssignment) map[string]map[int]bool {
	covered := make(map[string]map[int]bool)
	for _, fa := range fixed {
		if fa.Kind != types.FixedExclude || fa.Source != types.SourceLeave {
			continue
		}
		if fa.SlotIndex < 0 || fa.SlotIndex >= len(slots) {
			continue
		}
		days := covered[fa.DoctorID]
		if days == nil {
			days = make(map[int]bool)
			covered[fa.DoctorID] = days
		}
		days[slots[fa.SlotIndex].DayIndex()] = true
	}
	return covered
}
