package solver

import (
	"fmt"

	"github.com/sbanks1000/rota-scheduler/pkg/types"
)

// ValidateSchedule re-checks every hard constraint instance against a
// candidate schedule, independently of the search path that produced it. It
// returns the error-severity violations (hard-rule breaches, which indicate a
// search defect) and advisory warnings (e.g. unfulfilled shift requests).
func ValidateSchedule(m *Model, schedule *types.Schedule) (violations, warnings []types.ConstraintViolation) {
	assigned, structural := rebuildAssignment(m, schedule)
	violations = append(violations, structural...)
	if assigned == nil {
		return violations, nil
	}

	for _, ci := range m.Constraints {
		switch ci.Kind {
		case ConstraintHeadcount:
			if got := assigned[ci.SlotIndex].count(); got < ci.Min {
				violations = append(violations, violation(ci,
					fmt.Sprintf("slot %d has %d doctors, minimum is %d", ci.SlotIndex, got, ci.Min)))
			}
		case ConstraintSeniorCover:
			if !assigned[ci.SlotIndex].intersects(m.SeniorSet) {
				violations = append(violations, violation(ci,
					fmt.Sprintf("slot %d has no senior doctor", ci.SlotIndex)))
			}
		case ConstraintSpecialtyCover:
			if !assigned[ci.SlotIndex].intersects(m.SpecialtySet(ci.Specialty)) {
				violations = append(violations, violation(ci,
					fmt.Sprintf("slot %d has no doctor holding %q", ci.SlotIndex, ci.Specialty)))
			}
		case ConstraintFixed:
			d := m.DoctorIndex[ci.DoctorID]
			bound := assigned[ci.SlotIndex].has(d)
			if ci.Min == 1 && !bound {
				violations = append(violations, violation(ci,
					fmt.Sprintf("fixed assignment of doctor %q to slot %d was not honored", ci.DoctorID, ci.SlotIndex)))
			}
			if ci.Min == 0 && bound {
				violations = append(violations, violation(ci,
					fmt.Sprintf("doctor %q was assigned to slot %d despite a fixed exclusion", ci.DoctorID, ci.SlotIndex)))
			}
		case ConstraintMaxRun:
			d := m.DoctorIndex[ci.DoctorID]
			forEachRun(m, assigned, d, func(length int) {
				if length > ci.Max {
					violations = append(violations, violation(ci,
						fmt.Sprintf("doctor %q has a run of %d consecutive shifts, maximum is %d", ci.DoctorID, length, ci.Max)))
				}
			})
		case ConstraintSingleDayOff:
			violations = append(violations, checkSingleDayOff(m, assigned, ci)...)
		case ConstraintMaxDaysOff:
			violations = append(violations, checkMaxDaysOff(m, assigned, ci)...)
		case ConstraintShiftBand:
			d := m.DoctorIndex[ci.DoctorID]
			total := 0
			for s := range m.Slots {
				if assigned[s].has(d) {
					total++
				}
			}
			if total < ci.Min || total > ci.Max {
				violations = append(violations, violation(ci,
					fmt.Sprintf("doctor %q has %d shifts, outside band [%d, %d]", ci.DoctorID, total, ci.Min, ci.Max)))
			}
		case ConstraintRestPeriod:
			violations = append(violations, checkRestPeriod(m, assigned, ci)...)
		}
	}

	for i, req := range m.Requests {
		if !assigned[req.SlotIndex].has(m.RequestDocs[i]) {
			warnings = append(warnings, types.ConstraintViolation{
				ConstraintID: fmt.Sprintf("shift_request/%s", req.ID),
				Severity:     types.SeverityInfo,
				Description:  fmt.Sprintf("shift request %q (doctor %q, slot %d) was not fulfilled", req.ID, req.DoctorID, req.SlotIndex),
				DoctorID:     req.DoctorID,
				SlotIndex:    req.SlotIndex,
			})
		}
	}

	return violations, warnings
}

// rebuildAssignment converts the output schedule back into per-slot doctor
// sets, checking the structural invariants: every slot exactly once and in
// order, no doctor twice in the same slot, no unknown doctors.
func rebuildAssignment(m *Model, schedule *types.Schedule) ([]bitset, []types.ConstraintViolation) {
	var violations []types.ConstraintViolation
	if schedule == nil || len(schedule.Assignments) != len(m.Slots) {
		got := 0
		if schedule != nil {
			got = len(schedule.Assignments)
		}
		return nil, []types.ConstraintViolation{{
			ConstraintID: "schedule/coverage",
			Severity:     types.SeverityError,
			Description:  fmt.Sprintf("schedule covers %d slots, horizon has %d", got, len(m.Slots)),
			SlotIndex:    -1,
		}}
	}

	assigned := make([]bitset, len(m.Slots))
	for s := range schedule.Assignments {
		sa := &schedule.Assignments[s]
		if sa.Slot.Index != s {
			return nil, []types.ConstraintViolation{{
				ConstraintID: "schedule/ordering",
				Severity:     types.SeverityError,
				Description:  fmt.Sprintf("schedule position %d carries slot index %d", s, sa.Slot.Index),
				SlotIndex:    sa.Slot.Index,
			}}
		}
		assigned[s] = newBitset(len(m.Doctors))
		for _, id := range sa.DoctorIDs {
			d, ok := m.DoctorIndex[id]
			if !ok {
				violations = append(violations, types.ConstraintViolation{
					ConstraintID: "schedule/unknown_doctor",
					Severity:     types.SeverityError,
					Description:  fmt.Sprintf("slot %d names unknown doctor %q", s, id),
					DoctorID:     id,
					SlotIndex:    s,
				})
				continue
			}
			if assigned[s].has(d) {
				violations = append(violations, types.ConstraintViolation{
					ConstraintID: "schedule/duplicate_doctor",
					Severity:     types.SeverityError,
					Description:  fmt.Sprintf("doctor %q appears twice in slot %d", id, s),
					DoctorID:     id,
					SlotIndex:    s,
				})
				continue
			}
			assigned[s].set(d)
		}
	}
	return assigned, violations
}

func checkSingleDayOff(m *Model, assigned []bitset, ci ConstraintInstance) []types.ConstraintViolation {
	d := m.DoctorIndex[ci.DoctorID]
	worked := workedDays(m, assigned, d)
	var violations []types.ConstraintViolation
	for day := 1; day < len(worked)-1; day++ {
		if worked[day-1] && !worked[day] && worked[day+1] {
			violations = append(violations, violation(ci,
				fmt.Sprintf("doctor %q has an isolated single day off at day %d", ci.DoctorID, day)))
		}
	}
	return violations
}

func checkMaxDaysOff(m *Model, assigned []bitset, ci ConstraintInstance) []types.ConstraintViolation {
	d := m.DoctorIndex[ci.DoctorID]
	worked := workedDays(m, assigned, d)
	leave := m.LeaveDays[d]

	var violations []types.ConstraintViolation
	window := ci.Max + 1
	offRun := 0
	for day := 0; day < len(worked); day++ {
		if worked[day] {
			offRun = 0
			continue
		}
		offRun++
		if offRun >= window && !windowLeaveCovered(leave, day-window+1, day) {
			violations = append(violations, violation(ci,
				fmt.Sprintf("doctor %q has %d consecutive days off ending at day %d without covering leave", ci.DoctorID, offRun, day)))
			offRun = 0 // report each stretch once
		}
	}
	return violations
}

func checkRestPeriod(m *Model, assigned []bitset, ci ConstraintInstance) []types.ConstraintViolation {
	d := m.DoctorIndex[ci.DoctorID]
	var violations []types.ConstraintViolation
	for s := 0; s+1 < len(m.Slots); s++ {
		if m.Slots[s].Type != types.ShiftNight || m.Slots[s+1].Type != types.ShiftDay {
			continue
		}
		if assigned[s].has(d) && assigned[s+1].has(d) {
			violations = append(violations, types.ConstraintViolation{
				ConstraintID: ci.ID,
				Severity:     types.SeverityError,
				Description:  fmt.Sprintf("doctor %q works night slot %d directly into day slot %d", ci.DoctorID, s, s+1),
				DoctorID:     ci.DoctorID,
				SlotIndex:    s,
			})
		}
	}
	return violations
}

func workedDays(m *Model, assigned []bitset, doc int) []bool {
	days := make([]bool, (len(m.Slots)+1)/2)
	for s := range m.Slots {
		if assigned[s].has(doc) {
			days[s/2] = true
		}
	}
	return days
}

func windowLeaveCovered(leave map[int]bool, from, to int) bool {
	if leave == nil {
		return false
	}
	for day := from; day <= to; day++ {
		if leave[day] {
			return true
		}
	}
	return false
}

func violation(ci ConstraintInstance, description string) types.ConstraintViolation {
	return types.ConstraintViolation{
		ConstraintID: ci.ID,
		Severity:     types.SeverityError,
		Description:  description,
		DoctorID:     ci.DoctorID,
		SlotIndex:    ci.SlotIndex,
	}
}
