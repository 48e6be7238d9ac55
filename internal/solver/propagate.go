package solver

import (
	"fmt"

	"github.com/sbanks1000/rota-scheduler/pkg/types"
)

// contradiction is the internal propagation signal: the current partial
// assignment cannot be completed. It is caught by the search engine and
// converted to backtracking, never surfaced to the caller.
type contradiction struct {
	ConstraintID string
	SlotIndex    int
	DoctorID     string
}

func (c *contradiction) Error() string {
	return fmt.Sprintf("propagation contradiction on %s (slot %d, doctor %q)", c.ConstraintID, c.SlotIndex, c.DoctorID)
}

func (st *searchState) contradict(kind ConstraintKind, slot int, doc int) *contradiction {
	c := &contradiction{SlotIndex: slot}
	if doc >= 0 {
		c.DoctorID = st.model.Doctors[doc].ID
		c.ConstraintID = fmt.Sprintf("%s/%s", kind, c.DoctorID)
	} else {
		c.ConstraintID = fmt.Sprintf("%s/slot-%d", kind, slot)
	}
	return c
}

// assign places a doctor on a slot and propagates every consequence: shift-cap
// and run-length exclusions, rest-rule exclusions, slot-closure cleanup, and
// feasibility checks on every touched slot and doctor. All changes land on the
// current trail frame so the search can revert the decision as a unit.
func (st *searchState) assign(slot, doc int) *contradiction {
	if !st.candidates[slot].has(doc) {
		return st.contradict(ConstraintHeadcount, slot, doc)
	}

	st.place(slot, doc)
	m := st.model

	// Shift-count cap: a doctor at the band maximum leaves every other domain.
	if st.docCount[doc] >= m.Bands[doc].Max {
		for s := 0; s < st.nSlots; s++ {
			if s != slot {
				st.exclude(s, doc)
			}
		}
	}

	// Run rule: a run at the maximum length closes both adjacent slots.
	start, end := st.runAround(doc, slot)
	if end-start+1 > m.Rules.MaxConsecutiveShifts {
		return st.contradict(ConstraintMaxRun, slot, doc)
	}
	if end-start+1 == m.Rules.MaxConsecutiveShifts {
		if start > 0 {
			st.exclude(start-1, doc)
		}
		if end < st.nSlots-1 {
			st.exclude(end+1, doc)
		}
	}

	// Rest rule: no night shift directly followed by the next day shift.
	if m.RestRuleActive {
		if m.Slots[slot].Type == types.ShiftNight && slot+1 < st.nSlots {
			st.exclude(slot+1, doc)
		}
		if m.Slots[slot].Type == types.ShiftDay && slot > 0 {
			st.exclude(slot-1, doc)
		}
	}

	// A full slot no longer accepts anyone; clear its leftover candidates so
	// day-closure and possibility tracking see the final state.
	if !st.slotOpen(slot) {
		var leftovers []int
		st.candidates[slot].forEach(func(d int) { leftovers = append(leftovers, d) })
		for _, d := range leftovers {
			st.exclude(slot, d)
		}
	}

	return st.revalidate()
}

// applyFixed replays the model's fixed assignments into the initial state.
// A contradiction here means the fixed set itself is unsatisfiable.
func (st *searchState) applyFixed() *contradiction {
	m := st.model
	for s := 0; s < st.nSlots; s++ {
		var excluded []int
		m.FixedExcludes[s].forEach(func(d int) { excluded = append(excluded, d) })
		for _, d := range excluded {
			st.exclude(s, d)
		}
	}
	if c := st.revalidate(); c != nil {
		return c
	}
	for s := 0; s < st.nSlots; s++ {
		for _, d := range m.FixedAssigns[s] {
			if c := st.assign(s, d); c != nil {
				return c
			}
		}
	}
	return nil
}

// revalidate sweeps every open slot and every doctor for feasibility after a
// batch of domain changes. Cheap relative to branching cost at this problem
// size, and keeps the consequence logic in one place.
func (st *searchState) revalidate() *contradiction {
	for s := 0; s < st.nSlots; s++ {
		if c := st.checkSlot(s); c != nil {
			return c
		}
	}
	for d := 0; d < st.nDocs; d++ {
		if c := st.checkDoctor(d); c != nil {
			return c
		}
	}
	return nil
}

// checkSlot verifies an open slot can still meet headcount, seniority, and
// specialty. When only one position remains and a cover requirement is still
// unmet, non-qualifying candidates are pruned (the last seat must provide the
// missing cover).
func (st *searchState) checkSlot(slot int) *contradiction {
	need := st.target[slot] - st.assignedCount[slot]
	if need <= 0 {
		return nil
	}
	m := st.model

	if st.candidates[slot].count() < need {
		return st.contradict(ConstraintHeadcount, slot, -1)
	}

	if !st.assigned[slot].intersects(m.SeniorSet) {
		if !st.candidates[slot].intersects(m.SeniorSet) {
			return st.contradict(ConstraintSeniorCover, slot, -1)
		}
		if need == 1 {
			if c := st.restrictTo(slot, m.SeniorSet, ConstraintSeniorCover); c != nil {
				return c
			}
		}
	}

	if sp := m.Slots[slot].RequiredSpecialty; sp != "" {
		holders := m.SpecialtySet(sp)
		if !st.assigned[slot].intersects(holders) {
			if !st.candidates[slot].intersects(holders) {
				return st.contradict(ConstraintSpecialtyCover, slot, -1)
			}
			if need == 1 {
				if c := st.restrictTo(slot, holders, ConstraintSpecialtyCover); c != nil {
					return c
				}
			}
		}
	}

	return nil
}

// restrictTo prunes a slot's candidates down to the qualifying set
func (st *searchState) restrictTo(slot int, qualifying bitset, kind ConstraintKind) *contradiction {
	var drop []int
	st.candidates[slot].forEach(func(d int) {
		if !qualifying.has(d) {
			drop = append(drop, d)
		}
	})
	for _, d := range drop {
		st.exclude(slot, d)
	}
	if st.candidates[slot].count() < st.target[slot]-st.assignedCount[slot] {
		return st.contradict(kind, slot, -1)
	}
	return nil
}

// checkDoctor verifies a doctor can still reach the band minimum and has no
// certain day-off violation: an isolated single day off between worked days,
// or an over-long closed stretch not covered by approved leave.
func (st *searchState) checkDoctor(doc int) *contradiction {
	m := st.model

	if st.docCount[doc]+st.docPossible[doc] < m.Bands[doc].Min {
		return st.contradict(ConstraintShiftBand, -1, doc)
	}

	if m.Rules.AvoidSingleDayOff {
		for day := 1; day < st.nDays-1; day++ {
			if st.dayClosed(doc, day) && st.worked(doc, day-1) && st.worked(doc, day+1) {
				return &contradiction{
					ConstraintID: fmt.Sprintf("%s/%s", ConstraintSingleDayOff, m.Doctors[doc].ID),
					SlotIndex:    day * 2,
					DoctorID:     m.Doctors[doc].ID,
				}
			}
		}
	}

	window := m.Rules.MaxConsecutiveDaysOff + 1
	if window <= st.nDays {
		closedRun := 0
		for day := 0; day < st.nDays; day++ {
			if st.dayClosed(doc, day) {
				closedRun++
			} else {
				closedRun = 0
			}
			if closedRun >= window && !st.leaveCovered(doc, day-window+1, day) {
				return &contradiction{
					ConstraintID: fmt.Sprintf("%s/%s", ConstraintMaxDaysOff, m.Doctors[doc].ID),
					SlotIndex:    day * 2,
					DoctorID:     m.Doctors[doc].ID,
				}
			}
		}
	}

	return nil
}

// leaveCovered reports whether any day of [from, to] is covered by an
// approved leave exclusion for the doctor, exempting the window from the
// consecutive-days-off rule.
func (st *searchState) leaveCovered(doc, from, to int) bool {
	days := st.model.LeaveDays[doc]
	if days == nil {
		return false
	}
	for day := from; day <= to; day++ {
		if days[day] {
			return true
		}
	}
	return false
}

// runAround returns the maximal run of consecutive assigned slot indices for
// the doctor containing the given slot.
func (st *searchState) runAround(doc, slot int) (start, end int) {
	start, end = slot, slot
	for start > 0 && st.docSlots[doc].has(start-1) {
		start--
	}
	for end < st.nSlots-1 && st.docSlots[doc].has(end+1) {
		end++
	}
	return start, end
}
