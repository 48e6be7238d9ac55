package solver

import (
	"time"

	"github.com/sbanks1000/rota-scheduler/pkg/types"
)

// scoreAssignment computes the exact soft-constraint breakdown for a complete
// assignment (per-slot doctor sets indexed by slot).
func scoreAssignment(m *Model, assigned []bitset) types.ScoreBreakdown {
	w := m.Weights
	breakdown := types.ScoreBreakdown{}

	// Fulfilled shift requests, weighted by priority.
	for i, req := range m.Requests {
		if assigned[req.SlotIndex].has(m.RequestDocs[i]) {
			breakdown.RequestsFulfilled += w.RequestFulfilled * float64(req.Priority)
			breakdown.FulfilledRequestIDs = append(breakdown.FulfilledRequestIDs, req.ID)
		}
	}

	// Bank-holiday balance: negated squared deviation from the roster mean.
	if m.HolidaySlots.count() > 0 && len(m.Doctors) > 0 {
		counts := make([]int, len(m.Doctors))
		total := 0
		m.HolidaySlots.forEach(func(s int) {
			assigned[s].forEach(func(d int) {
				counts[d]++
				total++
			})
		})
		mean := float64(total) / float64(len(m.Doctors))
		for _, c := range counts {
			dev := float64(c) - mean
			breakdown.HolidayBalance -= w.HolidayBalance * dev * dev
		}
	}

	// Extra senior cover on Monday/Tuesday slots beyond the first.
	for s := range m.Slots {
		if !isWeekStart(&m.Slots[s]) {
			continue
		}
		seniors := 0
		assigned[s].forEach(func(d int) {
			if m.SeniorSet.has(d) {
				seniors++
			}
		})
		if seniors > 1 {
			breakdown.WeekStartCover += w.WeekStartCover * float64(seniors-1)
		}
	}

	// Run shape: reward runs of 2-3 consecutive slots, mildly penalize
	// isolated singles and maximal-length runs.
	for d := range m.Doctors {
		forEachRun(m, assigned, d, func(length int) {
			switch {
			case length >= 2 && length <= 3:
				breakdown.RunShape += w.RunShape
			case length == 1 || length == m.Rules.MaxConsecutiveShifts:
				breakdown.RunShape -= w.RunShape
			}
		})
	}

	breakdown.Total = breakdown.RequestsFulfilled + breakdown.HolidayBalance +
		breakdown.WeekStartCover + breakdown.RunShape
	return breakdown
}

// forEachRun calls f with the length of every maximal run of consecutive
// slots assigned to the doctor.
func forEachRun(m *Model, assigned []bitset, doc int, f func(length int)) {
	run := 0
	for s := range m.Slots {
		if assigned[s].has(doc) {
			run++
			continue
		}
		if run > 0 {
			f(run)
			run = 0
		}
	}
	if run > 0 {
		f(run)
	}
}

func isWeekStart(slot *types.ShiftSlot) bool {
	wd := slot.Weekday()
	return wd == time.Monday || wd == time.Tuesday
}

// candidateBias scores one tentative (slot, doctor) choice for value
// ordering. This is a search heuristic, not part of the reported objective:
// it prefers choices likely to raise the final score and to keep every
// doctor's band minimum reachable.
func (s *searcher) candidateBias(slot, doc int) float64 {
	m := s.st.model
	w := m.Weights
	bias := 0.0

	for i, req := range m.Requests {
		if req.SlotIndex == slot && m.RequestDocs[i] == doc {
			bias += w.RequestFulfilled * float64(req.Priority)
		}
	}

	if isWeekStart(&m.Slots[slot]) && m.SeniorSet.has(doc) {
		bias += w.WeekStartCover
	}

	// Prefer extending a short neighbouring run over opening an isolated one,
	// and avoid growing a run to the maximum.
	left, right := 0, 0
	for i := slot - 1; i >= 0 && s.st.docSlots[doc].has(i); i-- {
		left++
	}
	for i := slot + 1; i < s.st.nSlots && s.st.docSlots[doc].has(i); i++ {
		right++
	}
	switch joined := left + right + 1; {
	case joined >= 2 && joined <= 3:
		bias += w.RunShape
	case joined >= m.Rules.MaxConsecutiveShifts:
		bias -= w.RunShape
	}

	// Holiday slots go to doctors with lighter holiday exposure so far.
	if m.HolidaySlots.has(slot) {
		exposure := 0
		m.HolidaySlots.forEach(func(hs int) {
			if s.st.docSlots[doc].has(hs) {
				exposure++
			}
		})
		bias -= w.HolidayBalance * float64(exposure)
	}

	// Fairness pressure: doctors further from their band minimum first.
	if deficit := m.Bands[doc].Min - s.st.docCount[doc]; deficit > 0 {
		bias += 0.25 * float64(deficit)
	}

	return bias
}

// upperBound returns an admissible optimistic bound on the best total score
// reachable from the current partial assignment. Used for branch-and-bound
// pruning: a node whose bound cannot beat the incumbent is cut.
func (s *searcher) upperBound() float64 {
	m := s.st.model
	w := m.Weights
	ub := 0.0

	// Requests: count fulfilled plus still-fulfillable ones.
	for i, req := range m.Requests {
		d := m.RequestDocs[i]
		if s.st.assigned[req.SlotIndex].has(d) ||
			(s.st.slotOpen(req.SlotIndex) && s.st.candidates[req.SlotIndex].has(d)) {
			ub += w.RequestFulfilled * float64(req.Priority)
		}
	}

	// Holiday balance never exceeds zero; once every holiday slot is closed
	// the term is exact.
	holidayOpen := false
	m.HolidaySlots.forEach(func(slot int) {
		if s.st.slotOpen(slot) {
			holidayOpen = true
		}
	})
	if !holidayOpen && m.HolidaySlots.count() > 0 {
		counts := make([]int, len(m.Doctors))
		total := 0
		m.HolidaySlots.forEach(func(slot int) {
			s.st.assigned[slot].forEach(func(d int) {
				counts[d]++
				total++
			})
		})
		mean := float64(total) / float64(len(m.Doctors))
		for _, c := range counts {
			dev := float64(c) - mean
			ub -= w.HolidayBalance * dev * dev
		}
	}

	// Week-start cover: every open Monday/Tuesday seat could seat an extra
	// senior; closed slots contribute exactly.
	for slot := range m.Slots {
		if !isWeekStart(&m.Slots[slot]) {
			continue
		}
		seniors := 0
		s.st.assigned[slot].forEach(func(d int) {
			if m.SeniorSet.has(d) {
				seniors++
			}
		})
		seniors += s.st.target[slot] - s.st.assignedCount[slot]
		if seniors > 1 {
			ub += w.WeekStartCover * float64(seniors-1)
		}
	}

	// Run shape: at best, every pair of assigned slots forms one rewarded run.
	if w.RunShape > 0 {
		totalAssignments := 0
		for slot := range m.Slots {
			totalAssignments += s.st.target[slot]
		}
		ub += w.RunShape * float64(totalAssignments) / 2
	}

	return ub
}
