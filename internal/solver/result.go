package solver

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/sbanks1000/rota-scheduler/pkg/types"
)

// buildSchedule converts per-slot doctor sets into the output schedule,
// slot-index order, doctor IDs in roster order.
func buildSchedule(m *Model, assigned []bitset) *types.Schedule {
	schedule := &types.Schedule{Assignments: make([]types.SlotAssignment, len(m.Slots))}
	for s := range m.Slots {
		schedule.Assignments[s] = types.SlotAssignment{
			Slot:      m.Slots[s],
			DoctorIDs: m.SortedDoctorIDs(assigned[s]),
		}
	}
	return schedule
}

// packageSuccess assembles the result for a run that produced a schedule
func packageSuccess(best *incumbent, m *Model, stats types.SolverStats, warnings []types.ConstraintViolation) *types.ScheduleResult {
	status := types.StatusFeasible
	if stats.OptimalityProven {
		status = types.StatusOptimal
	}
	score := best.score
	return &types.ScheduleResult{
		ID:       uuid.New().String(),
		Status:   status,
		Schedule: buildSchedule(m, best.assigned),
		Score:    &score,
		Stats:    stats,
		Warnings: warnings,
	}
}

// packageInfeasible assembles the result for a run that found no feasible
// schedule, distilling the search's contradiction trace into a best-effort
// unsatisfiable core: the constraints that blocked the most branches, with
// their implicated doctors and slots.
func packageInfeasible(failures map[string]*failureStat, stats types.SolverStats, message string) *types.ScheduleResult {
	report := &types.InfeasibilityReport{Message: message}

	type entry struct {
		id   string
		stat *failureStat
	}
	entries := make([]entry, 0, len(failures))
	for id, stat := range failures {
		entries = append(entries, entry{id: id, stat: stat})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].stat.count != entries[j].stat.count {
			return entries[i].stat.count > entries[j].stat.count
		}
		return entries[i].id < entries[j].id
	})

	const coreLimit = 5
	doctors := make(map[string]bool)
	slots := make(map[int]bool)
	for i, e := range entries {
		if i >= coreLimit {
			break
		}
		report.ConstraintIDs = append(report.ConstraintIDs, e.id)
		for d := range e.stat.doctors {
			doctors[d] = true
		}
		for s := range e.stat.slots {
			slots[s] = true
		}
	}
	for d := range doctors {
		report.DoctorIDs = append(report.DoctorIDs, d)
	}
	sort.Strings(report.DoctorIDs)
	for s := range slots {
		report.SlotIndices = append(report.SlotIndices, s)
	}
	sort.Ints(report.SlotIndices)

	return &types.ScheduleResult{
		ID:            uuid.New().String(),
		Status:        types.StatusInfeasible,
		Stats:         stats,
		Infeasibility: report,
	}
}

// infeasibleFromContradiction packages a contradiction hit while replaying
// fixed assignments, before any search decision was made.
func infeasibleFromContradiction(c *contradiction, stats types.SolverStats) *types.ScheduleResult {
	report := &types.InfeasibilityReport{
		ConstraintIDs: []string{c.ConstraintID},
		Message:       fmt.Sprintf("fixed assignments are mutually unsatisfiable: %v", c),
	}
	if c.DoctorID != "" {
		report.DoctorIDs = []string{c.DoctorID}
	}
	if c.SlotIndex >= 0 {
		report.SlotIndices = []int{c.SlotIndex}
	}
	return &types.ScheduleResult{
		ID:            uuid.New().String(),
		Status:        types.StatusInfeasible,
		Stats:         stats,
		Infeasibility: report,
	}
}
