package solver

import (
	"fmt"
	"sort"

	"github.com/sbanks1000/rota-scheduler/internal/roster"
	"github.com/sbanks1000/rota-scheduler/pkg/config"
	"github.com/sbanks1000/rota-scheduler/pkg/types"
)

// ConstraintKind identifies a hard rule template
type ConstraintKind string

const (
	ConstraintHeadcount      ConstraintKind = "headcount"
	ConstraintSeniorCover    ConstraintKind = "senior_cover"
	ConstraintSpecialtyCover ConstraintKind = "specialty_cover"
	ConstraintMaxRun         ConstraintKind = "max_consecutive_shifts"
	ConstraintSingleDayOff   ConstraintKind = "single_day_off"
	ConstraintMaxDaysOff     ConstraintKind = "max_consecutive_days_off"
	ConstraintShiftBand      ConstraintKind = "shift_count_band"
	ConstraintRestPeriod     ConstraintKind = "rest_period"
	ConstraintFixed          ConstraintKind = "fixed_assignment"
)

// ConstraintInstance is one hard rule bound to a specific slot or doctor,
// generated once by the builder and read-only thereafter. The validator
// re-checks every instance against the candidate schedule.
type ConstraintInstance struct {
	ID        string
	Kind      ConstraintKind
	SlotIndex int    // -1 when not slot-bound
	DoctorID  string // empty when not doctor-bound
	Min       int
	Max       int
	Specialty string
}

// Model is the internal variable/domain/constraint representation of one
// scheduling request. Immutable once built; the search keeps its mutable
// working state separately.
type Model struct {
	Slots   []types.ShiftSlot
	Doctors []types.Doctor
	Rules   config.RulesConfig
	Weights types.SoftWeights

	Constraints []ConstraintInstance

	// Targets is the per-slot headcount the search fills to: the slot's
	// minimum, raised by fixed pre-bindings that exceed it.
	Targets []int

	// Compiled lookups, all indexed by roster position.
	DoctorIndex map[string]int
	SeniorSet   bitset
	Specialty   map[string]bitset
	Bands       []types.ShiftBand

	FixedAssigns  [][]int  // per slot: doctor indices pre-bound by fixed assignments
	FixedExcludes []bitset // per slot: doctors pre-excluded

	Requests     []types.ShiftRequest // requests with resolvable doctor/slot only
	RequestDocs  []int                // doctor index per request
	HolidaySlots bitset               // slots falling on a bank holiday
	LeaveDays    []map[int]bool       // per doctor: day indices covered by approved leave

	RestRuleActive bool
}

// BuildModel translates a scheduling request into the internal constraint
// model. It fails with a model error when the roster cannot structurally
// satisfy the hard rules, before any search is attempted.
func BuildModel(req *types.SchedulingRequest, rules config.RulesConfig, weights types.SoftWeights) (*Model, error) {
	if len(req.Slots) == 0 {
		return nil, types.NewModelError(types.ErrCodeInvalidInput, "request contains no shift slots", nil)
	}
	// The branch-and-bound upper bound treats every weight as a reward, so
	// negative weights would make it underestimate and prune optimal schedules.
	if weights.RequestFulfilled < 0 || weights.HolidayBalance < 0 ||
		weights.WeekStartCover < 0 || weights.RunShape < 0 {
		return nil, types.NewModelError(types.ErrCodeInvalidInput,
			"soft-constraint weights must not be negative", map[string]interface{}{
				"request_fulfilled": weights.RequestFulfilled,
				"holiday_balance":   weights.HolidayBalance,
				"week_start_cover":  weights.WeekStartCover,
				"run_shape":         weights.RunShape,
			})
	}
	for i := range req.Slots {
		if req.Slots[i].Index != i {
			return nil, types.NewModelError(types.ErrCodeInvalidInput,
				fmt.Sprintf("slot at position %d carries index %d; the calendar must be ordered and contiguous", i, req.Slots[i].Index),
				map[string]interface{}{"slot_index": req.Slots[i].Index})
		}
	}

	doctors := activeDoctors(req.Doctors)
	if len(doctors) == 0 {
		return nil, types.NewModelError(types.ErrCodeInsufficientRoster, "request contains no active doctors", nil)
	}

	m := &Model{
		Slots:          req.Slots,
		Doctors:        doctors,
		Rules:          rules,
		Weights:        weights,
		DoctorIndex:    make(map[string]int, len(doctors)),
		Specialty:      make(map[string]bitset),
		Bands:          make([]types.ShiftBand, len(doctors)),
		Targets:        make([]int, len(req.Slots)),
		FixedAssigns:   make([][]int, len(req.Slots)),
		FixedExcludes:  make([]bitset, len(req.Slots)),
		HolidaySlots:   newBitset(len(req.Slots)),
		LeaveDays:      make([]map[int]bool, len(doctors)),
		RestRuleActive: rules.MinRestHours >= 12,
	}

	m.SeniorSet = newBitset(len(doctors))
	for d := range doctors {
		doc := &doctors[d]
		if _, dup := m.DoctorIndex[doc.ID]; dup {
			return nil, types.NewModelError(types.ErrCodeInvalidInput,
				fmt.Sprintf("duplicate doctor ID %q in roster", doc.ID), nil)
		}
		m.DoctorIndex[doc.ID] = d
		if doc.IsSenior() {
			m.SeniorSet.set(d)
		}
		for _, sp := range doc.Specialties {
			set, ok := m.Specialty[sp]
			if !ok {
				set = newBitset(len(doctors))
			}
			set.set(d)
			m.Specialty[sp] = set
		}
		m.Bands[d] = types.ShiftBand{Min: rules.MinShiftsPerDoctor, Max: rules.MaxShiftsPerDoctor}
		if doc.ShiftTarget != nil {
			m.Bands[d] = *doc.ShiftTarget
		}
		if m.Bands[d].Min < 0 || m.Bands[d].Max < m.Bands[d].Min {
			return nil, types.NewModelError(types.ErrCodeInvalidInput,
				fmt.Sprintf("doctor %q has an invalid shift-count band [%d, %d]", doc.ID, m.Bands[d].Min, m.Bands[d].Max), nil)
		}
	}

	for s := range req.Slots {
		m.FixedExcludes[s] = newBitset(len(doctors))
	}

	if err := m.applyFixedAssignments(req.FixedAssignments); err != nil {
		return nil, err
	}
	m.resolveRequests(req.ShiftRequests)
	m.resolveHolidays(req)
	m.LeaveDays = buildLeaveDays(req, m)

	for s := range req.Slots {
		m.Targets[s] = req.Slots[s].MinDoctors
		if m.Targets[s] < 1 {
			m.Targets[s] = rules.DefaultMinDoctorsPerSlot
		}
		if n := len(m.FixedAssigns[s]); n > m.Targets[s] {
			m.Targets[s] = n
		}
	}

	if err := m.structuralCheck(); err != nil {
		return nil, err
	}

	m.generateConstraints()
	return m, nil
}

func activeDoctors(all []types.Doctor) []types.Doctor {
	doctors := make([]types.Doctor, 0, len(all))
	for _, d := range all {
		if d.Active {
			doctors = append(doctors, d)
		}
	}
	return doctors
}

func (m *Model) applyFixedAssignments(fixed []types.FixedAssignment) error {
	for _, fa := range fixed {
		d, ok := m.DoctorIndex[fa.DoctorID]
		if !ok {
			return types.NewModelError(types.ErrCodeInvalidInput,
				fmt.Sprintf("fixed assignment references unknown doctor %q", fa.DoctorID),
				map[string]interface{}{"slot_index": fa.SlotIndex})
		}
		if fa.SlotIndex < 0 || fa.SlotIndex >= len(m.Slots) {
			return types.NewModelError(types.ErrCodeInvalidInput,
				fmt.Sprintf("fixed assignment references slot %d outside the horizon", fa.SlotIndex),
				map[string]interface{}{"doctor_id": fa.DoctorID})
		}

		switch fa.Kind {
		case types.FixedAssign:
			if m.FixedExcludes[fa.SlotIndex].has(d) {
				return types.NewModelError(types.ErrCodeConflictingFixed,
					fmt.Sprintf("doctor %q is both bound to and excluded from slot %d", fa.DoctorID, fa.SlotIndex),
					map[string]interface{}{"doctor_id": fa.DoctorID, "slot_index": fa.SlotIndex})
			}
			if !containsInt(m.FixedAssigns[fa.SlotIndex], d) {
				m.FixedAssigns[fa.SlotIndex] = append(m.FixedAssigns[fa.SlotIndex], d)
			}
		case types.FixedExclude:
			if containsInt(m.FixedAssigns[fa.SlotIndex], d) {
				return types.NewModelError(types.ErrCodeConflictingFixed,
					fmt.Sprintf("doctor %q is both bound to and excluded from slot %d", fa.DoctorID, fa.SlotIndex),
					map[string]interface{}{"doctor_id": fa.DoctorID, "slot_index": fa.SlotIndex})
			}
			m.FixedExcludes[fa.SlotIndex].set(d)
		default:
			return types.NewModelError(types.ErrCodeInvalidInput,
				fmt.Sprintf("unknown fixed assignment kind %q", fa.Kind), nil)
		}
	}
	return nil
}

func (m *Model) resolveRequests(requests []types.ShiftRequest) {
	for _, r := range requests {
		d, ok := m.DoctorIndex[r.DoctorID]
		if !ok || r.SlotIndex < 0 || r.SlotIndex >= len(m.Slots) {
			continue
		}
		if r.Priority < 1 {
			r.Priority = 1
		}
		if r.Priority > 5 {
			r.Priority = 5
		}
		m.Requests = append(m.Requests, r)
		m.RequestDocs = append(m.RequestDocs, d)
	}
}

func (m *Model) resolveHolidays(req *types.SchedulingRequest) {
	holidays := roster.HolidaySet(req.BankHolidays)
	for s := range m.Slots {
		if roster.IsHoliday(&m.Slots[s], holidays) {
			m.HolidaySlots.set(s)
		}
	}
}

func buildLeaveDays(req *types.SchedulingRequest, m *Model) []map[int]bool {
	byID := roster.LeaveDays(req.Slots, req.FixedAssignments)
	days := make([]map[int]bool, len(m.Doctors))
	for id, set := range byID {
		if d, ok := m.DoctorIndex[id]; ok {
			days[d] = set
		}
	}
	return days
}

// structuralCheck rejects rosters that cannot satisfy headcount, seniority,
// specialty, or aggregate capacity before search starts.
func (m *Model) structuralCheck() error {
	totalTarget := 0
	for s := range m.Slots {
		totalTarget += m.Targets[s]

		eligible := 0
		seniorOK := false
		specialtyOK := m.Slots[s].RequiredSpecialty == ""
		for d := range m.Doctors {
			if m.FixedExcludes[s].has(d) {
				continue
			}
			eligible++
			if m.SeniorSet.has(d) {
				seniorOK = true
			}
			if !specialtyOK {
				if set, ok := m.Specialty[m.Slots[s].RequiredSpecialty]; ok && set.has(d) {
					specialtyOK = true
				}
			}
		}

		if eligible < m.Targets[s] {
			return types.NewModelError(types.ErrCodeInsufficientRoster,
				fmt.Sprintf("slot index %d cannot reach minimum headcount %d given current leave exclusions (%d eligible doctors)",
					s, m.Targets[s], eligible),
				map[string]interface{}{"slot_index": s, "required": m.Targets[s], "eligible": eligible})
		}
		if !seniorOK {
			return types.NewModelError(types.ErrCodeInsufficientSeniors,
				fmt.Sprintf("slot index %d has no eligible senior doctor", s),
				map[string]interface{}{"slot_index": s})
		}
		if !specialtyOK {
			return types.NewModelError(types.ErrCodeMissingSpecialty,
				fmt.Sprintf("slot index %d requires specialty %q but no eligible doctor holds it", s, m.Slots[s].RequiredSpecialty),
				map[string]interface{}{"slot_index": s, "specialty": m.Slots[s].RequiredSpecialty})
		}
	}

	bandMin, bandMax := 0, 0
	for d := range m.Doctors {
		bandMin += m.Bands[d].Min
		bandMax += m.Bands[d].Max
	}
	if totalTarget > bandMax {
		return types.NewModelError(types.ErrCodeCapacityShortfall,
			fmt.Sprintf("horizon requires %d assignments but the roster's shift-count bands cap capacity at %d", totalTarget, bandMax),
			map[string]interface{}{"required": totalTarget, "capacity": bandMax})
	}
	if totalTarget < bandMin {
		return types.NewModelError(types.ErrCodeCapacitySurplus,
			fmt.Sprintf("horizon provides %d assignments but the roster's shift-count bands demand at least %d", totalTarget, bandMin),
			map[string]interface{}{"provided": totalTarget, "demanded": bandMin})
	}

	return nil
}

// generateConstraints instantiates one ConstraintInstance per hard rule
// binding. The validator walks this list; the propagation engine enforces the
// same rules incrementally from the compiled model.
func (m *Model) generateConstraints() {
	for s := range m.Slots {
		m.Constraints = append(m.Constraints, ConstraintInstance{
			ID:        fmt.Sprintf("%s/slot-%d", ConstraintHeadcount, s),
			Kind:      ConstraintHeadcount,
			SlotIndex: s,
			Min:       m.Targets[s],
		})
		m.Constraints = append(m.Constraints, ConstraintInstance{
			ID:        fmt.Sprintf("%s/slot-%d", ConstraintSeniorCover, s),
			Kind:      ConstraintSeniorCover,
			SlotIndex: s,
			Min:       1,
		})
		if sp := m.Slots[s].RequiredSpecialty; sp != "" {
			m.Constraints = append(m.Constraints, ConstraintInstance{
				ID:        fmt.Sprintf("%s/slot-%d", ConstraintSpecialtyCover, s),
				Kind:      ConstraintSpecialtyCover,
				SlotIndex: s,
				Min:       1,
				Specialty: sp,
			})
		}
		for _, d := range m.FixedAssigns[s] {
			m.Constraints = append(m.Constraints, ConstraintInstance{
				ID:        fmt.Sprintf("%s/assign/%s/slot-%d", ConstraintFixed, m.Doctors[d].ID, s),
				Kind:      ConstraintFixed,
				SlotIndex: s,
				DoctorID:  m.Doctors[d].ID,
				Min:       1,
			})
		}
		m.FixedExcludes[s].forEach(func(d int) {
			m.Constraints = append(m.Constraints, ConstraintInstance{
				ID:        fmt.Sprintf("%s/exclude/%s/slot-%d", ConstraintFixed, m.Doctors[d].ID, s),
				Kind:      ConstraintFixed,
				SlotIndex: s,
				DoctorID:  m.Doctors[d].ID,
				Max:       0,
			})
		})
	}

	for d := range m.Doctors {
		id := m.Doctors[d].ID
		m.Constraints = append(m.Constraints, ConstraintInstance{
			ID:        fmt.Sprintf("%s/%s", ConstraintMaxRun, id),
			Kind:      ConstraintMaxRun,
			SlotIndex: -1,
			DoctorID:  id,
			Max:       m.Rules.MaxConsecutiveShifts,
		})
		if m.Rules.AvoidSingleDayOff {
			m.Constraints = append(m.Constraints, ConstraintInstance{
				ID:        fmt.Sprintf("%s/%s", ConstraintSingleDayOff, id),
				Kind:      ConstraintSingleDayOff,
				SlotIndex: -1,
				DoctorID:  id,
			})
		}
		m.Constraints = append(m.Constraints, ConstraintInstance{
			ID:        fmt.Sprintf("%s/%s", ConstraintMaxDaysOff, id),
			Kind:      ConstraintMaxDaysOff,
			SlotIndex: -1,
			DoctorID:  id,
			Max:       m.Rules.MaxConsecutiveDaysOff,
		})
		m.Constraints = append(m.Constraints, ConstraintInstance{
			ID:        fmt.Sprintf("%s/%s", ConstraintShiftBand, id),
			Kind:      ConstraintShiftBand,
			SlotIndex: -1,
			DoctorID:  id,
			Min:       m.Bands[d].Min,
			Max:       m.Bands[d].Max,
		})
		if m.RestRuleActive {
			m.Constraints = append(m.Constraints, ConstraintInstance{
				ID:        fmt.Sprintf("%s/%s", ConstraintRestPeriod, id),
				Kind:      ConstraintRestPeriod,
				SlotIndex: -1,
				DoctorID:  id,
			})
		}
	}
}

// SpecialtySet returns the doctor set holding the given specialty, or an
// empty set when nobody holds it.
func (m *Model) SpecialtySet(specialty string) bitset {
	if set, ok := m.Specialty[specialty]; ok {
		return set
	}
	return newBitset(len(m.Doctors))
}

// SortedDoctorIDs maps a doctor index set to roster-ordered IDs
func (m *Model) SortedDoctorIDs(set bitset) []string {
	var idx []int
	set.forEach(func(d int) { idx = append(idx, d) })
	sort.Ints(idx)
	ids := make([]string, len(idx))
	for i, d := range idx {
		ids[i] = m.Doctors[d].ID
	}
	return ids
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
