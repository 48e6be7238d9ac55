package solver

import (
	"testing"

	"github.com/sbanks1000/rota-scheduler/pkg/config"
	"github.com/sbanks1000/rota-scheduler/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRules() config.RulesConfig {
	return config.Default().Rules
}

func constraintIDs(m *Model) map[string]ConstraintInstance {
	byID := make(map[string]ConstraintInstance, len(m.Constraints))
	for _, ci := range m.Constraints {
		byID[ci.ID] = ci
	}
	return byID
}

func TestBuildModel_GeneratesConstraintInstances(t *testing.T) {
	req := smallRequest(t)
	req.Slots[1].RequiredSpecialty = "cardiology"
	req.Doctors[0].Specialties = []string{"cardiology"}

	m, err := BuildModel(req, testRules(), types.SoftWeights{})
	require.NoError(t, err)

	byID := constraintIDs(m)
	assert.Contains(t, byID, "headcount/slot-0")
	assert.Contains(t, byID, "senior_cover/slot-3")
	assert.Contains(t, byID, "specialty_cover/slot-1")
	assert.NotContains(t, byID, "specialty_cover/slot-0")

	for _, id := range []string{"sr-1", "sr-2", "jr-3"} {
		assert.Contains(t, byID, "max_consecutive_shifts/"+id)
		assert.Contains(t, byID, "single_day_off/"+id)
		assert.Contains(t, byID, "max_consecutive_days_off/"+id)
		assert.Contains(t, byID, "shift_count_band/"+id)
		assert.NotContains(t, byID, "rest_period/"+id)
	}

	band := byID["shift_count_band/jr-3"]
	assert.Equal(t, 2, band.Min)
	assert.Equal(t, 3, band.Max)
	assert.Equal(t, 4, byID["max_consecutive_shifts/sr-1"].Max)
}

func TestBuildModel_RestRuleFollowsMinRestHours(t *testing.T) {
	rules := testRules()
	rules.MinRestHours = 12

	m, err := BuildModel(smallRequest(t), rules, types.SoftWeights{})
	require.NoError(t, err)
	assert.True(t, m.RestRuleActive)
	assert.Contains(t, constraintIDs(m), "rest_period/sr-1")
}

func TestBuildModel_BandOverrideAndDefault(t *testing.T) {
	req := smallRequest(t)
	req.Doctors[2].ShiftTarget = nil

	rules := testRules()
	rules.MinShiftsPerDoctor = 1
	rules.MaxShiftsPerDoctor = 4

	m, err := BuildModel(req, rules, types.SoftWeights{})
	require.NoError(t, err)
	assert.Equal(t, types.ShiftBand{Min: 2, Max: 3}, m.Bands[m.DoctorIndex["sr-1"]])
	assert.Equal(t, types.ShiftBand{Min: 1, Max: 4}, m.Bands[m.DoctorIndex["jr-3"]])
}

func TestBuildModel_FiltersInactiveDoctors(t *testing.T) {
	req := smallRequest(t)
	req.Doctors = append(req.Doctors, types.Doctor{
		ID: "gone-4", ExperienceLevel: types.ExperienceSenior, Active: false,
	})

	m, err := BuildModel(req, testRules(), types.SoftWeights{})
	require.NoError(t, err)
	assert.Len(t, m.Doctors, 3)
	_, ok := m.DoctorIndex["gone-4"]
	assert.False(t, ok)
}

func TestBuildModel_TargetRaisedByFixedBindings(t *testing.T) {
	req := smallRequest(t)
	req.FixedAssignments = []types.FixedAssignment{
		{DoctorID: "sr-1", SlotIndex: 0, Kind: types.FixedAssign, Source: types.SourceManual},
		{DoctorID: "sr-2", SlotIndex: 0, Kind: types.FixedAssign, Source: types.SourceManual},
		{DoctorID: "jr-3", SlotIndex: 0, Kind: types.FixedAssign, Source: types.SourceManual},
	}

	m, err := BuildModel(req, testRules(), types.SoftWeights{})
	require.NoError(t, err)
	assert.Equal(t, 3, m.Targets[0])
	assert.Equal(t, 2, m.Targets[1])
}

func TestBuildModel_RequestPriorityClamped(t *testing.T) {
	req := smallRequest(t)
	req.ShiftRequests = []types.ShiftRequest{
		{ID: "hi", DoctorID: "sr-1", SlotIndex: 0, Priority: 9},
		{ID: "lo", DoctorID: "sr-2", SlotIndex: 1, Priority: 0},
		{ID: "dangling", DoctorID: "nobody", SlotIndex: 2, Priority: 3},
		{ID: "outside", DoctorID: "sr-1", SlotIndex: 99, Priority: 3},
	}

	m, err := BuildModel(req, testRules(), types.SoftWeights{})
	require.NoError(t, err)
	require.Len(t, m.Requests, 2)
	assert.Equal(t, 5, m.Requests[0].Priority)
	assert.Equal(t, 1, m.Requests[1].Priority)
}

func TestBuildModel_ResolvesBankHolidays(t *testing.T) {
	req := smallRequest(t)
	req.BankHolidays = append(req.BankHolidays, mondayStart)

	m, err := BuildModel(req, testRules(), types.SoftWeights{})
	require.NoError(t, err)
	assert.True(t, m.HolidaySlots.has(0))
	assert.True(t, m.HolidaySlots.has(1))
	assert.False(t, m.HolidaySlots.has(2))
}

func TestBuildModel_InputErrors(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(req *types.SchedulingRequest)
		wantCode string
	}{
		{
			name:     "no slots",
			mutate:   func(req *types.SchedulingRequest) { req.Slots = nil },
			wantCode: types.ErrCodeInvalidInput,
		},
		{
			name:     "non-contiguous slot indices",
			mutate:   func(req *types.SchedulingRequest) { req.Slots[2].Index = 7 },
			wantCode: types.ErrCodeInvalidInput,
		},
		{
			name: "no active doctors",
			mutate: func(req *types.SchedulingRequest) {
				for i := range req.Doctors {
					req.Doctors[i].Active = false
				}
			},
			wantCode: types.ErrCodeInsufficientRoster,
		},
		{
			name: "duplicate doctor ID",
			mutate: func(req *types.SchedulingRequest) {
				req.Doctors[1].ID = req.Doctors[0].ID
			},
			wantCode: types.ErrCodeInvalidInput,
		},
		{
			name: "inverted shift band",
			mutate: func(req *types.SchedulingRequest) {
				req.Doctors[0].ShiftTarget = &types.ShiftBand{Min: 3, Max: 1}
			},
			wantCode: types.ErrCodeInvalidInput,
		},
		{
			name: "fixed assignment for unknown doctor",
			mutate: func(req *types.SchedulingRequest) {
				req.FixedAssignments = []types.FixedAssignment{
					{DoctorID: "nobody", SlotIndex: 0, Kind: types.FixedAssign},
				}
			},
			wantCode: types.ErrCodeInvalidInput,
		},
		{
			name: "fixed assignment outside horizon",
			mutate: func(req *types.SchedulingRequest) {
				req.FixedAssignments = []types.FixedAssignment{
					{DoctorID: "sr-1", SlotIndex: 40, Kind: types.FixedExclude},
				}
			},
			wantCode: types.ErrCodeInvalidInput,
		},
		{
			name: "conflicting fixed assignments",
			mutate: func(req *types.SchedulingRequest) {
				req.FixedAssignments = []types.FixedAssignment{
					{DoctorID: "sr-1", SlotIndex: 0, Kind: types.FixedExclude},
					{DoctorID: "sr-1", SlotIndex: 0, Kind: types.FixedAssign},
				}
			},
			wantCode: types.ErrCodeConflictingFixed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := smallRequest(t)
			tt.mutate(req)

			_, err := BuildModel(req, testRules(), types.SoftWeights{})
			require.Error(t, err)
			var rerr *types.RosterError
			require.ErrorAs(t, err, &rerr)
			assert.Equal(t, types.ErrorTypeModel, rerr.Type)
			assert.Equal(t, tt.wantCode, rerr.Code)
		})
	}
}

func TestBuildModel_RejectsNegativeWeights(t *testing.T) {
	weights := types.SoftWeights{RequestFulfilled: 10, RunShape: -3}

	_, err := BuildModel(smallRequest(t), testRules(), weights)
	require.Error(t, err)
	var rerr *types.RosterError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, types.ErrorTypeModel, rerr.Type)
	assert.Equal(t, types.ErrCodeInvalidInput, rerr.Code)
}

func TestBuildModel_StructuralErrors(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(req *types.SchedulingRequest)
		wantCode string
	}{
		{
			name: "headcount unreachable after exclusions",
			mutate: func(req *types.SchedulingRequest) {
				req.FixedAssignments = []types.FixedAssignment{
					{DoctorID: "sr-1", SlotIndex: 0, Kind: types.FixedExclude, Source: types.SourceLeave},
					{DoctorID: "sr-2", SlotIndex: 0, Kind: types.FixedExclude, Source: types.SourceLeave},
				}
			},
			wantCode: types.ErrCodeInsufficientRoster,
		},
		{
			name: "no senior on the roster",
			mutate: func(req *types.SchedulingRequest) {
				for i := range req.Doctors {
					req.Doctors[i].ExperienceLevel = types.ExperienceJunior
				}
			},
			wantCode: types.ErrCodeInsufficientSeniors,
		},
		{
			name: "required specialty nobody holds",
			mutate: func(req *types.SchedulingRequest) {
				req.Slots[0].RequiredSpecialty = "neurosurgery"
			},
			wantCode: types.ErrCodeMissingSpecialty,
		},
		{
			name: "bands cannot cover the horizon",
			mutate: func(req *types.SchedulingRequest) {
				for i := range req.Doctors {
					req.Doctors[i].ShiftTarget = &types.ShiftBand{Min: 0, Max: 2}
				}
			},
			wantCode: types.ErrCodeCapacityShortfall,
		},
		{
			name: "bands demand more than the horizon offers",
			mutate: func(req *types.SchedulingRequest) {
				for i := range req.Doctors {
					req.Doctors[i].ShiftTarget = &types.ShiftBand{Min: 4, Max: 8}
				}
			},
			wantCode: types.ErrCodeCapacitySurplus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := smallRequest(t)
			tt.mutate(req)

			_, err := BuildModel(req, testRules(), types.SoftWeights{})
			require.Error(t, err)
			var rerr *types.RosterError
			require.ErrorAs(t, err, &rerr)
			assert.Equal(t, types.ErrorTypeModel, rerr.Type)
			assert.Equal(t, tt.wantCode, rerr.Code)
		})
	}
}
