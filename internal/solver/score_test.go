package solver

import (
	"context"
	"testing"

	"github.com/sbanks1000/rota-scheduler/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emptyAssigned(m *Model) []bitset {
	assigned := make([]bitset, len(m.Slots))
	for s := range assigned {
		assigned[s] = newBitset(len(m.Doctors))
	}
	return assigned
}

func TestScoreAssignment_FulfilledRequests(t *testing.T) {
	req := smallRequest(t)
	req.ShiftRequests = []types.ShiftRequest{
		{ID: "req-1", DoctorID: "sr-1", SlotIndex: 0, Priority: 3},
		{ID: "req-2", DoctorID: "sr-2", SlotIndex: 1, Priority: 2},
	}
	m, err := BuildModel(req, testRules(), types.SoftWeights{RequestFulfilled: 10})
	require.NoError(t, err)

	assigned := emptyAssigned(m)
	assigned[0].set(m.DoctorIndex["sr-1"])

	score := scoreAssignment(m, assigned)
	assert.Equal(t, 30.0, score.RequestsFulfilled)
	assert.Equal(t, []string{"req-1"}, score.FulfilledRequestIDs)
	assert.Equal(t, 30.0, score.Total)
}

func TestScoreAssignment_RunShape(t *testing.T) {
	m, err := BuildModel(smallRequest(t), testRules(), types.SoftWeights{RunShape: 3})
	require.NoError(t, err)

	assigned := emptyAssigned(m)
	// sr-1: run of two (+3). sr-2: isolated single (-3). jr-3: run at the
	// four-shift maximum (-3).
	assigned[0].set(m.DoctorIndex["sr-1"])
	assigned[1].set(m.DoctorIndex["sr-1"])
	assigned[3].set(m.DoctorIndex["sr-2"])
	for s := 0; s < 4; s++ {
		assigned[s].set(m.DoctorIndex["jr-3"])
	}

	score := scoreAssignment(m, assigned)
	assert.Equal(t, -3.0, score.RunShape)
	assert.Equal(t, -3.0, score.Total)
}

func TestScoreAssignment_HolidayBalance(t *testing.T) {
	req := smallRequest(t)
	req.BankHolidays = append(req.BankHolidays, mondayStart)
	m, err := BuildModel(req, testRules(), types.SoftWeights{HolidayBalance: 5})
	require.NoError(t, err)

	// sr-1 works both holiday slots, nobody else works any.
	assigned := emptyAssigned(m)
	assigned[0].set(m.DoctorIndex["sr-1"])
	assigned[1].set(m.DoctorIndex["sr-1"])

	score := scoreAssignment(m, assigned)
	// counts (2, 0, 0) against a mean of 2/3: deviation sum 8/3, weighted -40/3.
	assert.InDelta(t, -40.0/3.0, score.HolidayBalance, 1e-9)
}

func TestScoreAssignment_WeekStartCover(t *testing.T) {
	// The two-day horizon starts on a Monday, so all four slots are
	// week-start slots.
	m, err := BuildModel(smallRequest(t), testRules(), types.SoftWeights{WeekStartCover: 2})
	require.NoError(t, err)

	assigned := emptyAssigned(m)
	assigned[0].set(m.DoctorIndex["sr-1"])
	assigned[0].set(m.DoctorIndex["sr-2"])
	assigned[2].set(m.DoctorIndex["sr-1"])
	assigned[2].set(m.DoctorIndex["jr-3"])

	score := scoreAssignment(m, assigned)
	assert.Equal(t, 2.0, score.WeekStartCover)
}

// The root bound must never be beaten by the score the search actually
// achieves, or branch-and-bound pruning would cut optimal branches.
func TestUpperBound_AdmissibleAtRoot(t *testing.T) {
	req := smallRequest(t)
	req.ShiftRequests = []types.ShiftRequest{
		{ID: "req-1", DoctorID: "jr-3", SlotIndex: 2, Priority: 4},
	}
	req.Weights = &types.SoftWeights{RequestFulfilled: 10, WeekStartCover: 2, RunShape: 3}

	m, err := BuildModel(req, testRules(), *req.Weights)
	require.NoError(t, err)

	st := newSearchState(m)
	s := newSearcher(context.Background(), st, types.SearchBudget{}, req.Seed)
	require.Nil(t, st.applyFixed())
	require.NoError(t, s.run())

	require.NotNil(t, s.best)
	assert.GreaterOrEqual(t, s.rootBound, s.best.score.Total)
}
