package roster

import (
	"testing"
	"time"

	"github.com/sbanks1000/rota-scheduler/pkg/config"
	"github.com/sbanks1000/rota-scheduler/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2025-06-02 is a Monday.
var horizonStart = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

func TestBuildCalendar_ExpandsHorizon(t *testing.T) {
	rules := config.Default().Rules
	slots, err := BuildCalendar(horizonStart, horizonStart.AddDate(0, 0, 29), nil, rules)
	require.NoError(t, err)
	require.Len(t, slots, 60)

	for i, slot := range slots {
		assert.Equal(t, i, slot.Index)
		assert.Equal(t, i/2, slot.DayIndex())
		assert.True(t, slot.Date.Equal(horizonStart.AddDate(0, 0, i/2)), "slot %d date", i)
		if i%2 == 0 {
			assert.Equal(t, types.ShiftDay, slot.Type, "slot %d", i)
		} else {
			assert.Equal(t, types.ShiftNight, slot.Type, "slot %d", i)
		}
		assert.Equal(t, rules.DefaultMinDoctorsPerSlot, slot.MinDoctors)
		assert.Empty(t, slot.RequiredSpecialty)
	}
}

func TestBuildCalendar_SingleDayHorizon(t *testing.T) {
	slots, err := BuildCalendar(horizonStart, horizonStart, nil, config.Default().Rules)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, types.ShiftDay, slots[0].Type)
	assert.Equal(t, types.ShiftNight, slots[1].Type)
}

func TestBuildCalendar_AppliesRequirements(t *testing.T) {
	requirements := []types.SlotRequirement{
		{AppliesTo: types.AppliesWeekend, MinDoctors: 3},
		{AppliesTo: types.AppliesNight, RequiredSpecialty: "cardiology"},
		{AppliesTo: types.AppliesAll, MinDoctors: 1}, // below the floor, must not lower it
	}

	slots, err := BuildCalendar(horizonStart, horizonStart.AddDate(0, 0, 6), requirements, config.Default().Rules)
	require.NoError(t, err)

	for _, slot := range slots {
		wd := slot.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			assert.Equal(t, 3, slot.MinDoctors, "weekend slot %d", slot.Index)
		} else {
			assert.Equal(t, 2, slot.MinDoctors, "weekday slot %d", slot.Index)
		}
		if slot.Type == types.ShiftNight {
			assert.Equal(t, "cardiology", slot.RequiredSpecialty, "night slot %d", slot.Index)
		} else {
			assert.Empty(t, slot.RequiredSpecialty, "day slot %d", slot.Index)
		}
	}
}

func TestBuildCalendar_LastSpecialtyRuleWins(t *testing.T) {
	requirements := []types.SlotRequirement{
		{AppliesTo: types.AppliesAll, RequiredSpecialty: "cardiology"},
		{AppliesTo: types.AppliesDay, RequiredSpecialty: "paediatrics"},
	}

	slots, err := BuildCalendar(horizonStart, horizonStart, requirements, config.Default().Rules)
	require.NoError(t, err)
	assert.Equal(t, "paediatrics", slots[0].RequiredSpecialty)
	assert.Equal(t, "cardiology", slots[1].RequiredSpecialty)
}

func TestBuildCalendar_CoversSpringClockChange(t *testing.T) {
	london, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)

	// British Summer Time starts 2025-03-30, so that day is 23 hours long.
	start := time.Date(2025, 3, 29, 0, 0, 0, 0, london)
	end := time.Date(2025, 3, 31, 0, 0, 0, 0, london)

	slots, err := BuildCalendar(start, end, nil, config.Default().Rules)
	require.NoError(t, err)
	require.Len(t, slots, 6)

	for i, slot := range slots {
		assert.Equal(t, i, slot.Index)
		assert.Equal(t, 29+i/2, slot.Date.Day(), "slot %d date", i)
	}
}

func TestBuildCalendar_CoversAutumnClockChange(t *testing.T) {
	london, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)

	// Clocks fall back on 2025-10-26, a 25-hour day.
	start := time.Date(2025, 10, 25, 0, 0, 0, 0, london)
	end := time.Date(2025, 10, 27, 0, 0, 0, 0, london)

	slots, err := BuildCalendar(start, end, nil, config.Default().Rules)
	require.NoError(t, err)
	require.Len(t, slots, 6)
	assert.Equal(t, 27, slots[5].Date.Day())
}

func TestBuildCalendar_TruncatesTimeOfDay(t *testing.T) {
	start := horizonStart.Add(9 * time.Hour)
	end := horizonStart.Add(23 * time.Hour)

	slots, err := BuildCalendar(start, end, nil, config.Default().Rules)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.True(t, slots[0].Date.Equal(horizonStart))
}

func TestBuildCalendar_RejectsInvertedHorizon(t *testing.T) {
	_, err := BuildCalendar(horizonStart, horizonStart.AddDate(0, 0, -1), nil, config.Default().Rules)
	require.Error(t, err)

	var rerr *types.RosterError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, types.ErrorTypeModel, rerr.Type)
	assert.Equal(t, types.ErrCodeInvalidInput, rerr.Code)
}

func TestHolidayLookup(t *testing.T) {
	holidays := HolidaySet([]time.Time{horizonStart.Add(15 * time.Hour)})

	daySlot := types.ShiftSlot{Index: 0, Date: horizonStart, Type: types.ShiftDay}
	nextDay := types.ShiftSlot{Index: 2, Date: horizonStart.AddDate(0, 0, 1), Type: types.ShiftDay}

	assert.True(t, IsHoliday(&daySlot, holidays), "time of day must not affect the date match")
	assert.False(t, IsHoliday(&nextDay, holidays))
}
