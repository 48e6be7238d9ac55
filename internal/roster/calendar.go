package roster

import (
	"time"

	"github.com/sbanks1000/rota-scheduler/pkg/config"
	"github.com/sbanks1000/rota-scheduler/pkg/types"
)

// BuildCalendar expands a [start, end] date range (inclusive) into the ordered
// slot list of the horizon: one day and one night slot per calendar date, day
// before night, indexed by position. Requirement rules are resolved onto each
// matching slot; the configured headcount floor applies where no rule raises it.
func BuildCalendar(start, end time.Time, requirements []types.SlotRequirement, rules config.RulesConfig) ([]types.ShiftSlot, error) {
	start = truncateToDay(start)
	end = truncateToDay(end)
	if end.Before(start) {
		return nil, types.NewModelError(types.ErrCodeInvalidInput,
			"horizon end precedes horizon start", map[string]interface{}{
				"horizon_start": start,
				"horizon_end":   end,
			})
	}

	// Step by calendar day rather than elapsed hours so DST transitions
	// (23- or 25-hour days) cannot drop or duplicate a date.
	slots := make([]types.ShiftSlot, 0, 64)

	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		for _, shiftType := range []types.ShiftType{types.ShiftDay, types.ShiftNight} {
			slot := types.ShiftSlot{
				Index:      len(slots),
				Date:       date,
				Type:       shiftType,
				MinDoctors: rules.DefaultMinDoctorsPerSlot,
			}
			applyRequirements(&slot, requirements)
			slots = append(slots, slot)
		}
	}

	return slots, nil
}

// applyRequirements resolves matching requirement rules onto a slot. Headcount
// rules only raise the floor; the last matching specialty rule wins.
func applyRequirements(slot *types.ShiftSlot, requirements []types.SlotRequirement) {
	for i := range requirements {
		req := &requirements[i]
		if !req.Matches(slot) {
			continue
		}
		if req.MinDoctors > slot.MinDoctors {
			slot.MinDoctors = req.MinDoctors
		}
		if req.RequiredSpecialty != "" {
			slot.RequiredSpecialty = req.RequiredSpecialty
		}
	}
}

// HolidaySet converts a bank-holiday date list into a lookup keyed by calendar day
func HolidaySet(holidays []time.Time) map[string]bool {
	set := make(map[string]bool, len(holidays))
	for _, h := range holidays {
		set[dayKey(h)] = true
	}
	return set
}

// IsHoliday reports whether the slot falls on a bank holiday
func IsHoliday(slot *types.ShiftSlot, holidays map[string]bool) bool {
	return holidays[dayKey(slot.Date)]
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
