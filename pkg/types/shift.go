package types

import "time"

// ShiftType represents the two shift kinds of the 12-hour rota
type ShiftType string

const (
	ShiftDay   ShiftType = "day"   // 07:00-19:00
	ShiftNight ShiftType = "night" // 19:00-07:00
)

// ShiftSlot is one 12-hour shift instance on a specific date, the unit of
// assignment. Slots are ordered by date then type (day before night) and are
// identified by their 0-based position in the horizon.
type ShiftSlot struct {
	Index int       `json:"index"`
	Date  time.Time `json:"date"`
	Type  ShiftType `json:"type"`

	MinDoctors        int    `json:"min_doctors"`
	RequiredSpecialty string `json:"required_specialty,omitempty"`
}

// Weekday returns the calendar weekday of the slot
func (s *ShiftSlot) Weekday() time.Weekday {
	return s.Date.Weekday()
}

// DayIndex returns the 0-based day offset of the slot within its horizon.
// Day and night slot of the same date share a day index.
func (s *ShiftSlot) DayIndex() int {
	return s.Index / 2
}

// AppliesTo selects which slots a requirement rule targets
type AppliesTo string

const (
	AppliesAll     AppliesTo = "all"
	AppliesDay     AppliesTo = "day"
	AppliesNight   AppliesTo = "night"
	AppliesWeekday AppliesTo = "weekday"
	AppliesWeekend AppliesTo = "weekend"
)

// SlotRequirement is a staffing requirement rule applied to matching slots
// when the slot calendar is built (minimum headcount and/or a specialty that
// at least one assigned doctor must hold).
type SlotRequirement struct {
	AppliesTo         AppliesTo `json:"applies_to"`
	MinDoctors        int       `json:"min_doctors,omitempty"`
	RequiredSpecialty string    `json:"required_specialty,omitempty"`
}

// Matches reports whether the requirement applies to the given slot
func (r *SlotRequirement) Matches(slot *ShiftSlot) bool {
	switch r.AppliesTo {
	case AppliesAll:
		return true
	case AppliesDay:
		return slot.Type == ShiftDay
	case AppliesNight:
		return slot.Type == ShiftNight
	case AppliesWeekday:
		wd := slot.Weekday()
		return wd >= time.Monday && wd <= time.Friday
	case AppliesWeekend:
		wd := slot.Weekday()
		return wd == time.Saturday || wd == time.Sunday
	}
	return false
}
