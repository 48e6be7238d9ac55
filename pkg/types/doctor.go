package types

// ExperienceLevel represents a doctor's seniority grade
type ExperienceLevel string

const (
	ExperienceJunior ExperienceLevel = "junior"
	ExperienceSenior ExperienceLevel = "senior"
)

// ShiftBand is an inclusive range for a doctor's total shift count over the horizon
type ShiftBand struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Doctor represents a physician eligible for shift assignment.
// Doctors are immutable inputs for the duration of one scheduling run.
type Doctor struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	ExperienceLevel ExperienceLevel `json:"experience_level"`
	Specialties     []string        `json:"specialties"`

	// ShiftTarget overrides the configured default shift-count band for this
	// doctor when set (e.g. a partial-horizon contract). Nil means the
	// configured [min, max] band applies.
	ShiftTarget *ShiftBand `json:"shift_target,omitempty"`

	Active bool `json:"active"`
}

// IsSenior reports whether the doctor is a senior-grade physician
func (d *Doctor) IsSenior() bool {
	return d.ExperienceLevel == ExperienceSenior
}

// HasSpecialty reports whether the doctor holds the named specialty
func (d *Doctor) HasSpecialty(specialty string) bool {
	for _, s := range d.Specialties {
		if s == specialty {
			return true
		}
	}
	return false
}
