package model

// Placeholder is shown for a missing major or GPA.
const Placeholder = "-"

// GPA bounds, inclusive.
const (
	MinGPA = 0.0
	MaxGPA = 4.0
)

const (
	BadgeNeedsSupport = "Needs support"
	BadgeHonor        = "Honor"
)

// Student is one roster record. ID is assigned on creation and never changes.
type Student struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Code  string   `json:"code"`
	Major string   `json:"major"`
	GPA   *float64 `json:"gpa"`
}

// Badge returns the label earned by the student's GPA, or "" when none applies.
func (s Student) Badge() string {
	if s.GPA == nil {
		return ""
	}
	switch gpa := *s.GPA; {
	case gpa < 2.0:
		return BadgeNeedsSupport
	case gpa >= 3.6:
		return BadgeHonor
	}
	return ""
}

// GPAOrZero is used when ordering by GPA; a missing GPA sorts as zero.
func (s Student) GPAOrZero() float64 {
	if s.GPA == nil {
		return 0
	}
	return *s.GPA
}

// Float returns a pointer to v, for building records with a GPA.
func Float(v float64) *float64 {
	return &v
}
