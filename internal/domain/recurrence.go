package domain

import (
	"time"

	"github.com/foyerapp/foyer-backend/internal/util"
)

type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyBiweekly  Frequency = "biweekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyBimonthly Frequency = "bimonthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

// Valid reports whether f is a known expense/debt frequency.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly,
		FrequencyBimonthly, FrequencyQuarterly, FrequencyYearly:
		return true
	}
	return false
}

// MonthInterval returns the cadence length in months, or 0 for
// sub-monthly frequencies that have no month interval.
func (f Frequency) MonthInterval() int {
	switch f {
	case FrequencyMonthly:
		return 1
	case FrequencyBimonthly:
		return 2
	case FrequencyQuarterly:
		return 3
	case FrequencyYearly:
		return 12
	default:
		return 0
	}
}

// RecurrenceRule describes when a recurring obligation falls due: a
// frequency plus the anchor day-of-month. The anchor day is clamped to
// the last valid day of shorter months (anchor 31 in February resolves
// to Feb 28/29).
type RecurrenceRule struct {
	Frequency Frequency `json:"frequency"`
	AnchorDay int32     `json:"anchorDay"`
}

// Validate checks the rule's fields.
func (r RecurrenceRule) Validate() error {
	if !r.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	if r.AnchorDay < 1 || r.AnchorDay > 31 {
		return ErrInvalidAnchorDay
	}
	return nil
}

// DueDateInMonth resolves the rule to a concrete due date inside the
// target month, or nil when the cadence skips that month.
//
// A cached preferred due date (the template's next-due date) is returned
// verbatim when it already falls inside the month, so regenerating a
// month never drifts from what was previously computed. For cadences
// longer than a month, eligibility is anchored on the preferred date's
// month; with no preferred date the target month is eligible and anchors
// the cadence.
//
// Weekly and biweekly rules have no single canonical date within an
// arbitrary month under this model; they fall back to the 1st.
func (r RecurrenceRule) DueDateInMonth(month util.Month, preferred *time.Time) *time.Time {
	if preferred != nil && month.Contains(*preferred) {
		d := *preferred
		return &d
	}

	interval := r.Frequency.MonthInterval()
	if interval == 0 {
		d := month.First()
		return &d
	}

	if preferred != nil {
		delta := util.MonthsBetween(util.MonthOf(*preferred), month)
		if delta < 0 || delta%interval != 0 {
			return nil
		}
	}

	d := month.Date(int(r.AnchorDay))
	return &d
}
